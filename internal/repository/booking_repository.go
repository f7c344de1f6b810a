package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrBookingNotFound is returned when a booking lookup fails.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides read access to bookings for the HTTP layer.
// All writes go through the allocation engine so state transitions
// and waitlist promotion stay in one place.
type BookingRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, restaurant_id, table_id, customer_id,
	DATE_FORMAT(booking_date, '%Y-%m-%d'), TIME_FORMAT(booking_time, '%H:%i'),
	party_size, status, assignment_method, was_on_waitlist, notes, created_at, updated_at`

// GetByID retrieves a booking by its ID.  Returns ErrBookingNotFound
// when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// ListByCustomer returns a customer's bookings, newest first.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]*model.Booking, error) {
	q := `SELECT ` + bookingColumns + `
	      FROM bookings WHERE customer_id = ?
	      ORDER BY booking_date DESC, booking_time DESC, id DESC`
	return r.list(ctx, q, customerID)
}

// ListByRestaurantAndDate returns a restaurant's bookings for one
// service day ordered by slot.  Used by the owner's day view.
func (r *BookingRepo) ListByRestaurantAndDate(ctx context.Context, restaurantID uint64, date string) ([]*model.Booking, error) {
	q := `SELECT ` + bookingColumns + `
	      FROM bookings WHERE restaurant_id = ? AND booking_date = ?
	      ORDER BY booking_time ASC, id ASC`
	return r.list(ctx, q, restaurantID, date)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...interface{}) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
