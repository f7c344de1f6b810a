package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrWaitlistEntryNotFound is returned when a waitlist lookup fails.
var ErrWaitlistEntryNotFound = errors.New("waitlist entry not found")

// WaitlistRepo provides read access to waiting-list entries for the
// HTTP layer.  Queue mutations (enqueue, offers, withdrawal) live in
// the engine.
type WaitlistRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewWaitlistRepo constructs a WaitlistRepo with the given DB handle.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo {
	return &WaitlistRepo{db: db}
}

// GetByID retrieves a waitlist entry by its ID.
func (r *WaitlistRepo) GetByID(ctx context.Context, id uint64) (*model.WaitingListEntry, error) {
	q := `SELECT ` + waitlistColumns + ` FROM waiting_list WHERE id = ?`
	e, err := scanWaitlistEntry(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWaitlistEntryNotFound
	}
	return e, err
}

// ListByCustomer returns a customer's queue entries, newest first.
func (r *WaitlistRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]*model.WaitingListEntry, error) {
	q := `SELECT ` + waitlistColumns + `
	      FROM waiting_list WHERE customer_id = ?
	      ORDER BY requested_date DESC, requested_time DESC, id DESC`
	return r.list(ctx, q, customerID)
}

// ListByRestaurantAndDate returns a restaurant's queue for one day in
// promotion order: slot first, then priority.
func (r *WaitlistRepo) ListByRestaurantAndDate(ctx context.Context, restaurantID uint64, date string) ([]*model.WaitingListEntry, error) {
	q := `SELECT ` + waitlistColumns + `
	      FROM waiting_list WHERE restaurant_id = ? AND requested_date = ?
	      ORDER BY requested_time ASC, priority_order ASC`
	return r.list(ctx, q, restaurantID, date)
}

func (r *WaitlistRepo) list(ctx context.Context, q string, args ...interface{}) ([]*model.WaitingListEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.WaitingListEntry
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
