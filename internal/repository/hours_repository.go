package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrClosedDateNotFound is returned when a closed-date lookup or
// delete matches no row.
var ErrClosedDateNotFound = errors.New("closed date not found")

// ErrCustomHoursNotFound is returned when a custom-hours delete
// matches no row.
var ErrCustomHoursNotFound = errors.New("custom hours not found")

// HoursRepo manages the operating calendar of a restaurant: the
// weekly schedule, full-day closures and per-date hour overrides.
type HoursRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHoursRepo constructs an HoursRepo with the given DB handle.
func NewHoursRepo(db *sql.DB) *HoursRepo {
	return &HoursRepo{db: db}
}

// UpsertWeekly inserts or replaces the schedule row for one weekday.
// The (restaurant_id, weekday) pair is unique, so ON DUPLICATE KEY
// turns repeated configuration into an update.
func (r *HoursRepo) UpsertWeekly(ctx context.Context, h *model.OperatingHours) error {
	const q = `INSERT INTO operating_hours (restaurant_id, weekday, opens_at, closes_at, is_closed)
	           VALUES (?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             opens_at = VALUES(opens_at), closes_at = VALUES(closes_at),
	             is_closed = VALUES(is_closed), updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q, h.RestaurantID, h.Weekday, h.OpensAt, h.ClosesAt, h.IsClosed)
	return err
}

// ListWeekly returns the configured weekly schedule ordered by
// weekday.  Days never configured are simply absent.
func (r *HoursRepo) ListWeekly(ctx context.Context, restaurantID uint64) ([]*model.OperatingHours, error) {
	const q = `SELECT id, restaurant_id, weekday,
	                  TIME_FORMAT(opens_at, '%H:%i'), TIME_FORMAT(closes_at, '%H:%i'),
	                  is_closed, created_at, updated_at
	           FROM operating_hours WHERE restaurant_id = ? ORDER BY weekday`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.OperatingHours
	for rows.Next() {
		h := new(model.OperatingHours)
		if err := rows.Scan(&h.ID, &h.RestaurantID, &h.Weekday, &h.OpensAt, &h.ClosesAt, &h.IsClosed, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AddClosedDate records a full-day closure.  Inserting the same date
// twice yields ErrConflict.
func (r *HoursRepo) AddClosedDate(ctx context.Context, cd *model.ClosedDate) error {
	const q = `INSERT INTO closed_dates (restaurant_id, date, reason) VALUES (?, ?, ?)`
	var reason interface{}
	if cd.Reason != nil {
		reason = *cd.Reason
	}
	res, err := r.db.ExecContext(ctx, q, cd.RestaurantID, cd.Date, reason)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cd.ID = uint64(id)
	return nil
}

// RemoveClosedDate deletes a closure so the weekly schedule applies
// again on that date.
func (r *HoursRepo) RemoveClosedDate(ctx context.Context, restaurantID uint64, date string) error {
	const q = `DELETE FROM closed_dates WHERE restaurant_id = ? AND date = ?`
	res, err := r.db.ExecContext(ctx, q, restaurantID, date)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClosedDateNotFound
	}
	return nil
}

// ListClosedDates returns upcoming closures from the given date
// onward, oldest first.
func (r *HoursRepo) ListClosedDates(ctx context.Context, restaurantID uint64, from string) ([]*model.ClosedDate, error) {
	const q = `SELECT id, restaurant_id, DATE_FORMAT(date, '%Y-%m-%d'), reason, created_at
	           FROM closed_dates
	           WHERE restaurant_id = ? AND date >= ?
	           ORDER BY date`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ClosedDate
	for rows.Next() {
		cd := new(model.ClosedDate)
		var reason sql.NullString
		if err := rows.Scan(&cd.ID, &cd.RestaurantID, &cd.Date, &reason, &cd.CreatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			s := reason.String
			cd.Reason = &s
		}
		out = append(out, cd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertCustom inserts or replaces the hour override for one date.
// Overrides beat the weekly schedule but lose to closed dates.
func (r *HoursRepo) UpsertCustom(ctx context.Context, ch *model.CustomHours) error {
	const q = `INSERT INTO custom_hours (restaurant_id, date, opens_at, closes_at, is_closed)
	           VALUES (?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             opens_at = VALUES(opens_at), closes_at = VALUES(closes_at),
	             is_closed = VALUES(is_closed), updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q, ch.RestaurantID, ch.Date, ch.OpensAt, ch.ClosesAt, ch.IsClosed)
	return err
}

// RemoveCustom deletes an hour override.
func (r *HoursRepo) RemoveCustom(ctx context.Context, restaurantID uint64, date string) error {
	const q = `DELETE FROM custom_hours WHERE restaurant_id = ? AND date = ?`
	res, err := r.db.ExecContext(ctx, q, restaurantID, date)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCustomHoursNotFound
	}
	return nil
}
