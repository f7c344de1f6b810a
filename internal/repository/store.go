package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-table-reservation/internal/engine"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Store implements engine.Store on MySQL.  WithTx opens a transaction
// and threads it through the context; every query helper picks the
// transaction up again, so engine code composes multi-statement
// operations without passing *sql.Tx around.  Nested WithTx calls
// join the outer transaction.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

type txKey struct{}

// querier is the subset of *sql.DB and *sql.Tx the store needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithTx runs fn inside a transaction, committing on nil and rolling
// back on error.  A deadlock or duplicate-key failure is translated
// into engine.ErrAllocationConflict so the engine can retry once.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return translateConflict(err)
	}
	if err := tx.Commit(); err != nil {
		return translateConflict(err)
	}
	return nil
}

// translateConflict maps MySQL serialization failures (deadlock 1213,
// lock wait timeout 1205, duplicate key 1062) to the engine's
// conflict sentinel.
func translateConflict(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1205, 1213:
			return engine.ErrAllocationConflict
		}
	}
	return err
}

// isDuplicateEntry reports whether err is a MySQL duplicate-key
// violation (error 1062).
func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

func (s *Store) Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error) {
	const q = `SELECT id, owner_id, name, slot_minutes, created_at, updated_at
	           FROM restaurants WHERE id = ?`
	var r model.Restaurant
	err := s.q(ctx).QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.SlotMinutes, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) WeeklyHours(ctx context.Context, restaurantID uint64, weekday uint8) (*model.OperatingHours, error) {
	const q = `SELECT id, restaurant_id, weekday,
	                  TIME_FORMAT(opens_at, '%H:%i'), TIME_FORMAT(closes_at, '%H:%i'),
	                  is_closed, created_at, updated_at
	           FROM operating_hours WHERE restaurant_id = ? AND weekday = ?`
	var h model.OperatingHours
	err := s.q(ctx).QueryRowContext(ctx, q, restaurantID, weekday).Scan(
		&h.ID, &h.RestaurantID, &h.Weekday, &h.OpensAt, &h.ClosesAt,
		&h.IsClosed, &h.CreatedAt, &h.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) ClosedDate(ctx context.Context, restaurantID uint64, date string) (*model.ClosedDate, error) {
	const q = `SELECT id, restaurant_id, DATE_FORMAT(date, '%Y-%m-%d'), reason, created_at
	           FROM closed_dates WHERE restaurant_id = ? AND date = ?`
	var cd model.ClosedDate
	var reason sql.NullString
	err := s.q(ctx).QueryRowContext(ctx, q, restaurantID, date).Scan(
		&cd.ID, &cd.RestaurantID, &cd.Date, &reason, &cd.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		r := reason.String
		cd.Reason = &r
	}
	return &cd, nil
}

func (s *Store) CustomHours(ctx context.Context, restaurantID uint64, date string) (*model.CustomHours, error) {
	const q = `SELECT id, restaurant_id, DATE_FORMAT(date, '%Y-%m-%d'),
	                  TIME_FORMAT(opens_at, '%H:%i'), TIME_FORMAT(closes_at, '%H:%i'),
	                  is_closed, created_at, updated_at
	           FROM custom_hours WHERE restaurant_id = ? AND date = ?`
	var ch model.CustomHours
	err := s.q(ctx).QueryRowContext(ctx, q, restaurantID, date).Scan(
		&ch.ID, &ch.RestaurantID, &ch.Date, &ch.OpensAt, &ch.ClosesAt,
		&ch.IsClosed, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *Store) UsableTables(ctx context.Context, restaurantID uint64) ([]model.Table, error) {
	const q = `SELECT id, restaurant_id, table_number, capacity, status, created_at, updated_at
	           FROM restaurant_tables
	           WHERE restaurant_id = ? AND status = 'AVAILABLE'
	           ORDER BY capacity ASC, table_number ASC`
	rows, err := s.q(ctx).QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity,
			&t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (s *Store) ActiveBookings(ctx context.Context, restaurantID uint64, date, slot string) ([]model.Booking, error) {
	const q = `SELECT id, restaurant_id, table_id, customer_id,
	                  DATE_FORMAT(booking_date, '%Y-%m-%d'), TIME_FORMAT(booking_time, '%H:%i'),
	                  party_size, status, assignment_method, was_on_waitlist, notes,
	                  created_at, updated_at
	           FROM bookings
	           WHERE restaurant_id = ? AND booking_date = ? AND booking_time = ?
	             AND status IN ('PENDING','CONFIRMED','SEATED')`
	rows, err := s.q(ctx).QueryContext(ctx, q, restaurantID, date, slot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(sc scanner) (*model.Booking, error) {
	var b model.Booking
	var tableID sql.NullInt64
	var notes sql.NullString
	err := sc.Scan(&b.ID, &b.RestaurantID, &tableID, &b.CustomerID,
		&b.Date, &b.Time, &b.PartySize, &b.Status, &b.AssignmentMethod,
		&b.WasOnWaitlist, &notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		b.TableID = &id
	}
	if notes.Valid {
		n := notes.String
		b.Notes = &n
	}
	return &b, nil
}

func (s *Store) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, restaurant_id, table_id, customer_id,
	                  DATE_FORMAT(booking_date, '%Y-%m-%d'), TIME_FORMAT(booking_time, '%H:%i'),
	                  party_size, status, assignment_method, was_on_waitlist, notes,
	                  created_at, updated_at
	           FROM bookings WHERE id = ?`
	b, err := scanBooking(s.q(ctx).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrBookingNotFound
	}
	return b, err
}

func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
	           (restaurant_id, table_id, customer_id, booking_date, booking_time,
	            party_size, status, assignment_method, was_on_waitlist, notes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var tableID interface{}
	if b.TableID != nil {
		tableID = *b.TableID
	}
	var notes interface{}
	if b.Notes != nil {
		notes = *b.Notes
	}
	res, err := s.q(ctx).ExecContext(ctx, q, b.RestaurantID, tableID, b.CustomerID,
		b.Date, b.Time, b.PartySize, string(b.Status), string(b.AssignmentMethod),
		b.WasOnWaitlist, notes)
	if err != nil {
		return translateConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	res, err := s.q(ctx).ExecContext(ctx, q, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrBookingNotFound
	}
	return nil
}

func (s *Store) MaxPriorityOrder(ctx context.Context, restaurantID uint64) (uint64, error) {
	const q = `SELECT COALESCE(MAX(priority_order), 0) FROM waiting_list WHERE restaurant_id = ?`
	var max uint64
	err := s.q(ctx).QueryRowContext(ctx, q, restaurantID).Scan(&max)
	return max, err
}

func (s *Store) CreateWaitlistEntry(ctx context.Context, e *model.WaitingListEntry) error {
	const q = `INSERT INTO waiting_list
	           (restaurant_id, customer_id, requested_date, requested_time,
	            party_size, status, priority_order, offered_table_id, notes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var offered interface{}
	if e.OfferedTableID != nil {
		offered = *e.OfferedTableID
	}
	var notes interface{}
	if e.Notes != nil {
		notes = *e.Notes
	}
	res, err := s.q(ctx).ExecContext(ctx, q, e.RestaurantID, e.CustomerID,
		e.Date, e.Time, e.PartySize, string(e.Status), e.PriorityOrder, offered, notes)
	if err != nil {
		return translateConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

const waitlistColumns = `id, restaurant_id, customer_id,
	DATE_FORMAT(requested_date, '%Y-%m-%d'), TIME_FORMAT(requested_time, '%H:%i'),
	party_size, status, priority_order, offered_table_id, notes, created_at, updated_at`

func scanWaitlistEntry(sc scanner) (*model.WaitingListEntry, error) {
	var e model.WaitingListEntry
	var offered sql.NullInt64
	var notes sql.NullString
	err := sc.Scan(&e.ID, &e.RestaurantID, &e.CustomerID, &e.Date, &e.Time,
		&e.PartySize, &e.Status, &e.PriorityOrder, &offered, &notes,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if offered.Valid {
		id := uint64(offered.Int64)
		e.OfferedTableID = &id
	}
	if notes.Valid {
		n := notes.String
		e.Notes = &n
	}
	return &e, nil
}

func (s *Store) WaitingEntries(ctx context.Context, restaurantID uint64, date, slot string) ([]model.WaitingListEntry, error) {
	q := `SELECT ` + waitlistColumns + `
	      FROM waiting_list
	      WHERE restaurant_id = ? AND requested_date = ? AND requested_time = ?
	        AND status = 'WAITING'
	      ORDER BY priority_order ASC`
	rows, err := s.q(ctx).QueryContext(ctx, q, restaurantID, date, slot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WaitingListEntry
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) WaitingCount(ctx context.Context, restaurantID uint64, date, slot string) (uint32, error) {
	const q = `SELECT COUNT(*) FROM waiting_list
	           WHERE restaurant_id = ? AND requested_date = ? AND requested_time = ?
	             AND status = 'WAITING'`
	var n uint32
	err := s.q(ctx).QueryRowContext(ctx, q, restaurantID, date, slot).Scan(&n)
	return n, err
}

func (s *Store) OfferedTableIDs(ctx context.Context, restaurantID uint64, date, slot string) ([]uint64, error) {
	const q = `SELECT offered_table_id FROM waiting_list
	           WHERE restaurant_id = ? AND requested_date = ? AND requested_time = ?
	             AND status = 'NOTIFIED' AND offered_table_id IS NOT NULL`
	rows, err := s.q(ctx).QueryContext(ctx, q, restaurantID, date, slot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) WaitlistEntryByID(ctx context.Context, id uint64) (*model.WaitingListEntry, error) {
	q := `SELECT ` + waitlistColumns + ` FROM waiting_list WHERE id = ?`
	e, err := scanWaitlistEntry(s.q(ctx).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrWaitlistEntryNotFound
	}
	return e, err
}

func (s *Store) UpdateWaitlistEntry(ctx context.Context, id uint64, status model.WaitlistStatus, offeredTableID *uint64) error {
	const q = `UPDATE waiting_list SET status = ?, offered_table_id = ? WHERE id = ?`
	var offered interface{}
	if offeredTableID != nil {
		offered = *offeredTableID
	}
	res, err := s.q(ctx).ExecContext(ctx, q, string(status), offered, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrWaitlistEntryNotFound
	}
	return nil
}
