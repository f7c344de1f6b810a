package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrTableNotFound is returned when a table lookup fails.
var ErrTableNotFound = errors.New("table not found")

// ErrTableNumberExists is returned when a table number is already
// taken within the same restaurant.
var ErrTableNumberExists = errors.New("table number already exists")

// TableRepo provides CRUD access to the physical tables of a
// restaurant.
type TableRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

// Create inserts a new table.  The (restaurant_id, table_number) pair
// is unique; a duplicate insert yields ErrTableNumberExists.  Status
// defaults to AVAILABLE when empty.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	if t.Status == "" {
		t.Status = model.TableAvailable
	}
	const qInsert = `INSERT INTO restaurant_tables (restaurant_id, table_number, capacity, status)
	                 VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, t.RestaurantID, t.TableNumber, t.Capacity, string(t.Status))
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrTableNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	const qSelect = `SELECT id, restaurant_id, table_number, capacity, status, created_at, updated_at
	                 FROM restaurant_tables WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, t.ID).
		Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a table by its ID.  Returns ErrTableNotFound when
// no row matches.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT id, restaurant_id, table_number, capacity, status, created_at, updated_at
	           FROM restaurant_tables WHERE id = ?`
	var t model.Table
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByRestaurant returns every table of a restaurant regardless of
// status, ordered by capacity then table number so listings match the
// allocation scan order.
func (r *TableRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]*model.Table, error) {
	const q = `SELECT id, restaurant_id, table_number, capacity, status, created_at, updated_at
	           FROM restaurant_tables
	           WHERE restaurant_id = ?
	           ORDER BY capacity ASC, table_number ASC`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Table
	for rows.Next() {
		t := new(model.Table)
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes the capacity and status of a table.  Returns
// ErrTableNotFound when the row does not exist.
func (r *TableRepo) Update(ctx context.Context, t *model.Table) error {
	const q = `UPDATE restaurant_tables
	           SET capacity = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND restaurant_id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Capacity, string(t.Status), t.ID, t.RestaurantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// Delete removes a table unless active bookings still reference it.
// Historical (terminal) bookings keep their table_id, so only
// PENDING/CONFIRMED/SEATED rows block the delete with ErrConflict.
func (r *TableRepo) Delete(ctx context.Context, id, restaurantID uint64) error {
	const qDeps = `SELECT COUNT(*) FROM bookings
	               WHERE table_id = ? AND status IN ('PENDING','CONFIRMED','SEATED')`
	var deps int
	if err := r.db.QueryRowContext(ctx, qDeps, id).Scan(&deps); err != nil {
		return err
	}
	if deps > 0 {
		return ErrConflict
	}
	const q = `DELETE FROM restaurant_tables WHERE id = ? AND restaurant_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, restaurantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	return nil
}
