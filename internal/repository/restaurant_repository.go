package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrRestaurantNotFound is returned when a restaurant lookup fails.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// RestaurantRepo provides methods to create and retrieve restaurants.
// It embeds a database handle to perform queries and commands.
type RestaurantRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewRestaurantRepo constructs a RestaurantRepo with the given DB handle.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

// Create inserts a new restaurant.  OwnerID and Name must be set;
// SlotMinutes falls back to the default granularity when zero.  After
// the insert the record is read back so timestamps are populated.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
	if rest.SlotMinutes == 0 {
		rest.SlotMinutes = model.DefaultSlotMinutes
	}
	const qInsert = `INSERT INTO restaurants (owner_id, name, slot_minutes) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, rest.OwnerID, rest.Name, rest.SlotMinutes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rest.ID = uint64(id)

	const qSelect = `SELECT id, owner_id, name, slot_minutes, created_at, updated_at
	                 FROM restaurants WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, rest.ID).
		Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.SlotMinutes, &rest.CreatedAt, &rest.UpdatedAt)
}

// GetByID retrieves a restaurant by its ID regardless of owner.  It
// returns ErrRestaurantNotFound when no row is found.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	const q = `SELECT id, owner_id, name, slot_minutes, created_at, updated_at
	           FROM restaurants WHERE id = ?`
	var rest model.Restaurant
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.SlotMinutes, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &rest, nil
}

// GetByIDAndOwner retrieves a restaurant but only if it belongs to the
// given owner.  This helper is used to enforce resource ownership.
func (r *RestaurantRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Restaurant, error) {
	const q = `SELECT id, owner_id, name, slot_minutes, created_at, updated_at
	           FROM restaurants WHERE id = ? AND owner_id = ?`
	var rest model.Restaurant
	err := r.db.QueryRowContext(ctx, q, id, ownerID).
		Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.SlotMinutes, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &rest, nil
}

// ListByOwner returns all restaurants belonging to an owner, ordered
// by ID for stable pagination-free listings.
func (r *RestaurantRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Restaurant, error) {
	const q = `SELECT id, owner_id, name, slot_minutes, created_at, updated_at
	           FROM restaurants WHERE owner_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Restaurant
	for rows.Next() {
		rest := new(model.Restaurant)
		if err := rows.Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.SlotMinutes, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateByIDAndOwner updates the name and slot granularity of a
// restaurant the owner controls.  Returns ErrRestaurantNotFound when
// no matching row exists.
func (r *RestaurantRepo) UpdateByIDAndOwner(ctx context.Context, rest *model.Restaurant) error {
	const q = `UPDATE restaurants
	           SET name = ?, slot_minutes = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, rest.Name, rest.SlotMinutes, rest.ID, rest.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a restaurant when it has no bookings or
// waitlist history.  Dependent rows cause ErrConflict so callers can
// surface a 409 instead of a silent cascade.
func (r *RestaurantRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	const qDeps = `SELECT
	                 (SELECT COUNT(*) FROM bookings WHERE restaurant_id = ?) +
	                 (SELECT COUNT(*) FROM waiting_list WHERE restaurant_id = ?)`
	var deps int
	if err := r.db.QueryRowContext(ctx, qDeps, id, id).Scan(&deps); err != nil {
		return err
	}
	if deps > 0 {
		return ErrConflict
	}
	const q = `DELETE FROM restaurants WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}
