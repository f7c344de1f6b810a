package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var restaurantCols = []string{"id", "owner_id", "name", "slot_minutes", "created_at", "updated_at"}

func TestRestaurantRepoCreate_DefaultsSlotMinutes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRestaurantRepo(db)

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO restaurants").
		WithArgs(7, "Trattoria", model.DefaultSlotMinutes).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT id, owner_id, name, slot_minutes").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(restaurantCols).
			AddRow(42, 7, "Trattoria", 15, now, now))

	rest := &model.Restaurant{OwnerID: 7, Name: "Trattoria"}
	require.NoError(t, repo.Create(context.Background(), rest))
	assert.Equal(t, uint64(42), rest.ID)
	assert.Equal(t, model.DefaultSlotMinutes, rest.SlotMinutes)
	assert.False(t, rest.CreatedAt.IsZero(), "read-back populates timestamps")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepoGetByIDAndOwner_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRestaurantRepo(db)

	mock.ExpectQuery("SELECT id, owner_id, name, slot_minutes").
		WithArgs(5, 9).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByIDAndOwner(context.Background(), 5, 9)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepoUpdate_NotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRestaurantRepo(db)

	mock.ExpectExec("UPDATE restaurants").
		WithArgs("New Name", 30, 5, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateByIDAndOwner(context.Background(), &model.Restaurant{
		ID: 5, OwnerID: 9, Name: "New Name", SlotMinutes: 30,
	})
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepoDelete_HistoryBlocks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRestaurantRepo(db)

	mock.ExpectQuery("FROM bookings WHERE restaurant_id").
		WithArgs(5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"deps"}).AddRow(3))

	err := repo.DeleteByIDAndOwner(context.Background(), 5, 9)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepoDelete_OK(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRestaurantRepo(db)

	mock.ExpectQuery("FROM bookings WHERE restaurant_id").
		WithArgs(5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"deps"}).AddRow(0))
	mock.ExpectExec("DELETE FROM restaurants").
		WithArgs(5, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteByIDAndOwner(context.Background(), 5, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}
