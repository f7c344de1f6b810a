package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/engine"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// fakeEngine substitutes the allocation engine behind BookingEngine.
// Unset hooks fail the request loudly instead of silently passing.
type fakeEngine struct {
	allocateFn     func(ctx context.Context, req engine.AllocateRequest) (*engine.AllocateResult, error)
	transitionFn   func(ctx context.Context, id uint64, to model.BookingStatus) (*model.Booking, error)
	cancelFn       func(ctx context.Context, id uint64) (*model.Booking, error)
	confirmOfferFn func(ctx context.Context, id uint64) (*model.Booking, error)
	withdrawFn     func(ctx context.Context, id uint64) error
	promoteFn      func(ctx context.Context, rid uint64, date, slot string) (*model.WaitingListEntry, error)
	availabilityFn func(ctx context.Context, rid uint64, date, slot string) (engine.AvailabilitySnapshot, error)
	dayFn          func(ctx context.Context, rid uint64, date string) ([]engine.SlotAvailability, error)
}

func (f *fakeEngine) Allocate(ctx context.Context, req engine.AllocateRequest) (*engine.AllocateResult, error) {
	if f.allocateFn == nil {
		panic("unexpected Allocate call")
	}
	return f.allocateFn(ctx, req)
}

func (f *fakeEngine) Transition(ctx context.Context, id uint64, to model.BookingStatus) (*model.Booking, error) {
	if f.transitionFn == nil {
		panic("unexpected Transition call")
	}
	return f.transitionFn(ctx, id, to)
}

func (f *fakeEngine) Cancel(ctx context.Context, id uint64) (*model.Booking, error) {
	if f.cancelFn == nil {
		panic("unexpected Cancel call")
	}
	return f.cancelFn(ctx, id)
}

func (f *fakeEngine) Complete(ctx context.Context, id uint64) (*model.Booking, error) {
	return f.Transition(ctx, id, model.BookingCompleted)
}

func (f *fakeEngine) Availability(ctx context.Context, rid uint64, date, slot string) (engine.AvailabilitySnapshot, error) {
	if f.availabilityFn == nil {
		panic("unexpected Availability call")
	}
	return f.availabilityFn(ctx, rid, date, slot)
}

func (f *fakeEngine) DayAvailability(ctx context.Context, rid uint64, date string) ([]engine.SlotAvailability, error) {
	if f.dayFn == nil {
		panic("unexpected DayAvailability call")
	}
	return f.dayFn(ctx, rid, date)
}

func (f *fakeEngine) ConfirmOffer(ctx context.Context, id uint64) (*model.Booking, error) {
	if f.confirmOfferFn == nil {
		panic("unexpected ConfirmOffer call")
	}
	return f.confirmOfferFn(ctx, id)
}

func (f *fakeEngine) Withdraw(ctx context.Context, id uint64) error {
	if f.withdrawFn == nil {
		panic("unexpected Withdraw call")
	}
	return f.withdrawFn(ctx, id)
}

func (f *fakeEngine) Promote(ctx context.Context, rid uint64, date, slot string) (*model.WaitingListEntry, error) {
	if f.promoteFn == nil {
		panic("unexpected Promote call")
	}
	return f.promoteFn(ctx, rid, date, slot)
}

// newTestHandler wires a BookingHandler to the fake engine and
// sqlmock-backed repositories.
func newTestHandler(t *testing.T) (*BookingHandler, *fakeEngine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fake := &fakeEngine{}
	h := NewBookingHandler(fake,
		repository.NewRestaurantRepo(db),
		repository.NewBookingRepo(db),
		repository.NewWaitlistRepo(db),
	)
	return h, fake, mock
}

func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func asCustomer(c echo.Context, id uint64) {
	c.Set("user_id", id)
	c.Set("role", "CUSTOMER")
}

func asOwner(c echo.Context, id uint64) {
	c.Set("user_id", id)
	c.Set("role", "OWNER")
}

// expectRestaurant queues the GetByID lookup slotRequest performs.
func expectRestaurant(mock sqlmock.Sqlmock, id, ownerID uint64, slotMinutes uint32) {
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, owner_id, name, slot_minutes").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "owner_id", "name", "slot_minutes", "created_at", "updated_at"}).
			AddRow(id, ownerID, "Trattoria", slotMinutes, now, now))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateBooking_Created(t *testing.T) {
	h, fake, mock := newTestHandler(t)

	var got engine.AllocateRequest
	fake.allocateFn = func(_ context.Context, req engine.AllocateRequest) (*engine.AllocateResult, error) {
		got = req
		tid := uint64(77)
		return &engine.AllocateResult{Booking: &model.Booking{
			ID: 1, RestaurantID: req.RestaurantID, CustomerID: req.CustomerID,
			TableID: &tid, Date: req.Date, Time: req.Time, PartySize: req.PartySize,
			Status: model.BookingPending, AssignmentMethod: model.AssignAuto,
		}}, nil
	}
	expectRestaurant(mock, 3, 5, 15)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/bookings",
		`{"restaurant_id":3,"date":"2026-09-04","time":"19:00","party_size":2,"notes":" window seat "}`)
	asCustomer(c, 9)

	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "booking")

	assert.Equal(t, uint64(9), got.CustomerID, "customer comes from the token, not the body")
	assert.False(t, got.Confirmed)
	assert.False(t, got.WalkIn)
	assert.Nil(t, got.TableID)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "window seat", *got.Notes, "notes are trimmed")
}

func TestCreateBooking_Queued(t *testing.T) {
	h, fake, mock := newTestHandler(t)

	fake.allocateFn = func(_ context.Context, req engine.AllocateRequest) (*engine.AllocateResult, error) {
		return &engine.AllocateResult{Entry: &model.WaitingListEntry{
			ID: 4, RestaurantID: req.RestaurantID, CustomerID: req.CustomerID,
			Date: req.Date, Time: req.Time, PartySize: req.PartySize,
			Status: model.WaitlistWaiting, PriorityOrder: 2,
		}}, nil
	}
	expectRestaurant(mock, 3, 5, 15)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/bookings",
		`{"restaurant_id":3,"date":"2026-09-04","time":"19:00","party_size":6}`)
	asCustomer(c, 9)

	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusAccepted, rec.Code, "a full slot queues instead of failing")
	assert.Contains(t, decodeBody(t, rec), "waitlist_entry")
}

func TestCreateBooking_MisalignedSlot(t *testing.T) {
	h, _, mock := newTestHandler(t)
	expectRestaurant(mock, 3, 5, 15)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/bookings",
		`{"restaurant_id":3,"date":"2026-09-04","time":"19:10","party_size":2}`)
	asCustomer(c, 9)

	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_RestaurantClosed(t *testing.T) {
	h, fake, mock := newTestHandler(t)

	fake.allocateFn = func(context.Context, engine.AllocateRequest) (*engine.AllocateResult, error) {
		return nil, engine.ErrRestaurantClosed
	}
	expectRestaurant(mock, 3, 5, 15)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/bookings",
		`{"restaurant_id":3,"date":"2026-09-04","time":"19:00","party_size":2}`)
	asCustomer(c, 9)

	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateWalkIn_SetsFlags(t *testing.T) {
	h, fake, mock := newTestHandler(t)

	var got engine.AllocateRequest
	fake.allocateFn = func(_ context.Context, req engine.AllocateRequest) (*engine.AllocateResult, error) {
		got = req
		return &engine.AllocateResult{Booking: &model.Booking{
			ID: 2, Status: model.BookingConfirmed, AssignmentMethod: model.AssignAuto,
		}}, nil
	}
	expectRestaurant(mock, 3, 5, 15)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/restaurants/3/walk-ins",
		`{"date":"2026-09-04","time":"19:00","party_size":4}`)
	c.SetParamNames("restaurant_id")
	c.SetParamValues("3")
	asOwner(c, 5)

	require.NoError(t, h.CreateWalkIn(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, got.Confirmed, "walk-ins skip the pending stage")
	assert.True(t, got.WalkIn)
}

func TestAssignTable_DefaultsCustomerToStaff(t *testing.T) {
	h, fake, mock := newTestHandler(t)

	var got engine.AllocateRequest
	fake.allocateFn = func(_ context.Context, req engine.AllocateRequest) (*engine.AllocateResult, error) {
		got = req
		return &engine.AllocateResult{Booking: &model.Booking{
			ID: 3, Status: model.BookingConfirmed, AssignmentMethod: model.AssignManual,
		}}, nil
	}
	expectRestaurant(mock, 3, 5, 15)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/restaurants/3/assignments",
		`{"table_id":77,"date":"2026-09-04","time":"19:00","party_size":8}`)
	c.SetParamNames("restaurant_id")
	c.SetParamValues("3")
	asOwner(c, 5)

	require.NoError(t, h.AssignTable(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got.TableID)
	assert.Equal(t, uint64(77), *got.TableID)
	assert.Equal(t, uint64(5), got.CustomerID)
	assert.True(t, got.Confirmed)
}

func TestUpdateBookingStatus_RejectsUnknownStatus(t *testing.T) {
	h, _, _ := newTestHandler(t)

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/bookings/1/status", `{"status":"LUNCH"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asOwner(c, 5)

	require.NoError(t, h.UpdateBookingStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateBookingStatus_InvalidTransition(t *testing.T) {
	h, fake, _ := newTestHandler(t)

	fake.transitionFn = func(_ context.Context, id uint64, to model.BookingStatus) (*model.Booking, error) {
		return nil, engine.ErrInvalidTransition
	}

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/bookings/1/status", `{"status":"seated"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asOwner(c, 5)

	require.NoError(t, h.UpdateBookingStatus(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateBookingStatus_NormalizesCase(t *testing.T) {
	h, fake, _ := newTestHandler(t)

	var gotStatus model.BookingStatus
	fake.transitionFn = func(_ context.Context, id uint64, to model.BookingStatus) (*model.Booking, error) {
		gotStatus = to
		return &model.Booking{ID: id, Status: to}, nil
	}

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/bookings/1/status", `{"status":" seated "}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asOwner(c, 5)

	require.NoError(t, h.UpdateBookingStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.BookingSeated, gotStatus)
}
