package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/engine"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// BookingEngine is the allocation engine surface the HTTP layer uses.
// Declared here so handler tests can substitute a fake.
type BookingEngine interface {
	Allocate(ctx context.Context, req engine.AllocateRequest) (*engine.AllocateResult, error)
	Transition(ctx context.Context, bookingID uint64, to model.BookingStatus) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID uint64) (*model.Booking, error)
	Complete(ctx context.Context, bookingID uint64) (*model.Booking, error)
	Availability(ctx context.Context, restaurantID uint64, date, slot string) (engine.AvailabilitySnapshot, error)
	DayAvailability(ctx context.Context, restaurantID uint64, date string) ([]engine.SlotAvailability, error)
	ConfirmOffer(ctx context.Context, entryID uint64) (*model.Booking, error)
	Withdraw(ctx context.Context, entryID uint64) error
	Promote(ctx context.Context, restaurantID uint64, date, slot string) (*model.WaitingListEntry, error)
}

// BookingHandler serves customer booking endpoints plus the staff
// actions that move bookings through their lifecycle.
type BookingHandler struct {
	Engine      BookingEngine
	Restaurants *repository.RestaurantRepo
	Bookings    *repository.BookingRepo
	Waitlist    *repository.WaitlistRepo
}

func NewBookingHandler(eng BookingEngine, rr *repository.RestaurantRepo, br *repository.BookingRepo, wr *repository.WaitlistRepo) *BookingHandler {
	if eng == nil || rr == nil || br == nil || wr == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: eng, Restaurants: rr, Bookings: br, Waitlist: wr}
}

// bookingResp is the JSON shape for booking records.
type bookingResp struct {
	ID               uint64    `json:"id"`
	RestaurantID     uint64    `json:"restaurant_id"`
	TableID          *uint64   `json:"table_id"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	PartySize        uint32    `json:"party_size"`
	Status           string    `json:"status"`
	AssignmentMethod string    `json:"assignment_method"`
	WasOnWaitlist    bool      `json:"was_on_waitlist"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:               b.ID,
		RestaurantID:     b.RestaurantID,
		TableID:          b.TableID,
		Date:             b.Date,
		Time:             b.Time,
		PartySize:        b.PartySize,
		Status:           string(b.Status),
		AssignmentMethod: string(b.AssignmentMethod),
		WasOnWaitlist:    b.WasOnWaitlist,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt,
	}
}

// waitlistResp is the JSON shape for waiting-list entries.
type waitlistResp struct {
	ID             uint64    `json:"id"`
	RestaurantID   uint64    `json:"restaurant_id"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	PartySize      uint32    `json:"party_size"`
	Status         string    `json:"status"`
	PriorityOrder  uint64    `json:"priority_order"`
	OfferedTableID *uint64   `json:"offered_table_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toWaitlistResp(e *model.WaitingListEntry) waitlistResp {
	return waitlistResp{
		ID:             e.ID,
		RestaurantID:   e.RestaurantID,
		Date:           e.Date,
		Time:           e.Time,
		PartySize:      e.PartySize,
		Status:         string(e.Status),
		PriorityOrder:  e.PriorityOrder,
		OfferedTableID: e.OfferedTableID,
		CreatedAt:      e.CreatedAt,
	}
}

// slotRequest validates the shared (restaurant_id, date, time) triple
// of booking requests and checks slot alignment against the
// restaurant's granularity.  A non-empty string return is the error
// message for the client.
func (h *BookingHandler) slotRequest(c echo.Context, restaurantID uint64, date, slot string) string {
	if !validDate(date) {
		return "date must be YYYY-MM-DD"
	}
	if !validTime(slot) {
		return "time must be HH:MM"
	}
	rest, err := h.Restaurants.GetByID(c.Request().Context(), restaurantID)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			return "restaurant not found"
		}
		return "query failed"
	}
	if !engine.AlignedToGranularity(slot, rest.SlotMinutes) {
		return "time is not on a slot boundary"
	}
	return ""
}

// CreateBooking handles POST /v1/bookings.  The engine assigns the
// best-fitting table or queues the party when the slot is full.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		RestaurantID uint64 `json:"restaurant_id"`
		Date         string `json:"date"`
		Time         string `json:"time"`
		PartySize    uint32 `json:"party_size"`
		Notes        string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.PartySize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be positive"})
	}
	if msg := h.slotRequest(c, body.RestaurantID, body.Date, body.Time); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	req := engine.AllocateRequest{
		RestaurantID: body.RestaurantID,
		CustomerID:   customerID,
		Date:         body.Date,
		Time:         body.Time,
		PartySize:    body.PartySize,
	}
	if notes := strings.TrimSpace(body.Notes); notes != "" {
		req.Notes = &notes
	}
	return h.allocate(c, req)
}

// CreateWalkIn handles POST /v1/restaurants/:restaurant_id/walk-ins.
// Staff seat a party that is physically present; if no table fits the
// booking is still admitted without a table instead of being queued.
func (h *BookingHandler) CreateWalkIn(c echo.Context) error {
	staffID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rid, err := paramID(c, "restaurant_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant_id"})
	}
	var body struct {
		Date      string `json:"date"`
		Time      string `json:"time"`
		PartySize uint32 `json:"party_size"`
		Notes     string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.PartySize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be positive"})
	}
	if msg := h.slotRequest(c, rid, body.Date, body.Time); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	req := engine.AllocateRequest{
		RestaurantID: rid,
		CustomerID:   staffID,
		Date:         body.Date,
		Time:         body.Time,
		PartySize:    body.PartySize,
		Confirmed:    true,
		WalkIn:       true,
	}
	if notes := strings.TrimSpace(body.Notes); notes != "" {
		req.Notes = &notes
	}
	return h.allocate(c, req)
}

// AssignTable handles POST /v1/restaurants/:restaurant_id/assignments.
// Staff pick the table themselves; capacity is not enforced but
// double-booking is.
func (h *BookingHandler) AssignTable(c echo.Context) error {
	staffID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rid, err := paramID(c, "restaurant_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant_id"})
	}
	var body struct {
		TableID    uint64 `json:"table_id"`
		CustomerID uint64 `json:"customer_id"`
		Date       string `json:"date"`
		Time       string `json:"time"`
		PartySize  uint32 `json:"party_size"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id is required"})
	}
	if body.PartySize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be positive"})
	}
	if msg := h.slotRequest(c, rid, body.Date, body.Time); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	customerID := body.CustomerID
	if customerID == 0 {
		customerID = staffID
	}
	req := engine.AllocateRequest{
		RestaurantID: rid,
		CustomerID:   customerID,
		Date:         body.Date,
		Time:         body.Time,
		PartySize:    body.PartySize,
		TableID:      &body.TableID,
		Confirmed:    true,
	}
	return h.allocate(c, req)
}

// allocate runs the engine request and translates the outcome: a
// booking, a queued waitlist entry or a domain error.
func (h *BookingHandler) allocate(c echo.Context, req engine.AllocateRequest) error {
	res, err := h.Engine.Allocate(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrRestaurantClosed):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		case errors.Is(err, engine.ErrInvalidPartySize), errors.Is(err, engine.ErrInvalidTimeSlot):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, engine.ErrTableUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "table unavailable at that time"})
		case errors.Is(err, engine.ErrAllocationConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot contention, retry"})
		case errors.Is(err, engine.ErrRestaurantNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "allocation failed"})
	}
	if res.Booking != nil {
		return c.JSON(http.StatusCreated, echo.Map{"booking": toBookingResp(res.Booking)})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"waitlist_entry": toWaitlistResp(res.Entry)})
}

// MyBookings handles GET /v1/my-bookings and lists the caller's bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Bookings.ListByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]bookingResp, 0, len(list))
	for _, b := range list {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// GetBooking handles GET /v1/bookings/:id.  Customers can only read
// their own bookings.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	role, _ := c.Get("role").(string)
	if b.CustomerID != customerID && role != "OWNER" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  Cancelling an
// active booking frees its table and promotes the waitlist.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	role, _ := c.Get("role").(string)
	if b.CustomerID != customerID && role != "OWNER" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	updated, err := h.Engine.Cancel(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, toBookingResp(updated))
}

// UpdateBookingStatus handles PATCH /v1/bookings/:id/status.
// Staff move bookings through confirm/seat/complete/no-show.
func (h *BookingHandler) UpdateBookingStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	to := model.BookingStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
	if !model.ValidBookingStatus(to) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	updated, err := h.Engine.Transition(c.Request().Context(), id, to)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, engine.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toBookingResp(updated))
}

// RestaurantBookings handles GET /v1/restaurants/:restaurant_id/bookings?date=YYYY-MM-DD
// and returns the owner's day sheet.
func (h *BookingHandler) RestaurantBookings(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rid, err := paramID(c, "restaurant_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant_id"})
	}
	if _, err := h.Restaurants.GetByIDAndOwner(c.Request().Context(), rid, ownerID); err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	date := c.QueryParam("date")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	list, err := h.Bookings.ListByRestaurantAndDate(c.Request().Context(), rid, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]bookingResp, 0, len(list))
	for _, b := range list {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}
