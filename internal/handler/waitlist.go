package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/engine"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// MyWaitlist handles GET /v1/my-waitlist and lists the caller's entries.
func (h *BookingHandler) MyWaitlist(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Waitlist.ListByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]waitlistResp, 0, len(list))
	for _, e := range list {
		out = append(out, toWaitlistResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"waitlist": out})
}

// ownEntry loads the :id entry and checks the caller may act on it.
// ok is false when the error response has already been written.
func (h *BookingHandler) ownEntry(c echo.Context) (entryID uint64, ok bool) {
	customerID, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return 0, false
	}
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return 0, false
	}
	entry, err := h.Waitlist.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrWaitlistEntryNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "waitlist entry not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return 0, false
	}
	role, _ := c.Get("role").(string)
	if entry.CustomerID != customerID && role != "OWNER" {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return 0, false
	}
	return id, true
}

// ConfirmOffer handles POST /v1/waitlist/:id/confirm.  The customer
// accepts a NOTIFIED offer and gets a CONFIRMED booking on the
// reserved table.
func (h *BookingHandler) ConfirmOffer(c echo.Context) error {
	entryID, ok := h.ownEntry(c)
	if !ok {
		return nil
	}
	booking, err := h.Engine.ConfirmOffer(c.Request().Context(), entryID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrStaleWaitlistEntry):
			return c.JSON(http.StatusConflict, echo.Map{"error": "offer no longer valid"})
		case errors.Is(err, engine.ErrWaitlistEntryNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "waitlist entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": toBookingResp(booking)})
}

// WithdrawEntry handles DELETE /v1/waitlist/:id.  Withdrawing
// is idempotent: an already-settled entry is left as is.
func (h *BookingHandler) WithdrawEntry(c echo.Context) error {
	entryID, ok := h.ownEntry(c)
	if !ok {
		return nil
	}
	if err := h.Engine.Withdraw(c.Request().Context(), entryID); err != nil {
		if errors.Is(err, engine.ErrWaitlistEntryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "waitlist entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "withdraw failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RestaurantWaitlist handles GET /v1/restaurants/:restaurant_id/waitlist?date=YYYY-MM-DD
// and shows the owner their queue in promotion order.
func (h *BookingHandler) RestaurantWaitlist(c echo.Context) error {
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
	list, err := h.Waitlist.ListByRestaurantAndDate(c.Request().Context(), rid, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]waitlistResp, 0, len(list))
	for _, e := range list {
		out = append(out, toWaitlistResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"waitlist": out})
}

// PromoteSlot handles POST /v1/restaurants/:restaurant_id/waitlist/promote.
// Owners trigger a promotion pass manually, typically after changing
// table inventory for a busy slot.
func (h *BookingHandler) PromoteSlot(c echo.Context) error {
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
	var body struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := c.Bind(&body); err != nil || !validDate(body.Date) || !validTime(body.Time) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time are required"})
	}
	entry, err := h.Engine.Promote(c.Request().Context(), rid, body.Date, body.Time)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "promotion failed"})
	}
	if entry == nil {
		return c.JSON(http.StatusOK, echo.Map{"promoted": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"promoted": true, "entry": toWaitlistResp(entry)})
}
