package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/engine"
)

// Availability handles GET /v1/restaurants/:restaurant_id/availability?date=...&time=...
// Without a time parameter the whole service day is returned slot by
// slot; with one, a single snapshot.  Public: no authentication
// needed, so it sits behind the response cache middleware.
func (h *BookingHandler) Availability(c echo.Context) error {
	rid, err := paramID(c, "restaurant_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant_id"})
	}
	date := c.QueryParam("date")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	slot := c.QueryParam("time")
	if slot != "" {
		if msg := h.slotRequest(c, rid, date, slot); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
		snap, err := h.Engine.Availability(c.Request().Context(), rid, date, slot)
		if err != nil {
			if errors.Is(err, engine.ErrRestaurantNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"date": date, "time": slot, "availability": snap})
	}

	slots, err := h.Engine.DayAvailability(c.Request().Context(), rid, date)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrRestaurantNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		case errors.Is(err, engine.ErrInvalidTimeSlot):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":  date,
		"open":  len(slots) > 0,
		"slots": slots,
	})
}
