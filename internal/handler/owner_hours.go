package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// weeklyHoursBody is one weekday row of the schedule payload.
type weeklyHoursBody struct {
	Weekday  uint8  `json:"weekday"` // 0=Sunday .. 6=Saturday
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
	IsClosed bool   `json:"is_closed"`
}

func (b weeklyHoursBody) validate() string {
	if b.Weekday > 6 {
		return "weekday must be 0-6"
	}
	if b.IsClosed {
		return ""
	}
	if !validTime(b.OpensAt) || !validTime(b.ClosesAt) {
		return "opens_at/closes_at must be HH:MM"
	}
	if b.OpensAt >= b.ClosesAt {
		return "opens_at must precede closes_at"
	}
	return ""
}

// PutWeeklyHours handles PUT /v1/restaurants/:restaurant_id/hours and
// upserts one or more weekday rows in a single request.
func (h *OwnerHandler) PutWeeklyHours(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	var body struct {
		Hours []weeklyHoursBody `json:"hours"`
	}
	if err := c.Bind(&body); err != nil || len(body.Hours) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hours is required"})
	}
	for _, row := range body.Hours {
		if msg := row.validate(); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
	}
	ctx := c.Request().Context()
	for _, row := range body.Hours {
		oh := &model.OperatingHours{
			RestaurantID: rest.ID,
			Weekday:      row.Weekday,
			OpensAt:      row.OpensAt,
			ClosesAt:     row.ClosesAt,
			IsClosed:     row.IsClosed,
		}
		if oh.IsClosed {
			// keep a parseable window on closed rows
			oh.OpensAt, oh.ClosesAt = "00:00", "00:00"
		}
		if err := h.HoursRepo.UpsertWeekly(ctx, oh); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// GetWeeklyHours handles GET /v1/restaurants/:restaurant_id/hours.
func (h *OwnerHandler) GetWeeklyHours(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	list, err := h.HoursRepo.ListWeekly(c.Request().Context(), rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]weeklyHoursBody, 0, len(list))
	for _, oh := range list {
		out = append(out, weeklyHoursBody{
			Weekday:  oh.Weekday,
			OpensAt:  oh.OpensAt,
			ClosesAt: oh.ClosesAt,
			IsClosed: oh.IsClosed,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"hours": out})
}

// AddClosedDate handles POST /v1/restaurants/:restaurant_id/closed-dates.
func (h *OwnerHandler) AddClosedDate(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	var body struct {
		Date   string `json:"date"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil || !validDate(body.Date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	cd := &model.ClosedDate{RestaurantID: rest.ID, Date: body.Date}
	if reason := strings.TrimSpace(body.Reason); reason != "" {
		cd.Reason = &reason
	}
	if err := h.HoursRepo.AddClosedDate(c.Request().Context(), cd); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "date already closed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": cd.ID, "date": cd.Date})
}

// ListClosedDates handles GET /v1/restaurants/:restaurant_id/closed-dates
// and returns closures from today onward.
func (h *OwnerHandler) ListClosedDates(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	from := c.QueryParam("from")
	if !validDate(from) {
		from = time.Now().UTC().Format("2006-01-02")
	}
	list, err := h.HoursRepo.ListClosedDates(c.Request().Context(), rest.ID, from)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	type closedDateResp struct {
		ID     uint64  `json:"id"`
		Date   string  `json:"date"`
		Reason *string `json:"reason,omitempty"`
	}
	out := make([]closedDateResp, 0, len(list))
	for _, cd := range list {
		out = append(out, closedDateResp{ID: cd.ID, Date: cd.Date, Reason: cd.Reason})
	}
	return c.JSON(http.StatusOK, echo.Map{"closed_dates": out})
}

// RemoveClosedDate handles DELETE /v1/restaurants/:restaurant_id/closed-dates/:date.
func (h *OwnerHandler) RemoveClosedDate(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	date := c.Param("date")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if err := h.HoursRepo.RemoveClosedDate(c.Request().Context(), rest.ID, date); err != nil {
		if err == repository.ErrClosedDateNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "closed date not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// PutCustomHours handles PUT /v1/restaurants/:restaurant_id/custom-hours/:date
// and overrides the weekly schedule for a single date.
func (h *OwnerHandler) PutCustomHours(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	date := c.Param("date")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	var body struct {
		OpensAt  string `json:"opens_at"`
		ClosesAt string `json:"closes_at"`
		IsClosed bool   `json:"is_closed"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ch := &model.CustomHours{
		RestaurantID: rest.ID,
		Date:         date,
		OpensAt:      body.OpensAt,
		ClosesAt:     body.ClosesAt,
		IsClosed:     body.IsClosed,
	}
	if ch.IsClosed {
		ch.OpensAt, ch.ClosesAt = "00:00", "00:00"
	} else {
		if !validTime(ch.OpensAt) || !validTime(ch.ClosesAt) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "opens_at/closes_at must be HH:MM"})
		}
		if ch.OpensAt >= ch.ClosesAt {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "opens_at must precede closes_at"})
		}
	}
	if err := h.HoursRepo.UpsertCustom(c.Request().Context(), ch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveCustomHours handles DELETE /v1/restaurants/:restaurant_id/custom-hours/:date.
func (h *OwnerHandler) RemoveCustomHours(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	date := c.Param("date")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if err := h.HoursRepo.RemoveCustom(c.Request().Context(), rest.ID, date); err != nil {
		if err == repository.ErrCustomHoursNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "custom hours not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
