package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// tableResp is the JSON shape for table records.
type tableResp struct {
	ID          uint64    `json:"id"`
	TableNumber uint32    `json:"table_number"`
	Capacity    uint32    `json:"capacity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTableResp(t *model.Table) tableResp {
	return tableResp{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		Capacity:    t.Capacity,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ownedRestaurant loads the :restaurant_id path parameter and checks
// the caller owns it.  Returns a nil restaurant after writing the
// error response.
func (h *OwnerHandler) ownedRestaurant(c echo.Context) *model.Restaurant {
	ownerID, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return nil
	}
	rid, err := paramID(c, "restaurant_id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant_id"})
		return nil
	}
	rest, err := h.RestaurantRepo.GetByIDAndOwner(c.Request().Context(), rid, ownerID)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return nil
	}
	return rest
}

// CreateTable handles POST /v1/restaurants/:restaurant_id/tables.
func (h *OwnerHandler) CreateTable(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	var body struct {
		TableNumber uint32 `json:"table_number"`
		Capacity    uint32 `json:"capacity"`
		Status      string `json:"status"`
		// PromoteFor optionally names a slot to re-check once the
		// table exists, letting a waiting party claim it right away.
		PromoteFor *struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"promote_for"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.TableNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number is required"})
	}
	if body.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	status := model.TableStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
	if body.Status != "" && !model.ValidTableStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	t := &model.Table{
		RestaurantID: rest.ID,
		TableNumber:  body.TableNumber,
		Capacity:     body.Capacity,
		Status:       status,
	}
	if err := h.TableRepo.Create(c.Request().Context(), t); err != nil {
		if err == repository.ErrTableNumberExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "table number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	if h.Promoter != nil && t.Status == model.TableAvailable && body.PromoteFor != nil &&
		validDate(body.PromoteFor.Date) && validTime(body.PromoteFor.Time) {
		if _, err := h.Promoter.Promote(c.Request().Context(), rest.ID, body.PromoteFor.Date, body.PromoteFor.Time); err != nil {
			c.Logger().Warnf("promotion after table create failed: %v", err)
		}
	}
	return c.JSON(http.StatusCreated, toTableResp(t))
}

// ListTables handles GET /v1/restaurants/:restaurant_id/tables.
func (h *OwnerHandler) ListTables(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	list, err := h.TableRepo.ListByRestaurant(c.Request().Context(), rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]tableResp, 0, len(list))
	for _, t := range list {
		out = append(out, toTableResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": out})
}

// UpdateTable handles PUT /v1/restaurants/:restaurant_id/tables/:id.
// Capacity and status are mutable; the table number is not.  When a
// table becomes AVAILABLE again the waitlist is given a chance to
// promote into it.
func (h *OwnerHandler) UpdateTable(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Capacity uint32 `json:"capacity"`
		Status   string `json:"status"`
		// PromoteFor optionally names a slot to re-check after the
		// change, e.g. {"date":"2026-09-04","time":"19:00"}.
		PromoteFor *struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"promote_for"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	status := model.TableStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
	if !model.ValidTableStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	t := &model.Table{ID: id, RestaurantID: rest.ID, Capacity: body.Capacity, Status: status}
	if err := h.TableRepo.Update(c.Request().Context(), t); err != nil {
		if err == repository.ErrTableNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if h.Promoter != nil && status == model.TableAvailable && body.PromoteFor != nil &&
		validDate(body.PromoteFor.Date) && validTime(body.PromoteFor.Time) {
		if _, err := h.Promoter.Promote(c.Request().Context(), rest.ID, body.PromoteFor.Date, body.PromoteFor.Time); err != nil {
			c.Logger().Warnf("promotion after table update failed: %v", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTable handles DELETE /v1/restaurants/:restaurant_id/tables/:id.
// Tables referenced by active bookings cannot be removed.
func (h *OwnerHandler) DeleteTable(c echo.Context) error {
	rest := h.ownedRestaurant(c)
	if rest == nil {
		return nil
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.TableRepo.Delete(c.Request().Context(), id, rest.ID); err != nil {
		switch err {
		case repository.ErrTableNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "table has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
