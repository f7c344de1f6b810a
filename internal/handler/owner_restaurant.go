package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// OwnerHandler bundles repositories for owners to manage their
// restaurants, tables and operating calendar.
type OwnerHandler struct {
	RestaurantRepo *repository.RestaurantRepo // restaurant persistence
	TableRepo      *repository.TableRepo      // table persistence
	HoursRepo      *repository.HoursRepo      // calendar persistence
	BookingRepo    *repository.BookingRepo    // booking read access for day views
	WaitlistRepo   *repository.WaitlistRepo   // waitlist read access for day views
	Promoter       Promoter                   // re-runs waitlist promotion after inventory changes
}

// Promoter is the slice of the allocation engine the owner surface
// needs: adding a table or freeing one up may let a waiting party in.
type Promoter interface {
	Promote(ctx context.Context, restaurantID uint64, date, slot string) (*model.WaitingListEntry, error)
}

// NewOwnerHandler constructs a new OwnerHandler and panics if any dependency is nil.
func NewOwnerHandler(rr *repository.RestaurantRepo, tr *repository.TableRepo, hr *repository.HoursRepo, br *repository.BookingRepo, wr *repository.WaitlistRepo) *OwnerHandler {
	if rr == nil || tr == nil || hr == nil || br == nil || wr == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{
		RestaurantRepo: rr,
		TableRepo:      tr,
		HoursRepo:      hr,
		BookingRepo:    br,
		WaitlistRepo:   wr,
	}
}

// restaurantResp is the JSON shape for restaurant records.
type restaurantResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	SlotMinutes uint32    `json:"slot_minutes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRestaurantResp(r *model.Restaurant) restaurantResp {
	return restaurantResp{
		ID:          r.ID,
		Name:        r.Name,
		SlotMinutes: r.SlotMinutes,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// CreateRestaurant handles POST /v1/restaurants.
func (h *OwnerHandler) CreateRestaurant(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name        string `json:"name"`
		SlotMinutes uint32 `json:"slot_minutes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.SlotMinutes != 0 && 60%body.SlotMinutes != 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_minutes must divide 60"})
	}

	rest := &model.Restaurant{OwnerID: ownerID, Name: name, SlotMinutes: body.SlotMinutes}
	if err := h.RestaurantRepo.Create(c.Request().Context(), rest); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create restaurant"})
	}
	return c.JSON(http.StatusCreated, toRestaurantResp(rest))
}

// ListRestaurants handles GET /v1/restaurants and returns the owner's restaurants.
func (h *OwnerHandler) ListRestaurants(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.RestaurantRepo.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]restaurantResp, 0, len(list))
	for _, r := range list {
		out = append(out, toRestaurantResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurants": out})
}

// GetRestaurant handles GET /v1/restaurants/:id.
func (h *OwnerHandler) GetRestaurant(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rest, err := h.RestaurantRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRestaurantResp(rest))
}

// UpdateRestaurant handles PUT /v1/restaurants/:id.
func (h *OwnerHandler) UpdateRestaurant(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name        string `json:"name"`
		SlotMinutes uint32 `json:"slot_minutes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.SlotMinutes == 0 || 60%body.SlotMinutes != 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_minutes must divide 60"})
	}

	rest := &model.Restaurant{ID: id, OwnerID: ownerID, Name: name, SlotMinutes: body.SlotMinutes}
	if err := h.RestaurantRepo.UpdateByIDAndOwner(c.Request().Context(), rest); err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteRestaurant handles DELETE /v1/restaurants/:id.  Restaurants
// with booking or waitlist history cannot be removed.
func (h *OwnerHandler) DeleteRestaurant(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.RestaurantRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		switch err {
		case repository.ErrRestaurantNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "restaurant has booking history"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
