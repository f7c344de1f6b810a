package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
)

// RegisterPublic registers unauthenticated availability endpoints.
// Guests check open slots before registering, so no JWT or role
// middleware applies here.  The caller passes the rate limiter and
// response cache as mw; availability is the hottest read path and the
// only one worth caching.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, mw ...echo.MiddlewareFunc) {
	// With ?time=HH:MM the response is a point snapshot for one slot,
	// without it a per-slot sweep of the whole service day.
	e.GET("/v1/restaurants/:restaurant_id/availability", b.Availability, mw...)
}
