package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterOwner registers OWNER-scoped endpoints under /v1.
// All routes require a valid JWT and the OWNER role.  Owners manage
// their restaurants, tables and operating calendar, and run the
// front-of-house side of bookings: walk-ins, manual table assignment,
// status transitions and the waitlist.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Restaurants ----
	g.POST("/restaurants", o.CreateRestaurant)
	g.GET("/restaurants", o.ListRestaurants)
	g.GET("/restaurants/:id", o.GetRestaurant)
	g.PUT("/restaurants/:id", o.UpdateRestaurant)
	g.PATCH("/restaurants/:id", o.UpdateRestaurant)
	g.DELETE("/restaurants/:id", o.DeleteRestaurant)

	// ---- Tables ----
	g.POST("/restaurants/:restaurant_id/tables", o.CreateTable)
	g.GET("/restaurants/:restaurant_id/tables", o.ListTables)
	g.PUT("/restaurants/:restaurant_id/tables/:id", o.UpdateTable)
	g.PATCH("/restaurants/:restaurant_id/tables/:id", o.UpdateTable)
	g.DELETE("/restaurants/:restaurant_id/tables/:id", o.DeleteTable)

	// ---- Operating calendar ----
	g.PUT("/restaurants/:restaurant_id/hours", o.PutWeeklyHours)
	g.GET("/restaurants/:restaurant_id/hours", o.GetWeeklyHours)
	g.POST("/restaurants/:restaurant_id/closed-dates", o.AddClosedDate)
	g.GET("/restaurants/:restaurant_id/closed-dates", o.ListClosedDates)
	g.DELETE("/restaurants/:restaurant_id/closed-dates/:date", o.RemoveClosedDate)
	g.PUT("/restaurants/:restaurant_id/custom-hours/:date", o.PutCustomHours)
	g.DELETE("/restaurants/:restaurant_id/custom-hours/:date", o.RemoveCustomHours)

	// ---- Front of house ----
	g.GET("/restaurants/:restaurant_id/bookings", b.RestaurantBookings) // day sheet, ?date=
	g.POST("/restaurants/:restaurant_id/walk-ins", b.CreateWalkIn)
	g.POST("/restaurants/:restaurant_id/assignments", b.AssignTable)
	g.PATCH("/bookings/:id/status", b.UpdateBookingStatus)

	// ---- Waitlist ----
	g.GET("/restaurants/:restaurant_id/waitlist", b.RestaurantWaitlist)
	g.POST("/restaurants/:restaurant_id/waitlist/promote", b.PromoteSlot)
}
