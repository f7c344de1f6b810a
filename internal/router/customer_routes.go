package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.
// Customers request bookings, follow their waitlist entries and act on
// table offers.  Booking detail and cancellation are shared with the
// OWNER role because owners may inspect or cancel bookings held at
// their restaurants; the handlers enforce per-record ownership.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/bookings", b.CreateBooking)
	g.GET("/my-bookings", b.MyBookings)
	g.GET("/my-waitlist", b.MyWaitlist)
	// Accept a table offer; on success the entry becomes a confirmed booking.
	g.POST("/waitlist/:id/confirm", b.ConfirmOffer)
	// Leave the waitlist.  Idempotent, always 204 for an owned entry.
	g.DELETE("/waitlist/:id", b.WithdrawEntry)

	shared := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER", "CUSTOMER"),
	)
	shared.GET("/bookings/:id", b.GetBooking)
	shared.POST("/bookings/:id/cancel", b.CancelBooking)
}
