package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/handler"
	"github.com/iliyamo/movie-seat-booking/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers can
// book seats, list and cancel their own bookings, and join or query
// the waitlist of a show.  Seat maps and arrangement search stay on
// the public router so guests can browse before authenticating.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, w *handler.WaitlistHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/shows/:id/bookings", b.Create)
	g.GET("/my-bookings", b.List)
	g.DELETE("/bookings/:id", b.Cancel)

	g.POST("/shows/:id/waitlist", w.Join)
	g.GET("/shows/:id/waitlist/position", w.Position)
}
