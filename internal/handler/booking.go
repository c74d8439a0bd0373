package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/repository"
	"github.com/iliyamo/movie-seat-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle to authenticated
// customers: purchase, listing and cancellation.  JWT authentication
// and role validation have already run by the time these methods are
// invoked; they may still return 401 when no user id can be extracted
// from the context.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Service  *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(bookings *repository.BookingRepo, svc *service.BookingService) *BookingHandler {
	if bookings == nil || svc == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Service: svc}
}

// Create handles POST /v1/shows/:id/bookings.  The body must contain a
// "seat_ids" array.  The purchase is all-or-nothing: when any seat was
// taken first the response is 409 with the losing seats listed and no
// seat is booked.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	booking, err := h.Service.Book(c.Request().Context(), showID, userID, body.SeatIDs)
	if err != nil {
		var conflict *service.SeatConflictError
		switch {
		case errors.Is(err, service.ErrNoSeatsRequested):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
		case errors.Is(err, service.ErrUnknownSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "one or more seats do not belong to this show"})
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.Is(err, service.ErrInsufficientCapacity):
			return c.JSON(http.StatusConflict, echo.Map{"error": "remaining capacity is reserved for waitlisted parties"})
		case errors.As(err, &conflict):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":    "seats no longer available",
				"seat_ids": conflict.SeatIDs,
				"seats":    conflict.Labels,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":         booking.ID,
		"show_id":            booking.ShowID,
		"booking_time":       booking.BookingTime,
		"total_amount_cents": booking.TotalAmountCents,
		"payment_status":     booking.PaymentStatus,
		"booking_status":     booking.BookingStatus,
	})
}

// List handles GET /v1/my-bookings and returns the user's bookings,
// newest first, with movie, show and seat labels resolved.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if details == nil {
		details = []repository.BookingDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// Cancel handles DELETE /v1/bookings/:id.  Only the booking's owner
// may cancel it, and only while it is still active; anything else is a
// 404.  Freed seats are offered to the waitlist before the response
// is written.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	released, err := h.Service.Cancel(c.Request().Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": true, "released_seats": released})
}
