package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/repository"
	"github.com/iliyamo/movie-seat-booking/internal/service"
)

// WaitlistHandler exposes the waitlist to authenticated customers:
// joining the queue for a sold-out show and checking one's position.
type WaitlistHandler struct {
	Service *service.WaitlistService
}

// NewWaitlistHandler constructs a WaitlistHandler.
func NewWaitlistHandler(svc *service.WaitlistService) *WaitlistHandler {
	if svc == nil {
		panic("nil service passed to NewWaitlistHandler")
	}
	return &WaitlistHandler{Service: svc}
}

// Join handles POST /v1/shows/:id/waitlist.  The body carries the
// party size as "requested_seats"; a missing value defaults to 1.  A
// user can hold at most one active entry per show, so a second join
// returns 409.
func (h *WaitlistHandler) Join(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		RequestedSeats int `json:"requested_seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RequestedSeats == 0 {
		body.RequestedSeats = 1
	}

	entry, err := h.Service.Join(c.Request().Context(), userID, showID, body.RequestedSeats)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPartySize):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "requested_seats must be at least 1"})
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.Is(err, repository.ErrAlreadyWaiting):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already on the waitlist for this show"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not join waitlist"})
	}

	position, err := h.Service.Position(c.Request().Context(), userID, showID)
	if err != nil {
		// The entry exists; report it without a position rather than fail.
		position = -1
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"entry_id":        entry.ID,
		"show_id":         entry.ShowID,
		"requested_seats": entry.RequestedSeats,
		"status":          entry.Status,
		"position":        position,
	})
}

// Position handles GET /v1/shows/:id/waitlist/position.  Position 1
// means first in line; 0 means the user has been notified and should
// book before the reservation expires.  Users with no active entry
// get 404.
func (h *WaitlistHandler) Position(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}

	position, err := h.Service.Position(c.Request().Context(), userID, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if position < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not on the waitlist for this show"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id":  showID,
		"position": position,
		"notified": position == 0,
	})
}
