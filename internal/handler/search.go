package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/arrangement"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// ArrangementHandler serves the seat-arrangement search: given a party
// size it proposes ranked groupings of currently free seats.
type ArrangementHandler struct {
	ShowRepo *repository.ShowRepo
	SeatRepo *repository.SeatRepo
}

// NewArrangementHandler constructs an ArrangementHandler.  All
// dependencies must be non-nil.
func NewArrangementHandler(showRepo *repository.ShowRepo, seatRepo *repository.SeatRepo) *ArrangementHandler {
	if showRepo == nil || seatRepo == nil {
		panic("nil repository passed to NewArrangementHandler")
	}
	return &ArrangementHandler{ShowRepo: showRepo, SeatRepo: seatRepo}
}

type arrangementView struct {
	Type           string     `json:"type"`
	Description    string     `json:"description"`
	Seats          []seatView `json:"seats"`
	ProximityScore int        `json:"proximity_score"`
	QualityScore   int        `json:"quality_score"`
}

// SearchArrangements handles GET /v1/shows/:id/arrangements?party_size=n.
// The search reads the free seats outside any transaction; a proposed
// arrangement is only a suggestion and is re-validated when booked.
// An empty menu is a normal response: the party may then join the
// waitlist.
func (h *ArrangementHandler) SearchArrangements(c echo.Context) error {
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	partySize, err := strconv.Atoi(c.QueryParam("party_size"))
	if err != nil || partySize < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be a positive integer"})
	}

	ctx := c.Request().Context()
	show, err := h.ShowRepo.GetByID(ctx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	free, err := h.SeatRepo.ListAvailableByShow(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	menu := arrangement.Search(free, partySize)
	views := make([]arrangementView, 0, len(menu))
	for _, a := range menu {
		views = append(views, arrangementView{
			Type:           a.Type,
			Description:    a.Description,
			Seats:          seatViews(a.Seats),
			ProximityScore: a.ProximityScore,
			QualityScore:   a.QualityScore,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"show_id":         show.ID,
		"party_size":      partySize,
		"available_seats": show.AvailableSeats,
		"arrangements":    views,
	})
}
