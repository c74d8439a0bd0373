package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/model"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// SeatHandler serves the public seat map of a show.  No authentication
// is required so that guests can inspect availability before booking.
type SeatHandler struct {
	ShowRepo *repository.ShowRepo
	SeatRepo *repository.SeatRepo
}

// NewSeatHandler constructs a SeatHandler.  All dependencies must be non-nil.
func NewSeatHandler(showRepo *repository.ShowRepo, seatRepo *repository.SeatRepo) *SeatHandler {
	if showRepo == nil || seatRepo == nil {
		panic("nil repository passed to NewSeatHandler")
	}
	return &SeatHandler{ShowRepo: showRepo, SeatRepo: seatRepo}
}

type seatView struct {
	ID     uint64 `json:"id"`
	Number uint32 `json:"number"`
	Label  string `json:"label"`
	Status string `json:"status"`
}

type rowView struct {
	Row   string     `json:"row"`
	Seats []seatView `json:"seats"`
}

// GetShowSeats handles GET /v1/shows/:id/seats.  It returns the show's
// full seat grid grouped by row, front row first, with each seat's
// current status.
func (h *SeatHandler) GetShowSeats(c echo.Context) error {
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()

	show, err := h.ShowRepo.GetByID(ctx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	movie, err := h.ShowRepo.MovieByShow(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats, err := h.SeatRepo.ListByShow(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Seats arrive ordered by row then number, so each row is one
	// contiguous run.
	var rows []rowView
	for _, s := range seats {
		if len(rows) == 0 || rows[len(rows)-1].Row != s.RowLabel {
			rows = append(rows, rowView{Row: s.RowLabel})
		}
		last := &rows[len(rows)-1]
		last.Seats = append(last.Seats, seatView{
			ID:     s.ID,
			Number: s.SeatNumber,
			Label:  s.Label(),
			Status: s.Status,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"show_id": show.ID,
		"movie": echo.Map{
			"id":           movie.ID,
			"title":        movie.Title,
			"genre":        movie.Genre,
			"duration_min": movie.DurationMin,
		},
		"show_date":            show.ShowDate.Format("2006-01-02"),
		"show_time":            show.ShowTime,
		"total_seats":          show.TotalSeats,
		"available_seats":      show.AvailableSeats,
		"price_per_seat_cents": show.PricePerSeatCents,
		"rows":                 rows,
	})
}

func seatViews(seats []model.Seat) []seatView {
	out := make([]seatView, 0, len(seats))
	for _, s := range seats {
		out = append(out, seatView{ID: s.ID, Number: s.SeatNumber, Label: s.Label(), Status: s.Status})
	}
	return out
}
