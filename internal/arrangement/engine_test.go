package arrangement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// row builds available seats with the given numbers in one row.
func row(label string, nums ...uint32) []model.Seat {
	seats := make([]model.Seat, 0, len(nums))
	for _, n := range nums {
		seats = append(seats, model.Seat{
			ID:         uint64(label[0])*1000 + uint64(n),
			ShowID:     1,
			RowLabel:   label,
			SeatNumber: n,
			Status:     model.SeatAvailable,
		})
	}
	return seats
}

func grid(rows ...[]model.Seat) []model.Seat {
	var all []model.Seat
	for _, r := range rows {
		all = append(all, r...)
	}
	return all
}

func labels(a Arrangement) []string {
	out := make([]string, len(a.Seats))
	for i, s := range a.Seats {
		out[i] = s.Label()
	}
	return out
}

func TestSearchSingleRowBeatsSplit(t *testing.T) {
	seats := grid(row("A", 1, 2, 3, 4, 5), row("B", 1, 2, 3, 4, 5))

	got := Search(seats, 3)
	require.Len(t, got, 5)

	assert.Equal(t, TypeSingleRow, got[0].Type)
	assert.Equal(t, "Row A, Seats 1-3", got[0].Description)
	assert.Equal(t, 0, got[0].QualityScore)

	// Menu diversity: two single-row, two split-row, one scattered.
	kinds := map[string]int{}
	for _, a := range got {
		kinds[a.Type]++
	}
	assert.Equal(t, 2, kinds[TypeSingleRow])
	assert.Equal(t, 2, kinds[TypeSplitRows])
	assert.Equal(t, 1, kinds[TypeScattered])

	// Quality ordering is total: 0 < 10 < scattered.
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].QualityScore, got[i].QualityScore)
	}
}

func TestSearchEveryArrangementHasExactlyNDistinctSeats(t *testing.T) {
	seats := grid(row("A", 1, 2, 4, 5), row("B", 2, 3, 4), row("C", 1, 5))

	for _, n := range []int{1, 2, 3, 4} {
		for _, a := range Search(seats, n) {
			require.Len(t, a.Seats, n, "arrangement %q", a.Description)
			seen := map[uint64]bool{}
			for _, s := range a.Seats {
				assert.False(t, seen[s.ID], "seat repeated in %q", a.Description)
				seen[s.ID] = true
			}
		}
	}
}

func TestSearchSingleRowRequiresConsecutiveNumbers(t *testing.T) {
	// Seat 3 is booked: 1,2,4,5 leaves no run of three.
	got := Search(row("A", 1, 2, 4, 5), 3)
	require.NotEmpty(t, got)
	for _, a := range got {
		assert.NotEqual(t, TypeSingleRow, a.Type)
	}
	// The scattered fallback still spans the gap.
	assert.Equal(t, TypeScattered, got[0].Type)
	assert.Equal(t, []string{"A1", "A2", "A4"}, labels(got[0]))
}

func TestSearchSplitHalvesAreConsecutiveAndAdjacent(t *testing.T) {
	// No row holds 4 together, so splits are the best on offer.
	seats := grid(row("A", 1, 2, 5), row("B", 3, 4, 7))

	got := Search(seats, 4)
	require.NotEmpty(t, got)

	require.Equal(t, TypeSplitRows, got[0].Type)
	// Most even split first: 2 in A, 2 in B.
	assert.Equal(t, "2 in Row A (1-2), 2 in Row B (3-4)", got[0].Description)
	assert.Equal(t, []string{"A1", "A2", "B3", "B4"}, labels(got[0]))
}

func TestSearchSplitOrderMostEvenFirst(t *testing.T) {
	seats := grid(row("A", 1, 2, 3), row("B", 1, 2, 3))

	got := Search(seats, 5)
	require.NotEmpty(t, got)
	// For n=5 the (2,3) split is discovered before (1,4); with three
	// seats per row only (2,3) and (3,2)-equivalent windows exist.
	require.Equal(t, TypeSplitRows, got[0].Type)
	assert.Equal(t, "2 in Row A (1-2), 3 in Row B (1-3)", got[0].Description)
}

func TestSearchScatteredProximityPrefersTighterWindows(t *testing.T) {
	// Far-apart rows make the row penalty visible: A→E costs 400.
	seats := grid(row("A", 1), row("B", 1), row("E", 1))

	got := Search(seats, 2)
	require.NotEmpty(t, got)
	var scattered *Arrangement
	for i := range got {
		if got[i].Type == TypeScattered {
			scattered = &got[i]
			break
		}
	}
	// Window (A1,B1): proximity 100. Window (B1,E1): proximity 300.
	// Only the tighter one makes the menu.
	require.NotNil(t, scattered)
	assert.Equal(t, []string{"A1", "B1"}, labels(*scattered))
	assert.Equal(t, 100, scattered.ProximityScore)
	assert.Equal(t, 30, scattered.QualityScore)
}

func TestSearchInsufficientCapacityIsEmptyNotError(t *testing.T) {
	assert.Empty(t, Search(row("A", 1, 2), 3))
	assert.Empty(t, Search(nil, 1))
	assert.Empty(t, Search(row("A", 1), 0))
}

func TestSearchTiesKeepDiscoveryOrder(t *testing.T) {
	seats := grid(row("A", 1, 2, 3), row("B", 1, 2, 3))

	got := Search(seats, 2)
	require.True(t, len(got) >= 2)
	// Both singles score 0; row A windows are discovered first.
	assert.Equal(t, "Row A, Seats 1-2", got[0].Description)
	assert.Equal(t, "Row A, Seats 2-3", got[1].Description)
}

func TestSearchCapsResultsAtFive(t *testing.T) {
	seats := grid(
		row("A", 1, 2, 3, 4, 5, 6, 7, 8),
		row("B", 1, 2, 3, 4, 5, 6, 7, 8),
		row("C", 1, 2, 3, 4, 5, 6, 7, 8),
	)
	assert.Len(t, Search(seats, 2), 5)
}

func TestSearchUnorderedInput(t *testing.T) {
	// The engine must sort rows and seat numbers itself.
	seats := []model.Seat{
		{ID: 4, ShowID: 1, RowLabel: "B", SeatNumber: 2, Status: model.SeatAvailable},
		{ID: 2, ShowID: 1, RowLabel: "A", SeatNumber: 3, Status: model.SeatAvailable},
		{ID: 1, ShowID: 1, RowLabel: "A", SeatNumber: 2, Status: model.SeatAvailable},
		{ID: 3, ShowID: 1, RowLabel: "B", SeatNumber: 1, Status: model.SeatAvailable},
	}
	got := Search(seats, 2)
	require.NotEmpty(t, got)
	assert.Equal(t, TypeSingleRow, got[0].Type)
	assert.Equal(t, "Row A, Seats 2-3", got[0].Description)
}

func TestRowDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"A", "A", 0},
		{"A", "B", 1},
		{"A", "E", 4},
		{"C", "A", 2},
		{"AA", "AB", 1},
		{"A", "AA", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rowDistance(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestProximityScore(t *testing.T) {
	a1 := model.Seat{RowLabel: "A", SeatNumber: 1}
	a4 := model.Seat{RowLabel: "A", SeatNumber: 4}
	c2 := model.Seat{RowLabel: "C", SeatNumber: 2}

	assert.Equal(t, 0, proximityScore([]model.Seat{a1}))
	assert.Equal(t, 3, proximityScore([]model.Seat{a1, a4}))
	// A4→C2: rows 2 apart (200) + seats 2 apart = 202.
	assert.Equal(t, 3+202, proximityScore([]model.Seat{a1, a4, c2}))
}
