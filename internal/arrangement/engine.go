// Package arrangement implements the seat-arrangement search engine.
// Given the free seats of a show and a party size it enumerates
// candidate seat groupings and ranks them by a lower-is-better quality
// score.  The engine is a pure function over its input snapshot: it
// never touches storage and is safe to run concurrently with bookings
// against slightly stale data.
package arrangement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// Arrangement kinds, in quality order.  A single run of seats in one
// row beats a split across two adjacent rows, which beats any
// scattered pick.
const (
	TypeSingleRow = "SINGLE_ROW"
	TypeSplitRows = "SPLIT_ROWS"
	TypeScattered = "SCATTERED"
)

// Base quality scores per kind.  Scattered candidates add a tenth of
// their proximity score on top so they rank among themselves.
const (
	scoreSingleRow = 0
	scoreSplitRows = 10
	scoreScattered = 20
)

// Result-set caps: the best two single-row and split-row candidates
// plus the single best scattered candidate go into the menu, which is
// then capped at five overall.  Taking a couple per tier keeps the
// menu diverse instead of drowning it in single-row hits.
const (
	maxSingleRow = 2
	maxSplitRows = 2
	maxScattered = 1
	maxResults   = 5
)

// Arrangement is one candidate grouping of exactly the requested
// number of seats.  Candidates are transient: they are produced by
// Search and consumed by the caller when choosing seats to book,
// never persisted.
type Arrangement struct {
	Type           string       `json:"type"`
	Seats          []model.Seat `json:"seats"`
	Description    string       `json:"description"`
	ProximityScore int          `json:"proximity_score"`
	QualityScore   int          `json:"quality_score"`
}

// Search returns the ranked arrangement menu for a party of partySize
// over the given free seats.  The input may arrive in any order; rows
// are sorted by label and seats by number before scanning.  When fewer
// seats are free than requested the result is empty: insufficient
// capacity is an expected outcome, not an error.
//
// Ties in quality score keep discovery order (row order, then window
// start), so results are reproducible for a fixed inventory.
func Search(available []model.Seat, partySize int) []Arrangement {
	if partySize < 1 || len(available) < partySize {
		return []Arrangement{}
	}

	rows, byRow := groupByRow(available)

	all := make([]Arrangement, 0, maxSingleRow+maxSplitRows+maxScattered)
	all = append(all, capped(singleRowCandidates(rows, byRow, partySize), maxSingleRow)...)
	all = append(all, capped(splitRowCandidates(rows, byRow, partySize), maxSplitRows)...)
	all = append(all, capped(scatteredCandidates(rows, byRow, partySize), maxScattered)...)

	// Stable: equal scores keep tier/discovery order.
	sort.SliceStable(all, func(i, j int) bool { return all[i].QualityScore < all[j].QualityScore })
	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all
}

// groupByRow buckets seats per row label and orders everything: row
// labels lexically, seats within a row by number.  Lexical row order
// is the physical order; rows are assumed contiguous with no gaps, so
// "adjacent rows" below means consecutive entries of the returned
// label slice.
func groupByRow(seats []model.Seat) ([]string, map[string][]model.Seat) {
	byRow := make(map[string][]model.Seat)
	for _, s := range seats {
		byRow[s.RowLabel] = append(byRow[s.RowLabel], s)
	}
	rows := make([]string, 0, len(byRow))
	for label := range byRow {
		rows = append(rows, label)
	}
	sort.Strings(rows)
	for _, label := range rows {
		rs := byRow[label]
		sort.Slice(rs, func(i, j int) bool { return rs[i].SeatNumber < rs[j].SeatNumber })
	}
	return rows, byRow
}

// singleRowCandidates slides a window of the full party size over each
// row.  A window qualifies only when every neighbouring pair differs
// by exactly one seat number, i.e. no booked seat sits inside the span.
func singleRowCandidates(rows []string, byRow map[string][]model.Seat, partySize int) []Arrangement {
	var out []Arrangement
	for _, label := range rows {
		for _, run := range consecutiveRuns(byRow[label], partySize) {
			out = append(out, Arrangement{
				Type:  TypeSingleRow,
				Seats: run,
				Description: fmt.Sprintf("Row %s, Seats %d-%d",
					label, run[0].SeatNumber, run[len(run)-1].SeatNumber),
				QualityScore: scoreSingleRow,
			})
		}
	}
	return out
}

// splitRowCandidates splits the party across two label-adjacent rows.
// Splits (k, n-k) are tried from the most even (k = n/2) down to one
// seat in the front row; for each split and row pair, every
// consecutive run of size k in the first row is combined with every
// run of size n-k in the second.
func splitRowCandidates(rows []string, byRow map[string][]model.Seat, partySize int) []Arrangement {
	var out []Arrangement
	for first := partySize / 2; first >= 1; first-- {
		second := partySize - first
		for i := 0; i+1 < len(rows); i++ {
			frontRuns := consecutiveRuns(byRow[rows[i]], first)
			backRuns := consecutiveRuns(byRow[rows[i+1]], second)
			for _, fr := range frontRuns {
				for _, br := range backRuns {
					seats := make([]model.Seat, 0, partySize)
					seats = append(seats, fr...)
					seats = append(seats, br...)
					out = append(out, Arrangement{
						Type:  TypeSplitRows,
						Seats: seats,
						Description: fmt.Sprintf("%d in Row %s (%d-%d), %d in Row %s (%d-%d)",
							first, rows[i], fr[0].SeatNumber, fr[len(fr)-1].SeatNumber,
							second, rows[i+1], br[0].SeatNumber, br[len(br)-1].SeatNumber),
						QualityScore: scoreSplitRows,
					})
				}
			}
		}
	}
	return out
}

// scatteredCandidates flattens the inventory row-major and slides a
// width-n window over it with no consecutiveness requirement.  Each
// window is scored by proximity and the windows are ranked by the
// resulting quality score.  Scanning only contiguous windows of the
// flattened list is a deliberate trade: linear in seat count instead
// of a combinatorial subset search, at the cost of missing some
// exotic-but-tighter picks.
func scatteredCandidates(rows []string, byRow map[string][]model.Seat, partySize int) []Arrangement {
	var flat []model.Seat
	for _, label := range rows {
		flat = append(flat, byRow[label]...)
	}
	var out []Arrangement
	for i := 0; i+partySize <= len(flat); i++ {
		window := flat[i : i+partySize]
		prox := proximityScore(window)
		labels := make([]string, len(window))
		for j, s := range window {
			labels[j] = s.Label()
		}
		seats := make([]model.Seat, partySize)
		copy(seats, window)
		out = append(out, Arrangement{
			Type:           TypeScattered,
			Seats:          seats,
			Description:    "Mixed arrangement: " + strings.Join(labels, ", "),
			ProximityScore: prox,
			QualityScore:   scoreScattered + prox/10,
		})
	}
	// Stable sort keeps discovery order among equal scores.
	sort.SliceStable(out, func(i, j int) bool { return out[i].QualityScore < out[j].QualityScore })
	return out
}

// consecutiveRuns returns every window of `size` seats with strictly
// consecutive seat numbers inside one row (seats must already be
// sorted by number).
func consecutiveRuns(rowSeats []model.Seat, size int) [][]model.Seat {
	var runs [][]model.Seat
	if size < 1 || len(rowSeats) < size {
		return runs
	}
	for i := 0; i+size <= len(rowSeats); i++ {
		ok := true
		for j := 1; j < size; j++ {
			if rowSeats[i+j].SeatNumber != rowSeats[i+j-1].SeatNumber+1 {
				ok = false
				break
			}
		}
		if ok {
			run := make([]model.Seat, size)
			copy(run, rowSeats[i:i+size])
			runs = append(runs, run)
		}
	}
	return runs
}

// proximityScore sums, over neighbouring pairs of the window, a
// penalty of 100 per unit of row distance plus one per seat number
// apart.  Weighting rows ×100 makes cross-row scattering hurt far more
// than gaps within a row.
func proximityScore(seats []model.Seat) int {
	if len(seats) < 2 {
		return 0
	}
	score := 0
	for i := 0; i+1 < len(seats); i++ {
		score += 100*rowDistance(seats[i].RowLabel, seats[i+1].RowLabel) +
			abs(int(seats[i].SeatNumber)-int(seats[i+1].SeatNumber))
	}
	return score
}

// rowDistance measures how far apart two row labels are: the absolute
// difference of the first differing character, or of the lengths when
// one label prefixes the other.  For the usual single-letter labels
// this is simply the alphabet distance.
func rowDistance(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return abs(int(a[i]) - int(b[i]))
		}
	}
	return abs(len(a) - len(b))
}

func capped(in []Arrangement, n int) []Arrangement {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
