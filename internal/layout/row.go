package layout

import (
	"cmp"
	"math"
	"slices"

	"infinicanvas/internal/domain"
)

// RowAffinity returns the boards that belong to the row running through the
// band [targetY, targetY+targetHeight), ordered left to right.
//
// A board's score is its vertical overlap with the band divided by the
// smaller of the two heights; it is in the row when score > threshold.
// Boards whose normalising height is zero are skipped. An empty result means
// the band starts a new row.
func RowAffinity(boards []domain.Board, targetY, targetHeight, threshold float64) []domain.Board {
	var row []domain.Board
	for _, b := range boards {
		bounds := b.Bounds()
		minHeight := math.Min(bounds.Height(), targetHeight)
		if minHeight <= 0 {
			continue
		}
		score := bounds.VerticalOverlap(targetY, targetY+targetHeight) / minHeight
		if score > threshold {
			row = append(row, b)
		}
	}
	slices.SortStableFunc(row, func(a, b domain.Board) int {
		return cmp.Compare(a.X, b.X)
	})
	return row
}
