package layout

import (
	"cmp"
	"slices"

	"infinicanvas/internal/domain"
)

// SortBySeq orders boards by sequence number, falling back to creation
// time for boards without one.
func SortBySeq(boards []domain.Board) {
	slices.SortStableFunc(boards, func(a, b domain.Board) int {
		if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
