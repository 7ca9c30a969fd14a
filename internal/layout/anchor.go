package layout

import (
	"cmp"
	"math"
	"slices"

	"infinicanvas/internal/domain"
)

// SelectAnchor picks the board the next placement is computed from.
//
// Order of preference: the most recently selected board, then the board with
// the highest sequence number, then the visually last board (see
// spatialLast). It returns nil when there are no boards.
func SelectAnchor(boards []domain.Board, selection []string, fuzz float64) *domain.Board {
	if len(boards) == 0 {
		return nil
	}

	for i := len(selection) - 1; i >= 0; i-- {
		for j := range boards {
			if boards[j].ID == selection[i] {
				return &boards[j]
			}
		}
	}

	if b := latestBySeq(boards); b != nil {
		return b
	}
	return spatialLast(boards, fuzz)
}

// latestBySeq returns the board with the highest positive Seq, or nil if no
// board carries a sequence number.
func latestBySeq(boards []domain.Board) *domain.Board {
	var best *domain.Board
	for i := range boards {
		if boards[i].Seq <= 0 {
			continue
		}
		if best == nil || boards[i].Seq > best.Seq {
			best = &boards[i]
		}
	}
	return best
}

// spatialLast approximates "last created" from position alone. Boards are
// sorted by top edge and grouped into rows: a board joins the current row
// when its top is within fuzz of the row's first board. Rows are read top
// to bottom, each row left to right, and the final board wins.
//
// This is a heuristic. Two boards placed side by side in the wrong order
// (or moved by the user) defeat it, which is why sequence numbers come
// first.
func spatialLast(boards []domain.Board, fuzz float64) *domain.Board {
	order := make([]int, len(boards))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(boards[a].Y, boards[b].Y)
	})

	var lastRow []int
	rowTop := math.Inf(-1)
	for _, idx := range order {
		if len(lastRow) == 0 || math.Abs(boards[idx].Y-rowTop) >= fuzz {
			lastRow = lastRow[:0]
			rowTop = boards[idx].Y
		}
		lastRow = append(lastRow, idx)
	}

	last := lastRow[0]
	for _, idx := range lastRow[1:] {
		if boards[idx].X >= boards[last].X {
			last = idx
		}
	}
	return &boards[last]
}
