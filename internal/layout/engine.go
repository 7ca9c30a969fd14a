package layout

import (
	"math"

	"infinicanvas/internal/domain"
	"infinicanvas/internal/geom"
)

// Snapshot is the point-in-time canvas state placement reads from.
type Snapshot struct {
	Boards    []domain.Board
	Selection []string // selected board IDs, oldest first
	Viewport  geom.Box // current viewport in page space
}

// Placement is the computed origin of a new board.
type Placement struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	AnchorID string   `json:"anchorId,omitempty"`
	Wrapped  bool     `json:"wrapped"`
	Row      []string `json:"row,omitempty"` // IDs of the boards classified into the anchor's row
}

// Engine places new boards next to existing ones and wraps rows that grow
// past RowMaxWidth. It holds no mutable state; the same snapshot and size
// always produce the same placement.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Place computes the origin for a board of size (newW, newH).
func (e *Engine) Place(snap Snapshot, newW, newH float64) Placement {
	anchor := SelectAnchor(snap.Boards, snap.Selection, e.cfg.AnchorRowFuzz)
	if anchor == nil {
		return Placement{
			X: snap.Viewport.CenterX() - newW/2,
			Y: snap.Viewport.CenterY() - newH/2,
		}
	}
	ab := anchor.Bounds()

	// Right of the anchor, vertically centred on it.
	p := Placement{
		X:        ab.MaxX + e.cfg.BoardGapX,
		Y:        ab.CenterY() - newH/2,
		AnchorID: anchor.ID,
	}

	row := RowAffinity(snap.Boards, p.Y, newH, e.cfg.RowOverlap)
	rowMinX, rowMaxX, rowMaxY := ab.MinX, ab.MaxX, ab.MaxY
	if len(row) > 0 {
		rowMinX, rowMaxX = math.Inf(1), math.Inf(-1)
		for _, b := range row {
			bb := b.Bounds()
			rowMinX = math.Min(rowMinX, bb.MinX)
			rowMaxX = math.Max(rowMaxX, bb.MaxX)
			rowMaxY = math.Max(rowMaxY, bb.MaxY)
			p.Row = append(p.Row, b.ID)
		}
	}
	span := rowMaxX - rowMinX

	if span+e.cfg.BoardGapX+newW > e.cfg.RowMaxWidth {
		p.X = rowMinX
		p.Y = rowMaxY + e.cfg.RowGapY
		p.Wrapped = true
	}
	return p
}

// Arrange re-flows boards in sequence order starting at (startX, startY).
// Boards are top-aligned within a row; a row wraps when adding the next
// board would push its span past RowMaxWidth. The first board of a row is
// always placed, however wide. It modifies positions in place and returns
// the slice.
func (e *Engine) Arrange(boards []domain.Board, startX, startY float64) []domain.Board {
	SortBySeq(boards)

	x, y := startX, startY
	rowHeight := 0.0
	rowCount := 0

	for i := range boards {
		w := boards[i].Width
		if rowCount > 0 && (x-startX)+w > e.cfg.RowMaxWidth {
			x = startX
			y += rowHeight + e.cfg.RowGapY
			rowHeight = 0
			rowCount = 0
		}
		boards[i].X = x
		boards[i].Y = y
		rowHeight = math.Max(rowHeight, boards[i].Height)
		rowCount++
		x += w + e.cfg.BoardGapX
	}

	return boards
}
