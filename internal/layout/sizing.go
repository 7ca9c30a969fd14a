package layout

import (
	"math"

	"infinicanvas/internal/geom"
)

// Slot is the origin of one asset relative to its board.
type Slot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoardLayout describes a board sized to hold count assets of one size.
type BoardLayout struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Asset   Size    `json:"asset"`
	Columns int     `json:"columns"`
	Rows    int     `json:"rows"`
	Slots   []Slot  `json:"slots"`
}

// SizeBoard lays out count assets in a grid of at most cfg.MaxColumns
// columns, separated by InnerGap and surrounded by BoardPadding.
func SizeBoard(asset Size, count int, cfg Config) BoardLayout {
	if count < 1 {
		count = 1
	}
	maxCols := cfg.MaxColumns
	if maxCols < 1 {
		maxCols = DefaultMaxColumns
	}
	cols := min(count, maxCols)
	rows := int(math.Ceil(float64(count) / float64(cols)))

	contentW := float64(cols)*asset.Width + float64(cols-1)*cfg.InnerGap
	contentH := float64(rows)*asset.Height + float64(rows-1)*cfg.InnerGap

	slots := make([]Slot, count)
	for i := range slots {
		r, c := i/cols, i%cols
		slots[i] = Slot{
			X: cfg.BoardPadding + float64(c)*(asset.Width+cfg.InnerGap),
			Y: cfg.BoardPadding + float64(r)*(asset.Height+cfg.InnerGap),
		}
	}

	return BoardLayout{
		Width:   contentW + cfg.BoardPadding*2,
		Height:  contentH + cfg.BoardPadding*2,
		Asset:   asset,
		Columns: cols,
		Rows:    rows,
		Slots:   slots,
	}
}

// BoardBox is the page-space box of a board of layout bl placed at p.
func BoardBox(p Placement, bl BoardLayout) geom.Box {
	return geom.FromRect(p.X, p.Y, bl.Width, bl.Height)
}
