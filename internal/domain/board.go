package domain

import (
	"time"

	"infinicanvas/internal/geom"
)

type BoardStatus string

const (
	BoardStatusGenerating BoardStatus = "generating"
	BoardStatusSuccess    BoardStatus = "success"
	BoardStatusFailed     BoardStatus = "failed"
)

// Board is the rectangular container for one generation batch.
// Seq is assigned at creation and grows monotonically per page; layout
// uses it to find the most recent board.
type Board struct {
	ID          string      `json:"id"`
	PageID      string      `json:"pageId"`
	Seq         int64       `json:"seq"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Prompt      string      `json:"prompt"`
	AspectRatio string      `json:"aspectRatio"`
	Quality     string      `json:"quality"`
	Count       int         `json:"count"`
	Status      BoardStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Bounds returns the board's page-space bounding box.
func (b Board) Bounds() geom.Box {
	return geom.FromRect(b.X, b.Y, b.Width, b.Height)
}

type BoardStore interface {
	CreateBoard(b *Board) error
	GetBoard(id string) (*Board, error)
	ListBoards(pageID string) ([]Board, error)
	NextSeq(pageID string) (int64, error)
	UpdateBoard(b *Board) error
	DeleteBoard(id string) error
	DeleteBoardsByPage(pageID string) error
}
