package canvas

import (
	"context"

	"infinicanvas/internal/domain"
	"infinicanvas/internal/geom"
	"infinicanvas/internal/viewport"
)

// Viewport is the visible region in page and screen space.
type Viewport struct {
	Page   geom.Box `json:"page"`
	Screen geom.Box `json:"screen"`
}

// Host is everything layout and framing need from a canvas. Readers see a
// point-in-time state; the only camera write is SetCamera.
type Host interface {
	PageID() string
	Boards() ([]domain.Board, error)
	Selection() []string
	Viewport() Viewport
	Camera() viewport.Camera
	MinZoom() float64
	SafeArea() viewport.SafeArea

	CreateBoard(b *domain.Board) error
	UpdateBoard(b *domain.Board) error
	DeleteBoard(id string) error
	CreateAsset(a *domain.Asset) error
	UpdateAsset(a *domain.Asset) error

	// SetCamera applies a proposed transition. It returns once the move is
	// scheduled, not when it finishes.
	SetCamera(tr viewport.Transition) error
	Select(ids ...string)
}

// EventEmitter notifies UI clients about canvas changes.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Event names emitted by a Session.
const (
	EventBoardCreated = "canvas:board-created"
	EventBoardUpdated = "canvas:board-updated"
	EventBoardDeleted = "canvas:board-deleted"
	EventAssetCreated = "canvas:asset-created"
	EventAssetUpdated = "canvas:asset-updated"
	EventCamera       = "canvas:camera"
	EventSelection    = "canvas:selection"
)

// CameraEvent is the payload of EventCamera.
type CameraEvent struct {
	PageID     string          `json:"pageId"`
	Camera     viewport.Camera `json:"camera"`
	DurationMS int64           `json:"durationMs"`
	Easing     viewport.Easing `json:"easing"`
}
