package domain

import "time"

type AssetStatus string

const (
	AssetStatusPending AssetStatus = "pending"
	AssetStatusSuccess AssetStatus = "success"
	AssetStatusFailed  AssetStatus = "failed"
)

// Asset is one generated item inside a board. X and Y are relative to the
// parent board's origin. A pending asset is rendered as a placeholder.
type Asset struct {
	ID           string      `json:"id"`
	BoardID      string      `json:"boardId"`
	Index        int         `json:"index"`
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	Seed         int64       `json:"seed"`
	Status       AssetStatus `json:"status"`
	URL          string      `json:"url"`
	Error        string      `json:"error,omitempty"`
	GenerationID string      `json:"generationId,omitempty"`
	MetadataJSON string      `json:"metadataJson"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type AssetStore interface {
	CreateAsset(a *Asset) error
	GetAsset(id string) (*Asset, error)
	ListAssets(boardID string) ([]Asset, error)
	ListAssetsByPage(pageID string) ([]Asset, error)
	UpdateAsset(a *Asset) error
	DeleteAssetsByBoard(boardID string) error
}
