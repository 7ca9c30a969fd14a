package generation

import (
	"context"
	"errors"
)

// ErrBackend wraps every failure reported by a generation backend.
var ErrBackend = errors.New("generation backend")

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Request asks for one image.
type Request struct {
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Seed           int64  `json:"seed,omitempty"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
}

// Response is the backend's answer for one Request.
type Response struct {
	ID       string         `json:"id"`
	URL      string         `json:"url"`
	Status   Status         `json:"status"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Generator produces images. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
