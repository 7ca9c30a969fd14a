package generation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// MockGenerator simulates a remote backend: it sleeps for a random delay
// and returns a placeholder image URL derived from the seed.
type MockGenerator struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	BaseURL  string
}

const (
	DefaultMockMinDelay = 2 * time.Second
	DefaultMockMaxDelay = 5 * time.Second
	DefaultMockBaseURL  = "https://picsum.photos"
)

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		MinDelay: DefaultMockMinDelay,
		MaxDelay: DefaultMockMaxDelay,
		BaseURL:  DefaultMockBaseURL,
	}
}

func (g *MockGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	delay := g.MinDelay
	if span := g.MaxDelay - g.MinDelay; span > 0 {
		delay += time.Duration(rand.Int64N(int64(span)))
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrBackend, ctx.Err())
		}
	}

	seed := req.Seed
	if seed == 0 {
		seed = rand.Int64N(1000)
	}

	return &Response{
		ID:     uuid.New().String(),
		URL:    fmt.Sprintf("%s/seed/%d/%d/%d", g.BaseURL, seed, req.Width, req.Height),
		Status: StatusSuccess,
		Metadata: map[string]any{
			"provider": "mock",
			"duration": delay.Milliseconds(),
		},
	}, nil
}
