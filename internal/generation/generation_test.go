package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerator_URLFromSeed(t *testing.T) {
	g := &MockGenerator{BaseURL: DefaultMockBaseURL}

	resp, err := g.Generate(context.Background(), Request{Prompt: "fox", Width: 2048, Height: 1152, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "https://picsum.photos/seed/42/2048/1152", resp.URL)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "mock", resp.Metadata["provider"])
}

func TestMockGenerator_DelayWithinRange(t *testing.T) {
	g := &MockGenerator{MinDelay: 10 * time.Millisecond, MaxDelay: 30 * time.Millisecond, BaseURL: "http://x"}

	start := time.Now()
	resp, err := g.Generate(context.Background(), Request{Width: 1, Height: 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.LessOrEqual(t, resp.Metadata["duration"].(int64), int64(30))
}

func TestMockGenerator_Cancelled(t *testing.T) {
	g := &MockGenerator{MinDelay: time.Hour, MaxDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, Request{})
	assert.True(t, errors.Is(err, ErrBackend))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestHTTPGenerator_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a fox", req.Prompt)
		assert.Equal(t, 2560, req.Width)

		json.NewEncoder(w).Encode(Response{ID: "gen-1", URL: "https://cdn/1.png"})
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, map[string]string{"Authorization": "Bearer k"}, time.Second)
	resp, err := g.Generate(context.Background(), Request{Prompt: "a fox", Width: 2560, Height: 1440})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", resp.ID)
	assert.Equal(t, StatusSuccess, resp.Status)
}

func TestHTTPGenerator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"failed status", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(Response{Status: StatusFailed, Error: "nsfw"})
		}},
		{"no url", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(Response{ID: "x"})
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTPGenerator(srv.URL, nil, time.Second).Generate(context.Background(), Request{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBackend))
		})
	}
}

func TestHTTPGenerator_MissingEndpoint(t *testing.T) {
	_, err := NewHTTPGenerator("", nil, 0).Generate(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrBackend))
}
