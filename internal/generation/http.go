package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPGenerator posts requests as JSON to a generation endpoint and expects
// a Response back.
type HTTPGenerator struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

func NewHTTPGenerator(endpoint string, headers map[string]string, timeout time.Duration) *HTTPGenerator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPGenerator{
		endpoint: endpoint,
		headers:  headers,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	if g.endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrBackend)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range g.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %w", ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: http %d: %s", ErrBackend, resp.StatusCode, string(msg))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: parse json: %w", ErrBackend, err)
	}
	if out.Status == "" {
		out.Status = StatusSuccess
	}
	if out.Status == StatusFailed {
		return &out, fmt.Errorf("%w: %s", ErrBackend, out.Error)
	}
	if out.URL == "" {
		return nil, fmt.Errorf("%w: response has no url", ErrBackend)
	}
	return &out, nil
}
