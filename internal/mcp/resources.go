package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── canvas://pages ─────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"canvas://pages",
		"All Pages",
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── canvas://page/{pageId}/boards ──────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"canvas://page/{pageId}/boards",
			"Boards on a Page",
		),
		s.handlePageBoardsResource,
	)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pages, err := s.pages.ListPages()
	if err != nil {
		return nil, err
	}

	type pageSummary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	summaries := make([]pageSummary, 0, len(pages))
	for _, p := range pages {
		summaries = append(summaries, pageSummary{ID: p.ID, Name: p.Name})
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "canvas://pages",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// pageIDFromURI extracts the page ID from canvas://page/{pageId}/boards.
func pageIDFromURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "canvas://page/")
	if !ok {
		return "", fmt.Errorf("invalid URI: %s", uri)
	}
	pageID, ok := strings.CutSuffix(rest, "/boards")
	if !ok || pageID == "" || strings.Contains(pageID, "/") {
		return "", fmt.Errorf("invalid URI: %s", uri)
	}
	return pageID, nil
}

func (s *Server) handlePageBoardsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID, err := pageIDFromURI(uri)
	if err != nil {
		return nil, err
	}
	state, err := s.pages.GetPageState(pageID)
	if err != nil {
		return nil, err
	}

	data, _ := json.MarshalIndent(state.Boards, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
