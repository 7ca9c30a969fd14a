package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"infinicanvas/internal/domain"
)

// splitIDs parses a comma-separated ID list, dropping blanks.
func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// boardSummary is the compact board view returned to agents.
type boardSummary struct {
	ID          string             `json:"id"`
	Seq         int64              `json:"seq"`
	X           float64            `json:"x"`
	Y           float64            `json:"y"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Prompt      string             `json:"prompt"`
	AspectRatio string             `json:"aspectRatio"`
	Count       int                `json:"count"`
	Status      domain.BoardStatus `json:"status"`
	Selected    bool               `json:"selected,omitempty"`
}

func summarizeBoards(boards []domain.Board, selection []string) []boardSummary {
	selected := make(map[string]bool, len(selection))
	for _, id := range selection {
		selected[id] = true
	}
	out := make([]boardSummary, len(boards))
	for i, b := range boards {
		out[i] = boardSummary{
			ID:          b.ID,
			Seq:         b.Seq,
			X:           b.X,
			Y:           b.Y,
			Width:       b.Width,
			Height:      b.Height,
			Prompt:      b.Prompt,
			AspectRatio: b.AspectRatio,
			Count:       b.Count,
			Status:      b.Status,
			Selected:    selected[b.ID],
		}
	}
	return out
}

func findBoard(boards []domain.Board, id string) *domain.Board {
	for i := range boards {
		if boards[i].ID == id {
			return &boards[i]
		}
	}
	return nil
}

func jsonString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}
