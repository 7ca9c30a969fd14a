package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("explore_variations",
		mcp.WithPromptDescription("Generate a series of boards exploring variations of one idea"),
		mcp.WithArgument("idea",
			mcp.ArgumentDescription("The subject to explore"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("aspectRatio",
			mcp.ArgumentDescription("Aspect ratio for every board (e.g. 16:9)"),
		),
	), s.handleExploreVariationsPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tidy_canvas",
		mcp.WithPromptDescription("Review the boards on the active page and tidy the layout"),
	), s.handleTidyCanvasPrompt)
}

func (s *Server) handleExploreVariationsPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	idea := req.Params.Arguments["idea"]
	ratio := req.Params.Arguments["aspectRatio"]
	if ratio == "" {
		ratio = "1:1"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Explore variations of %s", idea),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Explore visual variations of "%s" on the active page. Follow these steps:

1. Use list_boards to see what is already on the canvas
2. Call generate_board with a base prompt for "%s", aspectRatio %s and count 4
3. Call generate_board three more times, each with a different style, mood, or composition
4. When a board stands out, use select_board so the next variation is placed next to it

Boards are placed and framed automatically. Do not try to position them yourself.`, idea, idea, ratio),
				},
			},
		},
	}, nil
}

func (s *Server) handleTidyCanvasPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Tidy the canvas",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: `Tidy the active canvas page. Follow these steps:

1. Use list_boards to review every board and its status
2. Propose deleting failed boards, and call delete_board only for the ones the user agrees to
3. Call arrange_boards to re-flow the remaining boards into rows
4. Use frame_board on the most recent board so the user can see where things ended up`,
				},
			},
		},
	}, nil
}
