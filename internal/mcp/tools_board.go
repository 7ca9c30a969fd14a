package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"infinicanvas/internal/domain"
	"infinicanvas/internal/layout"
)

// maxWait bounds how long generate_board blocks when wait is set.
const maxWait = 5 * time.Minute

func (s *Server) registerBoardTools() {
	// ── generate_board ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("generate_board",
		mcp.WithDescription("Generate a batch of images as a new board. The board is placed next to the selected or most recent board, wraps to a new row when the row gets too wide, and the camera moves to show it."),
		mcp.WithString("prompt",
			mcp.Description("Image prompt. Empty uses a random generation."),
		),
		mcp.WithString("aspectRatio",
			mcp.Description("Aspect ratio of each image"),
			mcp.Enum(layout.AspectRatios...),
			mcp.DefaultString(layout.DefaultAspectRatio),
		),
		mcp.WithString("quality",
			mcp.Description("Quality tier: standard or high (doubles the pixel size)"),
			mcp.Enum(layout.Qualities...),
			mcp.DefaultString(layout.DefaultQuality),
		),
		mcp.WithNumber("count",
			mcp.Description("Number of images in the batch"),
			mcp.Min(1),
			mcp.Max(float64(layout.DefaultMaxCount)),
			mcp.DefaultNumber(1),
		),
		mcp.WithBoolean("wait",
			mcp.Description("Block until every image has finished"),
			mcp.DefaultBool(false),
		),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handleGenerateBoard)

	// ── list_boards ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List boards on a page in creation order"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handleListBoards)

	// ── select_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_board",
		mcp.WithDescription("Select boards. The next board is placed next to the last selected one. Pass an empty list to clear the selection."),
		mcp.WithString("boardIds",
			mcp.Description("Comma-separated board IDs, oldest selection first"),
		),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handleSelectBoard)

	// ── preview_placement ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("preview_placement",
		mcp.WithDescription("Show where a board with these settings would be placed and how the camera would move, without creating anything"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("aspectRatio",
			mcp.Enum(layout.AspectRatios...),
			mcp.DefaultString(layout.DefaultAspectRatio),
		),
		mcp.WithString("quality",
			mcp.Enum(layout.Qualities...),
			mcp.DefaultString(layout.DefaultQuality),
		),
		mcp.WithNumber("count",
			mcp.Min(1),
			mcp.DefaultNumber(1),
		),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handlePreviewPlacement)

	// ── arrange_boards ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_boards",
		mcp.WithDescription("Re-flow all boards on the page into rows in creation order"),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handleArrangeBoards)

	// ── delete_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_board",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete boards and their images. Requires user approval."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("boardIds",
			mcp.Description("Comma-separated board IDs"),
			mcp.Required(),
		),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handleDeleteBoard)

	// ── set_row_max_width ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_row_max_width",
		mcp.WithDescription("Change the row width at which new boards wrap to a new row"),
		mcp.WithNumber("width",
			mcp.Description("Row width in page pixels"),
			mcp.Min(2000),
			mcp.Max(30000),
		),
		mcp.WithBoolean("reset",
			mcp.Description("Restore the configured default instead"),
		),
	), s.handleSetRowMaxWidth)
}

func settingsFromRequest(req mcp.CallToolRequest) domain.GenerationSettings {
	return domain.GenerationSettings{
		AspectRatio: req.GetString("aspectRatio", layout.DefaultAspectRatio),
		Quality:     req.GetString("quality", layout.DefaultQuality),
		Count:       req.GetInt("count", 1),
	}
}

func (s *Server) handleGenerateBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	batch, err := s.generation.Generate(sess, req.GetString("prompt", ""), settingsFromRequest(req))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	s.emitBoardsChanged(ctx, sess.PageID())

	type result struct {
		Board     domain.Board       `json:"board"`
		Assets    int                `json:"assets"`
		Placement layout.Placement   `json:"placement"`
		Camera    string             `json:"camera"`
		Status    domain.BoardStatus `json:"status"`
		URLs      []string           `json:"urls,omitempty"`
	}
	out := result{
		Board:     batch.Board,
		Assets:    len(batch.Assets),
		Placement: batch.Placement,
		Camera:    string(batch.Framing.Mode),
		Status:    batch.Status(),
	}

	if req.GetBool("wait", false) {
		waitCtx, cancel := context.WithTimeout(ctx, maxWait)
		defer cancel()
		select {
		case <-batch.Done():
		case <-waitCtx.Done():
			return nil, fmt.Errorf("wait for board %s: %w", batch.Board.ID, waitCtx.Err())
		}
		out.Status = batch.Status()
		out.URLs = batch.URLs()
	}
	return jsonResult(out)
}

func (s *Server) handleListBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	boards, err := sess.Boards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return jsonResult(summarizeBoards(boards, sess.Selection()))
}

func (s *Server) handleSelectBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	ids := splitIDs(req.GetString("boardIds", ""))
	boards, err := sess.Boards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	for _, id := range ids {
		if findBoard(boards, id) == nil {
			return nil, fmt.Errorf("board not found: %s", id)
		}
	}
	sess.Select(ids...)
	if len(ids) == 0 {
		return textResult("Selection cleared"), nil
	}
	return textResult(fmt.Sprintf("Selected %s", strings.Join(ids, ", "))), nil
}

func (s *Server) handlePreviewPlacement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	preview, err := s.generation.Preview(sess, settingsFromRequest(req))
	if err != nil {
		return nil, err
	}
	return jsonResult(preview)
}

func (s *Server) handleArrangeBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	boards, err := s.generation.Arrange(sess)
	if err != nil {
		return nil, fmt.Errorf("arrange: %w", err)
	}
	s.emitBoardsChanged(ctx, sess.PageID())
	return jsonResult(summarizeBoards(boards, sess.Selection()))
}

func (s *Server) handleDeleteBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	ids := splitIDs(req.GetString("boardIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("boardIds is required")
	}
	boards, err := sess.Boards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	var prompts []string
	for _, id := range ids {
		b := findBoard(boards, id)
		if b == nil {
			return nil, fmt.Errorf("board not found: %s", id)
		}
		prompts = append(prompts, fmt.Sprintf("%q", b.Prompt))
	}

	// Require approval (with metadata for frontend highlight)
	metadata, err := jsonString(map[string]any{"pageId": sess.PageID(), "boardIds": ids})
	if err != nil {
		return nil, err
	}
	err = s.approval.Request(ctx, "delete_board",
		fmt.Sprintf("Delete %d board(s): %s", len(ids), strings.Join(prompts, ", ")),
		metadata,
	)
	if errors.Is(err, ErrRejected) {
		return textResult("User rejected the deletion"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("approval: %w", err)
	}

	for _, id := range ids {
		if err := sess.DeleteBoard(id); err != nil {
			return nil, fmt.Errorf("delete board %s: %w", id, err)
		}
	}
	s.emitBoardsChanged(ctx, sess.PageID())
	return textResult(fmt.Sprintf("Deleted %d board(s)", len(ids))), nil
}

func (s *Server) handleSetRowMaxWidth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetBool("reset", false) {
		if err := s.layout.ResetRowMaxWidth(); err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Row width reset to %.0f", s.layout.Config().RowMaxWidth)), nil
	}
	width := req.GetFloat("width", 0)
	if width == 0 {
		return nil, fmt.Errorf("width or reset is required")
	}
	if err := s.layout.SetRowMaxWidth(width); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Row width set to %.0f", width)), nil
}
