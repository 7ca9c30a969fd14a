package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/geom"
	"infinicanvas/internal/viewport"
)

func (s *Server) registerCameraTools() {
	// ── get_camera ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_camera",
		mcp.WithDescription("Get the camera, the visible page area, and the safe area not covered by UI"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handleGetCamera)

	// ── set_viewport ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_viewport",
		mcp.WithDescription("Report the client's screen size and panel state, and optionally move the camera"),
		mcp.WithNumber("width",
			mcp.Description("Screen width in pixels"),
		),
		mcp.WithNumber("height",
			mcp.Description("Screen height in pixels"),
		),
		mcp.WithBoolean("panelOpen",
			mcp.Description("Whether the right-hand panel is open"),
		),
		mcp.WithNumber("x",
			mcp.Description("Camera X: page coordinate at the screen's left edge"),
		),
		mcp.WithNumber("y",
			mcp.Description("Camera Y: page coordinate at the screen's top edge"),
		),
		mcp.WithNumber("zoom",
			mcp.Description("Camera zoom (screen pixels per page unit)"),
		),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handleSetViewport)

	// ── frame_board ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("frame_board",
		mcp.WithDescription("Move the camera so a board is fully visible in the safe area. Does nothing if it already is."),
		mcp.WithString("boardId",
			mcp.Description("ID of the board to frame"),
			mcp.Required(),
		),
		mcp.WithString("pageId",
			mcp.Description("Page ID (defaults to the active page)"),
		),
	), s.handleFrameBoard)
}

type cameraInfo struct {
	PageID   string            `json:"pageId"`
	Camera   viewport.Camera   `json:"camera"`
	Visible  geom.Box          `json:"visible"`
	Safe     geom.Box          `json:"safe"`
	SafeArea viewport.SafeArea `json:"safeArea"`
}

func describeCamera(sess *canvas.Session) cameraInfo {
	vp := sess.Viewport()
	st := viewport.State{
		Camera:   sess.Camera(),
		Page:     vp.Page,
		Screen:   vp.Screen,
		SafeArea: sess.SafeArea(),
		MinZoom:  sess.MinZoom(),
	}
	return cameraInfo{
		PageID:   sess.PageID(),
		Camera:   st.Camera,
		Visible:  vp.Page,
		Safe:     viewport.SafePageBounds(st),
		SafeArea: st.SafeArea,
	}
}

func (s *Server) handleGetCamera(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	return jsonResult(describeCamera(sess))
}

func (s *Server) handleSetViewport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()

	if _, ok := args["width"]; ok {
		vp := sess.Viewport().Screen
		w := req.GetFloat("width", vp.Width())
		h := req.GetFloat("height", vp.Height())
		if err := sess.SetScreen(w, h); err != nil {
			return nil, err
		}
	}
	if _, ok := args["panelOpen"]; ok {
		sess.SetPanelOpen(req.GetBool("panelOpen", false))
	}

	_, hasX := args["x"]
	_, hasY := args["y"]
	_, hasZoom := args["zoom"]
	if hasX || hasY || hasZoom {
		cur := sess.Camera()
		cam := viewport.Camera{
			X:    req.GetFloat("x", cur.X),
			Y:    req.GetFloat("y", cur.Y),
			Zoom: req.GetFloat("zoom", cur.Zoom),
		}
		if err := sess.Jump(cam); err != nil {
			return nil, err
		}
	}
	return jsonResult(describeCamera(sess))
}

func (s *Server) handleFrameBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	boardID := req.GetString("boardId", "")
	if boardID == "" {
		return nil, fmt.Errorf("boardId is required")
	}
	d, err := s.generation.FrameBoard(sess, boardID)
	if err != nil {
		return nil, err
	}
	return jsonResult(d)
}
