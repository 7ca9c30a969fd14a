package mcpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/service"
)

// Server is the MCP server for the canvas.
// It exposes tools, resources, and prompts so AI agents can generate and
// arrange boards and steer the camera.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	logger   *log.Logger

	// Services (injected from app layer)
	registry   *canvas.Registry
	pages      *service.PageService
	generation *service.GenerationService
	layout     *service.LayoutSettingsService
}

// Deps holds all dependencies passed from the app layer to the MCP server.
type Deps struct {
	Emitter         EventEmitter
	Registry        *canvas.Registry
	Pages           *service.PageService
	Generation      *service.GenerationService
	Layout          *service.LayoutSettingsService
	Logger          *log.Logger
	ApprovalDB      *sql.DB // When set, approvals go through the mcp_approvals table
	ApprovalTimeout time.Duration
}

// Version is reported to MCP clients.
const Version = "1.0.0"

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	approval := NewApprovalQueue(deps.Emitter, deps.ApprovalTimeout)
	if deps.ApprovalDB != nil {
		approval.SetDB(deps.ApprovalDB)
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		emitter:    deps.Emitter,
		approval:   approval,
		logger:     logger.WithPrefix("mcp"),
		registry:   deps.Registry,
		pages:      deps.Pages,
		generation: deps.Generation,
		layout:     deps.Layout,
	}

	s.mcp = server.NewMCPServer(
		"infinicanvas-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	s.registerNavigationTools()
	s.registerBoardTools()
	s.registerCameraTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// HTTPHandler serves MCP over streamable HTTP.
func (s *Server) HTTPHandler(endpoint string) http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(endpoint))
}

// Approvals exposes the queue so the HTTP API can resolve requests.
func (s *Server) Approvals() *ApprovalQueue {
	return s.approval
}

// ── Helpers ────────────────────────────────────────────────

// emitBoardsChanged notifies clients that boards changed on a page.
func (s *Server) emitBoardsChanged(ctx context.Context, pageID string) {
	s.emitter.Emit(ctx, "mcp:boards-changed", map[string]string{"pageId": pageID})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// session returns the canvas for the pageId argument, or the active page.
func (s *Server) session(req mcp.CallToolRequest) (*canvas.Session, error) {
	sess, err := s.registry.Resolve(req.GetString("pageId", ""))
	if err != nil {
		return nil, fmt.Errorf("%w (create a page or use set_active_page first)", err)
	}
	return sess, nil
}
