package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"infinicanvas/internal/canvas"
	mcpserver "infinicanvas/internal/mcp"
	"infinicanvas/internal/service"
)

// Deps holds everything the HTTP API serves.
type Deps struct {
	Registry   *canvas.Registry
	Pages      *service.PageService
	Generation *service.GenerationService
	Layout     *service.LayoutSettingsService
	Screen     *service.ScreenSettingsService // optional; remembers the client screen
	Approvals  *mcpserver.ApprovalQueue
	Hub        *Hub
	MCP        http.Handler // optional streamable HTTP MCP endpoint
	Logger     *log.Logger
}

// MCPPath is where the MCP handler is mounted when present.
const MCPPath = "/mcp"

type api struct {
	Deps
	logger *log.Logger
}

// NewRouter builds the HTTP handler for the JSON API, the event stream and
// the optional MCP endpoint.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	a := &api{Deps: deps, logger: logger.WithPrefix("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// The event stream is long-lived; keep it outside the timeout group.
		if deps.Hub != nil {
			r.Get("/events", deps.Hub.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Route("/pages", func(r chi.Router) {
				r.Get("/", a.listPages)
				r.Post("/", a.createPage)

				r.Route("/{pageID}", func(r chi.Router) {
					r.Patch("/", a.renamePage)
					r.Delete("/", a.deletePage)
					r.Post("/activate", a.activatePage)
					r.Get("/state", a.pageState)
					r.Get("/messages", a.listMessages)
					r.Post("/generate", a.generate)
					r.Post("/preview", a.preview)
					r.Post("/arrange", a.arrange)
					r.Put("/selection", a.setSelection)
					r.Get("/viewport", a.getViewport)
					r.Put("/viewport", a.setViewport)
					r.Post("/boards/{boardID}/frame", a.frameBoard)
					r.Delete("/boards/{boardID}", a.deleteBoard)
				})
			})

			r.Route("/settings/row-max-width", func(r chi.Router) {
				r.Get("/", a.getRowMaxWidth)
				r.Put("/", a.setRowMaxWidth)
				r.Delete("/", a.resetRowMaxWidth)
			})

			r.Route("/approvals", func(r chi.Router) {
				r.Get("/", a.listApprovals)
				r.Post("/{approvalID}/approve", a.approve)
				r.Post("/{approvalID}/reject", a.reject)
			})
		})
	})

	if deps.MCP != nil {
		r.Handle(MCPPath, deps.MCP)
	}
	return r
}

func (a *api) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			a.logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start),
				"id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// ── Helpers ────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
