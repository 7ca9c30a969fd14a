package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/config"
	"infinicanvas/internal/domain"
	"infinicanvas/internal/generation"
	"infinicanvas/internal/httpapi"
	mcpserver "infinicanvas/internal/mcp"
	"infinicanvas/internal/secret"
	"infinicanvas/internal/service"
	"infinicanvas/internal/storage"
)

// App owns storage, services and the servers built on them.
type App struct {
	ctx    context.Context
	cfg    config.Config
	logger *log.Logger

	db       *storage.DB
	hub      *httpapi.Hub
	registry *canvas.Registry

	pages      *service.PageService
	layout     *service.LayoutSettingsService
	screen     *service.ScreenSettingsService
	generation *service.GenerationService
	sweeper    *service.Sweeper
	mcp        *mcpserver.Server
}

// New opens the database and wires every service. ctx bounds background
// work such as backend calls and camera moves.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.New(cfg.Storage.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	gen, err := newGenerator(cfg.Generation)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &App{ctx: ctx, cfg: cfg, logger: logger, db: db}
	a.hub = httpapi.NewHub(logger)

	// Storage stores
	pagesStore := storage.NewPageStore(db)
	boardsStore := storage.NewBoardStore(db)
	assetsStore := storage.NewAssetStore(db)
	chatStore := storage.NewChatStore(db)
	stores := canvas.Stores{Pages: pagesStore, Boards: boardsStore, Assets: assetsStore}

	// Services
	a.screen = service.NewScreenSettingsService(storage.NewSettingsStore(db))
	a.registry = canvas.NewRegistry(ctx, stores, a.hub, a.sessionOptions(cfg))
	a.layout = service.NewLayoutSettingsService(storage.NewSettingsStore(db), cfg.Layout)
	a.generation = service.NewGenerationService(ctx, a.layout, cfg.Viewport.Config, gen, chatStore, a.hub, logger)
	a.pages = service.NewPageService(pagesStore, boardsStore, assetsStore, chatStore, a.registry, a.hub)
	a.sweeper = service.NewSweeper(assetsStore, a.generation, a.hub, logger, cfg.Sweeper.StaleAfter.Duration)

	a.mcp = mcpserver.New(mcpserver.Deps{
		Emitter:         a.hub,
		Registry:        a.registry,
		Pages:           a.pages,
		Generation:      a.generation,
		Layout:          a.layout,
		Logger:          logger,
		ApprovalDB:      db.Conn(), // approvals work across the serve and mcp processes
		ApprovalTimeout: cfg.MCP.ApprovalTimeout.Duration,
	})
	return a, nil
}

func newGenerator(cfg config.GenerationConfig) (generation.Generator, error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		headers := make(map[string]string, len(cfg.Headers)+1)
		maps.Copy(headers, cfg.Headers)
		if cfg.APIKey != "" {
			key, err := secret.Resolve(cfg.APIKey)
			if err != nil {
				return nil, fmt.Errorf("generation api key: %w", err)
			}
			headers["Authorization"] = "Bearer " + key
		}
		return generation.NewHTTPGenerator(cfg.Endpoint, headers, cfg.Timeout.Duration), nil
	case config.BackendMock, "":
		g := generation.NewMockGenerator()
		g.MinDelay, g.MaxDelay = cfg.MinDelay.Duration, cfg.MaxDelay.Duration
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.Backend)
	}
}

// Handler returns the HTTP API with the MCP endpoint mounted.
func (a *App) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.Deps{
		Registry:   a.registry,
		Pages:      a.pages,
		Generation: a.generation,
		Layout:     a.layout,
		Screen:     a.screen,
		Approvals:  a.mcp.Approvals(),
		Hub:        a.hub,
		MCP:        a.mcp.HTTPHandler(httpapi.MCPPath),
		Logger:     a.logger,
	})
}

// ServeHTTP runs the HTTP API until ctx is done, along with the stale asset
// sweeper and the watcher for changes made by a standalone MCP process.
func (a *App) ServeHTTP(ctx context.Context) error {
	if err := a.sweeper.Start(a.cfg.Sweeper.Schedule); err != nil {
		return err
	}
	defer a.sweeper.Stop()

	watcher := newPageWatcher(ctx, a)
	watcher.Start()
	defer watcher.Stop()

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr, "mcp", httpapi.MCPPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.generation.Wait(shutdownCtx)
	return nil
}

// ApplyConfig swaps in a reloaded configuration. Storage, address and
// backend changes need a restart.
func (a *App) ApplyConfig(cfg config.Config) {
	a.layout.SetBase(cfg.Layout)
	a.generation.SetFramingConfig(cfg.Viewport.Config)
	a.registry.Configure(a.sessionOptions(cfg))
}

// sessionOptions overlays the last screen a client reported on the config.
func (a *App) sessionOptions(cfg config.Config) canvas.Options {
	opts := cfg.SessionOptions()
	if sc, ok := a.screen.Load(); ok {
		opts.ScreenWidth, opts.ScreenHeight = sc.Width, sc.Height
		opts.PanelOpen = sc.PanelOpen
	}
	return opts
}

// WatchConfig reloads path on change until ctx is done.
func (a *App) WatchConfig(ctx context.Context, path string) error {
	return config.Watch(ctx, path, a.logger, a.ApplyConfig)
}

// Close releases sessions and the database.
func (a *App) Close() {
	a.registry.Close()
	if a.db != nil {
		a.db.Close()
	}
}

// Preview reports where a board for settings would land on a page (the
// active one when pageID is empty) and how the camera would move.
func (a *App) Preview(pageID string, settings domain.GenerationSettings) (*service.Preview, error) {
	sess, err := a.registry.Resolve(pageID)
	if err != nil {
		return nil, err
	}
	return a.generation.Preview(sess, settings)
}

// Pages lists every page, oldest first.
func (a *App) Pages() ([]domain.Page, error) {
	return a.pages.ListPages()
}
