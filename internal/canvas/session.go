package canvas

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"infinicanvas/internal/domain"
	"infinicanvas/internal/geom"
	"infinicanvas/internal/viewport"
)

// Stores groups the persistence a Session writes through to.
type Stores struct {
	Pages  domain.PageStore
	Boards domain.BoardStore
	Assets domain.AssetStore
}

// Options are the per-session UI parameters.
type Options struct {
	ScreenWidth  float64
	ScreenHeight float64
	MinZoom      float64
	SafeArea     viewport.SafeAreaConfig
	PanelOpen    bool
	// Animate drives camera moves frame by frame on the server. When false
	// the camera jumps to the target and clients animate on their own.
	Animate bool
}

func DefaultOptions() Options {
	return Options{
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		MinZoom:      0.1,
		SafeArea:     viewport.DefaultSafeAreaConfig(),
	}
}

// Session is the storage-backed Host for one page. Board and asset writes
// go straight to the stores; selection and screen geometry live in memory.
type Session struct {
	ctx     context.Context
	page    string
	stores  Stores
	emitter EventEmitter
	anim    *viewport.Animator

	mu        sync.Mutex
	opts      Options
	camera    viewport.Camera
	persisted viewport.Camera // last camera written to or read from the page
	selection []string
	panelOpen bool
}

var _ Host = (*Session)(nil)

// NewSession opens a session on an existing page, restoring its camera.
func NewSession(ctx context.Context, page *domain.Page, stores Stores, emitter EventEmitter, opts Options) *Session {
	zoom := page.CameraZoom
	if zoom <= 0 {
		zoom = 1
	}
	s := &Session{
		ctx:     ctx,
		page:    page.ID,
		stores:  stores,
		emitter: emitter,
		opts:    opts,
		camera:  viewport.Camera{X: page.CameraX, Y: page.CameraY, Zoom: zoom},

		panelOpen: opts.PanelOpen,
	}
	s.persisted = s.camera
	s.anim = viewport.NewAnimator(s)
	return s
}

func (s *Session) PageID() string { return s.page }

func (s *Session) Boards() ([]domain.Board, error) {
	return s.stores.Boards.ListBoards(s.page)
}

func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selection)
}

func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Viewport{
		Page:   s.camera.PageBounds(s.opts.ScreenWidth, s.opts.ScreenHeight),
		Screen: geom.Box{MaxX: s.opts.ScreenWidth, MaxY: s.opts.ScreenHeight},
	}
}

func (s *Session) Camera() viewport.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *Session) MinZoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.MinZoom
}

func (s *Session) SafeArea() viewport.SafeArea {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.SafeArea.ForPanel(s.panelOpen)
}

// ── Writes ─────────────────────────────────────────────────
//
// Events carry copies: subscribers may marshal them after the caller has
// moved on and changed the original.

func (s *Session) CreateBoard(b *domain.Board) error {
	b.PageID = s.page
	if err := s.stores.Boards.CreateBoard(b); err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	s.emitter.Emit(s.ctx, EventBoardCreated, *b)
	return nil
}

func (s *Session) UpdateBoard(b *domain.Board) error {
	if err := s.stores.Boards.UpdateBoard(b); err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	s.emitter.Emit(s.ctx, EventBoardUpdated, *b)
	return nil
}

func (s *Session) DeleteBoard(id string) error {
	if err := s.stores.Assets.DeleteAssetsByBoard(id); err != nil {
		return fmt.Errorf("delete board assets: %w", err)
	}
	if err := s.stores.Boards.DeleteBoard(id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}

	s.mu.Lock()
	s.selection = slices.DeleteFunc(s.selection, func(sel string) bool { return sel == id })
	s.mu.Unlock()

	s.emitter.Emit(s.ctx, EventBoardDeleted, map[string]string{"pageId": s.page, "boardId": id})
	return nil
}

func (s *Session) CreateAsset(a *domain.Asset) error {
	if err := s.stores.Assets.CreateAsset(a); err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	s.emitter.Emit(s.ctx, EventAssetCreated, *a)
	return nil
}

func (s *Session) UpdateAsset(a *domain.Asset) error {
	if err := s.stores.Assets.UpdateAsset(a); err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	s.emitter.Emit(s.ctx, EventAssetUpdated, *a)
	return nil
}

// ── Camera ─────────────────────────────────────────────────

// SetCamera persists the target camera and starts the move. A move already
// in flight is superseded and the new one starts from the current camera.
func (s *Session) SetCamera(tr viewport.Transition) error {
	if tr.Camera.Zoom <= 0 {
		return fmt.Errorf("set camera: invalid zoom %v", tr.Camera.Zoom)
	}
	if err := s.persistCamera(tr.Camera); err != nil {
		return err
	}

	s.mu.Lock()
	animate := s.opts.Animate
	s.mu.Unlock()
	// Without server animation the camera lands on the target at once and
	// clients play the move from the duration and easing in the event.
	run := tr
	if !animate {
		run.Duration = 0
	}
	s.anim.Start(run)

	s.emitter.Emit(s.ctx, EventCamera, CameraEvent{
		PageID:     s.page,
		Camera:     tr.Camera,
		DurationMS: tr.DurationMS(),
		Easing:     tr.Easing,
	})
	return nil
}

// Jump moves the camera immediately, e.g. when a client reports a user pan.
func (s *Session) Jump(cam viewport.Camera) error {
	return s.SetCamera(viewport.Transition{Camera: cam})
}

// ApplyCamera implements viewport.CameraSink.
func (s *Session) ApplyCamera(cam viewport.Camera) {
	s.mu.Lock()
	s.camera = cam
	s.mu.Unlock()
}

func (s *Session) reload() error {
	p, err := s.stores.Pages.GetPage(s.page)
	if err != nil {
		return fmt.Errorf("reload camera: %w", err)
	}
	if p.CameraZoom <= 0 {
		return nil
	}
	cam := viewport.Camera{X: p.CameraX, Y: p.CameraY, Zoom: p.CameraZoom}
	// Our own write, possibly still animating towards it.
	s.mu.Lock()
	changed := s.persisted != cam && s.camera != cam
	s.persisted = cam
	s.mu.Unlock()
	if !changed {
		return nil
	}
	s.anim.Stop()
	s.ApplyCamera(cam)
	s.emitter.Emit(s.ctx, EventCamera, CameraEvent{PageID: s.page, Camera: cam})
	return nil
}

func (s *Session) persistCamera(cam viewport.Camera) error {
	p, err := s.stores.Pages.GetPage(s.page)
	if err != nil {
		return fmt.Errorf("set camera: %w", err)
	}
	p.CameraX, p.CameraY, p.CameraZoom = cam.X, cam.Y, cam.Zoom
	if err := s.stores.Pages.UpdatePage(p); err != nil {
		return fmt.Errorf("set camera: %w", err)
	}
	s.mu.Lock()
	s.persisted = cam
	s.mu.Unlock()
	return nil
}

// ── Selection & screen ─────────────────────────────────────

// Select replaces the selection. The last id is the most recent pick.
func (s *Session) Select(ids ...string) {
	s.mu.Lock()
	s.selection = slices.Clone(ids)
	sel := slices.Clone(s.selection)
	s.mu.Unlock()
	s.emitter.Emit(s.ctx, EventSelection, map[string]any{"pageId": s.page, "selection": sel})
}

// SetScreen updates the viewport size in screen pixels.
func (s *Session) SetScreen(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid screen size %vx%v", width, height)
	}
	s.mu.Lock()
	s.opts.ScreenWidth, s.opts.ScreenHeight = width, height
	s.mu.Unlock()
	return nil
}

// SetPanelOpen toggles the companion panel, which widens the right margin.
func (s *Session) SetPanelOpen(open bool) {
	s.mu.Lock()
	s.panelOpen = open
	s.mu.Unlock()
}

func (s *Session) PanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelOpen
}

// Close stops any camera move in flight.
func (s *Session) Close() {
	s.anim.Stop()
}
