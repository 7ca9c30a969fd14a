package canvas

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinicanvas/internal/domain"
	"infinicanvas/internal/geom"
	"infinicanvas/internal/storage"
	"infinicanvas/internal/viewport"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	data   []any
}

func (r *recorder) Emit(_ context.Context, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.data = append(r.data, data)
}

// last returns the payload of the most recent event with that name.
func (r *recorder) last(event string) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i] == event {
			return r.data[i]
		}
	}
	return nil
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func newStores(t *testing.T) Stores {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "canvas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return Stores{
		Pages:  storage.NewPageStore(db),
		Boards: storage.NewBoardStore(db),
		Assets: storage.NewAssetStore(db),
	}
}

func newSession(t *testing.T) (*Session, Stores, *recorder) {
	t.Helper()
	stores := newStores(t)
	require.NoError(t, stores.Pages.CreatePage(&domain.Page{ID: "p1", Name: "Main", CameraX: 10, CameraY: 20, CameraZoom: 0.5}))
	page, err := stores.Pages.GetPage("p1")
	require.NoError(t, err)

	rec := &recorder{}
	opts := DefaultOptions()
	opts.ScreenWidth, opts.ScreenHeight = 1000, 800
	return NewSession(context.Background(), page, stores, rec, opts), stores, rec
}

func TestSession_RestoresCameraAndViewport(t *testing.T) {
	s, _, _ := newSession(t)

	assert.Equal(t, viewport.Camera{X: 10, Y: 20, Zoom: 0.5}, s.Camera())
	vp := s.Viewport()
	assert.Equal(t, geom.Box{MinX: 10, MinY: 20, MaxX: 2010, MaxY: 1620}, vp.Page)
	assert.Equal(t, geom.Box{MaxX: 1000, MaxY: 800}, vp.Screen)
}

func TestSession_SetCameraPersistsAndEmits(t *testing.T) {
	s, stores, rec := newSession(t)

	target := viewport.Camera{X: -300, Y: 50, Zoom: 0.8}
	require.NoError(t, s.SetCamera(viewport.Transition{Camera: target, Duration: viewport.DefaultDuration}))

	assert.Equal(t, target, s.Camera(), "without server animation the camera jumps")
	page, err := stores.Pages.GetPage("p1")
	require.NoError(t, err)
	assert.Equal(t, -300.0, page.CameraX)
	assert.Equal(t, 0.8, page.CameraZoom)
	assert.Equal(t, 1, rec.count(EventCamera))

	// Clients still get the timing so they can play the move.
	ev, ok := rec.last(EventCamera).(CameraEvent)
	require.True(t, ok)
	assert.Equal(t, viewport.DefaultDuration.Milliseconds(), ev.DurationMS)
	assert.Equal(t, target, ev.Camera)
}

func TestSession_SetCameraRejectsZeroZoom(t *testing.T) {
	s, _, rec := newSession(t)
	assert.Error(t, s.SetCamera(viewport.Transition{}))
	assert.Zero(t, rec.count(EventCamera))
}

func TestSession_SafeAreaFollowsPanel(t *testing.T) {
	s, _, _ := newSession(t)
	cfg := viewport.DefaultSafeAreaConfig()

	assert.Equal(t, cfg.Right, s.SafeArea().Right)
	s.SetPanelOpen(true)
	assert.Equal(t, cfg.RightPanelOpen, s.SafeArea().Right)
}

func TestSession_BoardLifecycle(t *testing.T) {
	s, stores, rec := newSession(t)

	b := &domain.Board{ID: "b1", Seq: 1, Width: 100, Height: 100, Status: domain.BoardStatusGenerating}
	require.NoError(t, s.CreateBoard(b))
	assert.Equal(t, "p1", b.PageID)
	require.NoError(t, s.CreateAsset(&domain.Asset{ID: "a1", BoardID: "b1", Status: domain.AssetStatusPending}))

	s.Select("b1")
	assert.Equal(t, []string{"b1"}, s.Selection())

	require.NoError(t, s.DeleteBoard("b1"))
	assert.Empty(t, s.Selection(), "deleted boards leave the selection")

	boards, err := s.Boards()
	require.NoError(t, err)
	assert.Empty(t, boards)
	assets, err := stores.Assets.ListAssets("b1")
	require.NoError(t, err)
	assert.Empty(t, assets)

	assert.Equal(t, 1, rec.count(EventBoardCreated))
	assert.Equal(t, 1, rec.count(EventAssetCreated))
	assert.Equal(t, 1, rec.count(EventBoardDeleted))
}

func TestSession_SetScreen(t *testing.T) {
	s, _, _ := newSession(t)
	assert.Error(t, s.SetScreen(0, 100))
	require.NoError(t, s.SetScreen(500, 400))
	assert.Equal(t, 500.0, s.Viewport().Screen.Width())
}

func TestRegistry(t *testing.T) {
	stores := newStores(t)
	reg := NewRegistry(context.Background(), stores, &recorder{}, DefaultOptions())
	defer reg.Close()

	_, err := reg.Active()
	assert.True(t, errors.Is(err, ErrPageNotFound))

	_, err = reg.Get("missing")
	assert.True(t, errors.Is(err, ErrPageNotFound))

	require.NoError(t, stores.Pages.CreatePage(&domain.Page{ID: "p1", Name: "One"}))
	require.NoError(t, stores.Pages.CreatePage(&domain.Page{ID: "p2", Name: "Two"}))

	a, err := reg.Get("p1")
	require.NoError(t, err)
	b, err := reg.Get("p1")
	require.NoError(t, err)
	assert.Same(t, a, b)

	active, err := reg.Active()
	require.NoError(t, err)
	assert.Equal(t, "p2", active.PageID(), "falls back to the newest page")

	_, err = reg.SetActive("p1")
	require.NoError(t, err)
	got, err := reg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.PageID())

	reg.Forget("p1")
	got, err = reg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "p2", got.PageID())
}

func TestRegistry_Configure(t *testing.T) {
	stores := newStores(t)
	require.NoError(t, stores.Pages.CreatePage(&domain.Page{ID: "p1", Name: "One"}))
	reg := NewRegistry(context.Background(), stores, &recorder{}, DefaultOptions())

	s, err := reg.Get("p1")
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.MinZoom = 0.25
	reg.Configure(opts)
	assert.Equal(t, 0.25, s.MinZoom())
}

func TestRegistry_Reload(t *testing.T) {
	stores := newStores(t)
	require.NoError(t, stores.Pages.CreatePage(&domain.Page{ID: "p1", Name: "One", CameraZoom: 1}))
	rec := &recorder{}
	reg := NewRegistry(context.Background(), stores, rec, DefaultOptions())
	defer reg.Close()

	// Not open yet: nothing to refresh.
	require.NoError(t, reg.Reload("p1"))

	s, err := reg.Get("p1")
	require.NoError(t, err)

	// Another process moves the camera.
	p, err := stores.Pages.GetPage("p1")
	require.NoError(t, err)
	p.CameraX, p.CameraY, p.CameraZoom = 400, -200, 0.3
	require.NoError(t, stores.Pages.UpdatePage(p))

	require.NoError(t, reg.Reload("p1"))
	assert.Equal(t, viewport.Camera{X: 400, Y: -200, Zoom: 0.3}, s.Camera())
	assert.Equal(t, 1, rec.count(EventCamera))

	// Unchanged camera does not re-emit.
	require.NoError(t, reg.Reload("p1"))
	assert.Equal(t, 1, rec.count(EventCamera))
}

func TestRegistry_ReloadDuringAnimation(t *testing.T) {
	stores := newStores(t)
	require.NoError(t, stores.Pages.CreatePage(&domain.Page{ID: "p1", Name: "One", CameraZoom: 1}))
	rec := &recorder{}
	opts := DefaultOptions()
	opts.Animate = true
	reg := NewRegistry(context.Background(), stores, rec, opts)
	defer reg.Close()

	s, err := reg.Get("p1")
	require.NoError(t, err)
	target := viewport.Camera{X: 900, Y: 300, Zoom: 0.5}
	require.NoError(t, s.SetCamera(viewport.Transition{Camera: target, Duration: 300 * time.Millisecond, Easing: viewport.EaseLinear}))

	// The stored camera is this session's own target; reloading it must not
	// cut the move short.
	require.NoError(t, reg.Reload("p1"))
	assert.Equal(t, 1, rec.count(EventCamera))
	assert.NotEqual(t, target, s.Camera(), "still animating")

	require.Eventually(t, func() bool { return s.Camera() == target }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, rec.count(EventCamera))
}

func TestRegistry_SetDefaultScreen(t *testing.T) {
	stores := newStores(t)
	require.NoError(t, stores.Pages.CreatePage(&domain.Page{ID: "p1", Name: "One"}))
	reg := NewRegistry(context.Background(), stores, &recorder{}, DefaultOptions())
	defer reg.Close()

	reg.SetDefaultScreen(1280, 720, true)
	s, err := reg.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, geom.Box{MaxX: 1280, MaxY: 720}, s.Viewport().Screen)
	assert.True(t, s.PanelOpen())
	assert.Equal(t, viewport.DefaultSafeAreaConfig().RightPanelOpen, s.SafeArea().Right)
}
