package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/config"
	"infinicanvas/internal/domain"
	"infinicanvas/internal/generation"
	"infinicanvas/internal/httpapi"
	mcpserver "infinicanvas/internal/mcp"
	"infinicanvas/internal/service"
	"infinicanvas/internal/viewport"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Generation.MinDelay = config.Duration{}
	cfg.Generation.MaxDelay = config.Duration{}
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

// waitEvent reads from events until name arrives.
func waitEvent(t *testing.T, events <-chan httpapi.Event, name string) httpapi.Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Name == name {
				return ev
			}
		case <-timeout:
			t.Fatalf("event %s not emitted", name)
			return httpapi.Event{}
		}
	}
}

func TestNewGenerator(t *testing.T) {
	g, err := newGenerator(config.GenerationConfig{Backend: config.BackendMock})
	require.NoError(t, err)
	assert.IsType(t, &generation.MockGenerator{}, g)

	g, err = newGenerator(config.GenerationConfig{Backend: config.BackendHTTP, Endpoint: "http://localhost:1"})
	require.NoError(t, err)
	assert.IsType(t, &generation.HTTPGenerator{}, g)

	_, err = newGenerator(config.GenerationConfig{Backend: "dalle"})
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	h := a.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pages", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyConfig(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	page, err := a.pages.CreatePage("Main")
	require.NoError(t, err)
	sess, err := a.registry.Get(page.ID)
	require.NoError(t, err)

	cfg.Layout.RowMaxWidth = 4000
	cfg.Viewport.MinZoom = 0.05
	a.ApplyConfig(cfg)

	assert.Equal(t, 4000.0, a.layout.Config().RowMaxWidth)
	assert.Equal(t, 0.05, sess.MinZoom())
}

func TestServeHTTP_StopsWithContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Addr = "127.0.0.1:0"
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.ServeHTTP(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

// Two apps on one database stand in for the serve process and a standalone
// MCP process.
func TestPageWatcher_CrossProcess(t *testing.T) {
	cfg := testConfig(t)
	serve := newTestApp(t, cfg)
	other := newTestApp(t, cfg)

	events, leave := serve.hub.Subscribe()
	defer leave()

	w := newPageWatcher(context.Background(), serve)
	w.check()

	// A page created elsewhere refreshes the page list.
	page, err := other.pages.CreatePage("Remote")
	require.NoError(t, err)
	w.check()
	waitEvent(t, events, EventPagesChanged)

	// A camera moved elsewhere is reloaded into the open session.
	local, err := serve.registry.Get(page.ID)
	require.NoError(t, err)
	remote, err := other.registry.Get(page.ID)
	require.NoError(t, err)
	require.NoError(t, remote.Jump(viewport.Camera{X: 300, Y: 200, Zoom: 0.4}))
	w.check()
	waitEvent(t, events, canvas.EventCamera)
	assert.Equal(t, viewport.Camera{X: 300, Y: 200, Zoom: 0.4}, local.Camera())

	// Boards generated elsewhere.
	batch, err := other.generation.Generate(remote, "remote board", domain.GenerationSettings{Count: 1})
	require.NoError(t, err)
	select {
	case <-batch.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("batch did not finish")
	}
	w.check()
	ev := waitEvent(t, events, EventBoardsChanged)
	assert.Equal(t, map[string]string{"pageId": page.ID}, ev.Data)

	// Approvals requested elsewhere surface once and are dismissed after.
	result := make(chan error, 1)
	go func() {
		result <- other.mcp.Approvals().Request(context.Background(), "delete_board", "Delete 1 board(s)", "")
	}()
	var pending []mcpserver.PendingAction
	require.Eventually(t, func() bool {
		pending, _ = serve.mcp.Approvals().Pending()
		return len(pending) == 1
	}, 3*time.Second, 10*time.Millisecond)
	w.check()
	ev = waitEvent(t, events, mcpserver.EventApprovalRequired)
	assert.Equal(t, pending[0].ID, ev.Data.(mcpserver.PendingAction).ID)

	require.NoError(t, serve.mcp.Approvals().Approve(pending[0].ID))
	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("approval not delivered")
	}
	w.check()
	waitEvent(t, events, mcpserver.EventApprovalDismissed)
}

func TestPreview(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	_, err := a.Preview("", domain.GenerationSettings{Count: 1})
	assert.ErrorIs(t, err, canvas.ErrPageNotFound)

	_, err = a.pages.CreatePage("Main")
	require.NoError(t, err)
	p, err := a.Preview("", domain.GenerationSettings{AspectRatio: "1:1", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, -252.0, p.Placement.X)

	pages, err := a.Pages()
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestNew_RestoresSavedScreen(t *testing.T) {
	cfg := testConfig(t)
	first := newTestApp(t, cfg)
	require.NoError(t, first.screen.Save(service.Screen{Width: 1280, Height: 720, PanelOpen: true}))

	second := newTestApp(t, cfg)
	page, err := second.pages.CreatePage("Main")
	require.NoError(t, err)
	sess, err := second.registry.Get(page.ID)
	require.NoError(t, err)
	assert.Equal(t, 1280.0, sess.Viewport().Screen.Width())
	assert.True(t, sess.PanelOpen())

	// Reloading config keeps the saved screen for new pages.
	second.ApplyConfig(cfg)
	other, err := second.pages.CreatePage("Other")
	require.NoError(t, err)
	sess, err = second.registry.Get(other.ID)
	require.NoError(t, err)
	assert.Equal(t, 720.0, sess.Viewport().Screen.Height())
}

func TestNewGenerator_APIKey(t *testing.T) {
	var auth, custom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, custom = r.Header.Get("Authorization"), r.Header.Get("X-Team")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"url":"http://img/1.png"}`)
	}))
	defer srv.Close()

	t.Setenv("INFINICANVAS_TEST_API_KEY", "sk-test")
	headers := map[string]string{"X-Team": "art"}
	g, err := newGenerator(config.GenerationConfig{
		Backend:  config.BackendHTTP,
		Endpoint: srv.URL,
		Headers:  headers,
		APIKey:   "env:INFINICANVAS_TEST_API_KEY",
	})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), generation.Request{Prompt: "fox", Width: 64, Height: 64})
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "art", custom)
	assert.NotContains(t, headers, "Authorization")

	_, err = newGenerator(config.GenerationConfig{
		Backend:  config.BackendHTTP,
		Endpoint: srv.URL,
		APIKey:   "env:INFINICANVAS_TEST_UNSET_KEY",
	})
	assert.Error(t, err)
}
