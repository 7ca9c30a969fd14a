package service_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinicanvas/internal/domain"
	"infinicanvas/internal/layout"
	"infinicanvas/internal/service"
	"infinicanvas/internal/storage"
)

func TestLayoutSettings_OverridePersists(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "canvas.db"))
	require.NoError(t, err)
	defer db.Close()
	store := storage.NewSettingsStore(db)

	s := service.NewLayoutSettingsService(store, layout.DefaultConfig())
	w, overridden := s.RowMaxWidth()
	assert.Equal(t, layout.DefaultRowMaxWidth, w)
	assert.False(t, overridden)

	assert.ErrorIs(t, s.SetRowMaxWidth(100), service.ErrInvalidRowMaxWidth)
	assert.Error(t, s.SetRowMaxWidth(50000))
	require.NoError(t, s.SetRowMaxWidth(8000))
	assert.Equal(t, 8000.0, s.Config().RowMaxWidth)

	// A new service on the same database restores the override.
	restored := service.NewLayoutSettingsService(store, layout.DefaultConfig())
	w, overridden = restored.RowMaxWidth()
	assert.Equal(t, 8000.0, w)
	assert.True(t, overridden)

	// Base reloads keep the override.
	base := layout.DefaultConfig()
	base.BoardGapX = 200
	restored.SetBase(base)
	assert.Equal(t, 200.0, restored.Config().BoardGapX)
	assert.Equal(t, 8000.0, restored.Config().RowMaxWidth)

	require.NoError(t, restored.ResetRowMaxWidth())
	assert.Equal(t, layout.DefaultRowMaxWidth, restored.Config().RowMaxWidth)
}

func TestLayoutSettings_NoStore(t *testing.T) {
	s := service.NewLayoutSettingsService(nil, layout.DefaultConfig())
	require.NoError(t, s.SetRowMaxWidth(3000))
	assert.Equal(t, 3000.0, s.Config().RowMaxWidth)
}

func TestScreenSettings_SaveLoad(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "canvas.db"))
	require.NoError(t, err)
	defer db.Close()
	store := storage.NewSettingsStore(db)

	s := service.NewScreenSettingsService(store)
	_, ok := s.Load()
	assert.False(t, ok)

	require.NoError(t, s.Save(service.Screen{Width: 1440, Height: 900, PanelOpen: true}))
	got, ok := service.NewScreenSettingsService(store).Load()
	require.True(t, ok)
	assert.Equal(t, service.Screen{Width: 1440, Height: 900, PanelOpen: true}, got)

	// Screens below the minimum are ignored on load.
	require.NoError(t, s.Save(service.Screen{Width: 10, Height: 10}))
	_, ok = s.Load()
	assert.False(t, ok)

	_, ok = service.NewScreenSettingsService(nil).Load()
	assert.False(t, ok)
	assert.Error(t, service.NewScreenSettingsService(nil).Save(service.Screen{}))
}

func TestPageService_Lifecycle(t *testing.T) {
	env := newEnv(t, instant())
	pageID := env.session.PageID()

	b, err := env.gen.Generate(env.session, "fox", domain.GenerationSettings{Count: 2})
	require.NoError(t, err)
	waitBatch(t, b)

	pages, err := env.pages.ListPages()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Main", pages[0].Name)

	require.NoError(t, env.pages.RenamePage(pageID, "Renamed"))

	state, err := env.pages.GetPageState(pageID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", state.Page.Name)
	assert.Len(t, state.Boards, 1)
	assert.Len(t, state.Assets, 2)
	assert.Equal(t, env.session.Camera().Zoom, state.Page.CameraZoom)

	require.NoError(t, env.pages.DeletePage(pageID))
	_, err = env.pages.GetPageState(pageID)
	assert.Error(t, err)
	msgs, err := env.pages.ListMessages(pageID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, 1, env.emitter.Count(service.EventPageDeleted))
}

func TestPageService_CreateDefaultsName(t *testing.T) {
	env := newEnv(t, instant())
	p, err := env.pages.CreatePage("  ")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", p.Name)
	assert.Equal(t, 1.0, p.CameraZoom)
}

func TestSweeper_FailsStalePlaceholders(t *testing.T) {
	env := newEnv(t, instant())
	boards := storage.NewBoardStore(env.db)
	require.NoError(t, boards.CreateBoard(&domain.Board{ID: "b1", PageID: env.session.PageID(), Seq: 1}))
	require.NoError(t, env.assets.CreateAsset(&domain.Asset{ID: "stuck", BoardID: "b1", Status: domain.AssetStatusPending}))
	require.NoError(t, env.assets.CreateAsset(&domain.Asset{ID: "done", BoardID: "b1", Index: 1, Status: domain.AssetStatusSuccess}))
	time.Sleep(5 * time.Millisecond)

	sw := service.NewSweeper(env.assets, env.gen, env.emitter, log.New(io.Discard), 0)
	n, err := sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stuck, err := env.assets.GetAsset("stuck")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusFailed, stuck.Status)
	done, err := env.assets.GetAsset("done")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusSuccess, done.Status)

	n, err = sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweeper_StartRejectsBadSchedule(t *testing.T) {
	env := newEnv(t, instant())
	sw := service.NewSweeper(env.assets, env.gen, env.emitter, log.New(io.Discard), time.Minute)
	assert.Error(t, sw.Start("not a schedule"))

	require.NoError(t, sw.Start("@every 1h"))
	sw.Stop()
}
