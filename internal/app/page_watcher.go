package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	mcpserver "infinicanvas/internal/mcp"
)

const (
	EventBoardsChanged = "mcp:boards-changed"
	EventPagesChanged  = "mcp:pages-changed"
)

// pageWatcher polls the database for changes made by another process
// (e.g. the standalone MCP server) and emits events so clients refresh.
// It also surfaces approvals that process is waiting on.
type pageWatcher struct {
	ctx      context.Context
	app      *App
	interval time.Duration

	mu sync.Mutex
	// Per-page fingerprints: page row (camera) and boards + assets
	pageFP  map[string]string
	boardFP map[string]string
	// Page list fingerprint (count + max updated_at)
	lastPageList string
	stopCh       chan struct{}
	// Track emitted approval IDs to avoid re-emission
	emittedApprovals map[string]bool
}

func newPageWatcher(ctx context.Context, app *App) *pageWatcher {
	return &pageWatcher{
		ctx:              ctx,
		app:              app,
		interval:         2 * time.Second,
		pageFP:           map[string]string{},
		boardFP:          map[string]string{},
		emittedApprovals: map[string]bool{},
	}
}

// Start begins the polling loop.
func (w *pageWatcher) Start() {
	w.stopCh = make(chan struct{})
	w.check() // prime fingerprints
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *pageWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
	}
}

func (w *pageWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

type pageFingerprint struct {
	id     string
	page   string
	boards string
}

func (w *pageWatcher) check() {
	db := w.app.db.Conn()

	// ── Page list (sidebar) ─────────────────────────────
	var pageCount int
	var pagesMaxUpdated string
	if err := db.QueryRow(`SELECT COUNT(*), COALESCE(MAX(created_at), '') FROM pages`).Scan(&pageCount, &pagesMaxUpdated); err != nil {
		w.app.logger.Debug("watcher: page list", "err", err)
		return
	}
	pageList := fmt.Sprintf("%d:%s", pageCount, pagesMaxUpdated)

	// ── Per page: camera row, boards and assets ─────────
	rows, err := db.Query(`
		SELECT p.id, COALESCE(p.updated_at, ''),
			(SELECT COUNT(*) || ':' || COALESCE(MAX(b.updated_at), '') FROM boards b WHERE b.page_id = p.id),
			(SELECT COUNT(*) || ':' || COALESCE(MAX(a.updated_at), '') FROM assets a JOIN boards b ON b.id = a.board_id WHERE b.page_id = p.id)
		FROM pages p`)
	if err != nil {
		w.app.logger.Debug("watcher: pages", "err", err)
		return
	}
	var pages []pageFingerprint
	for rows.Next() {
		var fp pageFingerprint
		var boards, assets string
		if err := rows.Scan(&fp.id, &fp.page, &boards, &assets); err != nil {
			continue
		}
		fp.boards = boards + "|" + assets
		pages = append(pages, fp)
	}
	rows.Close()

	// ── Compare ─────────────────────────────────────────
	var cameraChanged, boardsChanged []string
	w.mu.Lock()
	pagesChanged := w.lastPageList != "" && w.lastPageList != pageList
	w.lastPageList = pageList
	seen := make(map[string]bool, len(pages))
	for _, fp := range pages {
		seen[fp.id] = true
		if prev, ok := w.pageFP[fp.id]; ok && prev != fp.page {
			cameraChanged = append(cameraChanged, fp.id)
		}
		if prev, ok := w.boardFP[fp.id]; ok && prev != fp.boards {
			boardsChanged = append(boardsChanged, fp.id)
		}
		w.pageFP[fp.id] = fp.page
		w.boardFP[fp.id] = fp.boards
	}
	for id := range w.pageFP {
		if !seen[id] {
			delete(w.pageFP, id)
			delete(w.boardFP, id)
		}
	}
	w.mu.Unlock()

	// ── Emit events ────────────────────────────────────
	for _, id := range cameraChanged {
		if err := w.app.registry.Reload(id); err != nil {
			w.app.logger.Warn("watcher: reload camera", "page", id, "err", err)
		}
	}
	for _, id := range boardsChanged {
		w.app.hub.Emit(w.ctx, EventBoardsChanged, map[string]string{"pageId": id})
	}
	if pagesChanged {
		w.app.hub.Emit(w.ctx, EventPagesChanged, map[string]int{"count": pageCount})
	}

	w.checkApprovals()
}

// checkApprovals emits approval-required once per pending row and
// approval-dismissed once the row is resolved or gone.
func (w *pageWatcher) checkApprovals() {
	pending, err := w.app.mcp.Approvals().Pending()
	if err != nil {
		return
	}
	current := make(map[string]bool, len(pending))
	var fresh []mcpserver.PendingAction
	var gone []string

	w.mu.Lock()
	for _, p := range pending {
		current[p.ID] = true
		if !w.emittedApprovals[p.ID] {
			w.emittedApprovals[p.ID] = true
			fresh = append(fresh, p)
		}
	}
	for id := range w.emittedApprovals {
		if !current[id] {
			delete(w.emittedApprovals, id)
			gone = append(gone, id)
		}
	}
	w.mu.Unlock()

	for _, p := range fresh {
		w.app.hub.Emit(w.ctx, mcpserver.EventApprovalRequired, p)
	}
	for _, id := range gone {
		w.app.hub.Emit(w.ctx, mcpserver.EventApprovalDismissed, map[string]string{"id": id})
	}
}
