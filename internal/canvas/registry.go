package canvas

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

var ErrPageNotFound = errors.New("page not found")

// Registry hands out one Session per page and tracks the active page.
type Registry struct {
	ctx     context.Context
	stores  Stores
	emitter EventEmitter
	opts    Options

	mu       sync.Mutex
	sessions map[string]*Session
	active   string
}

func NewRegistry(ctx context.Context, stores Stores, emitter EventEmitter, opts Options) *Registry {
	return &Registry{
		ctx:      ctx,
		stores:   stores,
		emitter:  emitter,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for pageID, opening it on first use.
func (r *Registry) Get(pageID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[pageID]; ok {
		return s, nil
	}

	page, err := r.stores.Pages.GetPage(pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}
	if err != nil {
		return nil, err
	}

	s := NewSession(r.ctx, page, r.stores, r.emitter, r.opts)
	r.sessions[pageID] = s
	return s, nil
}

// SetActive makes pageID the page that tools act on by default.
func (r *Registry) SetActive(pageID string) (*Session, error) {
	s, err := r.Get(pageID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.active = pageID
	r.mu.Unlock()
	return s, nil
}

// Active returns the active page's session. With no active page it falls
// back to the most recently created page.
func (r *Registry) Active() (*Session, error) {
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()
	if active != "" {
		return r.Get(active)
	}

	pages, err := r.stores.Pages.ListPages()
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrPageNotFound)
	}
	return r.SetActive(pages[len(pages)-1].ID)
}

// Resolve returns the session for pageID, or the active one when empty.
func (r *Registry) Resolve(pageID string) (*Session, error) {
	if pageID == "" {
		return r.Active()
	}
	return r.Get(pageID)
}

// Configure applies new options to future and open sessions, keeping each
// session's screen size.
func (r *Registry) Configure(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = opts
	for _, s := range r.sessions {
		s.mu.Lock()
		s.opts.MinZoom = opts.MinZoom
		s.opts.SafeArea = opts.SafeArea
		s.opts.Animate = opts.Animate
		s.mu.Unlock()
	}
}

// SetDefaultScreen sets the screen that sessions opened from now on start
// with. Open sessions keep their own.
func (r *Registry) SetDefaultScreen(width, height float64, panelOpen bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.ScreenWidth, r.opts.ScreenHeight = width, height
	r.opts.PanelOpen = panelOpen
}

// Reload refreshes an open session's camera from storage, e.g. after
// another process moved it. Pages without an open session are ignored.
func (r *Registry) Reload(pageID string) error {
	r.mu.Lock()
	s, ok := r.sessions[pageID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return s.reload()
}

// Forget drops a session, e.g. after its page was deleted.
func (r *Registry) Forget(pageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[pageID]; ok {
		s.Close()
		delete(r.sessions, pageID)
	}
	if r.active == pageID {
		r.active = ""
	}
}

// Close stops every open session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.Close()
	}
}
