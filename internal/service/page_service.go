package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Page Service: canvases and their persisted state
// ─────────────────────────────────────────────────────────────

const (
	EventPageCreated = "page:created"
	EventPageDeleted = "page:deleted"
)

// PageService manages pages and assembles page state for clients.
type PageService struct {
	pages    domain.PageStore
	boards   domain.BoardStore
	assets   domain.AssetStore
	chat     domain.ChatStore
	registry *canvas.Registry
	emitter  EventEmitter
}

// NewPageService creates a PageService.
func NewPageService(
	pages domain.PageStore,
	boards domain.BoardStore,
	assets domain.AssetStore,
	chat domain.ChatStore,
	registry *canvas.Registry,
	emitter EventEmitter,
) *PageService {
	return &PageService{
		pages:    pages,
		boards:   boards,
		assets:   assets,
		chat:     chat,
		registry: registry,
		emitter:  emitter,
	}
}

func (s *PageService) ListPages() ([]domain.Page, error) {
	return s.pages.ListPages()
}

func (s *PageService) CreatePage(name string) (*domain.Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}
	p := &domain.Page{
		ID:         uuid.New().String(),
		Name:       name,
		CameraZoom: 1.0,
	}
	if err := s.pages.CreatePage(p); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.emitter.Emit(context.Background(), EventPageCreated, p)
	return p, nil
}

func (s *PageService) RenamePage(id, name string) error {
	p, err := s.pages.GetPage(id)
	if err != nil {
		return err
	}
	p.Name = name
	return s.pages.UpdatePage(p)
}

// DeletePage removes a page with its boards, assets and chat log.
func (s *PageService) DeletePage(id string) error {
	boards, err := s.boards.ListBoards(id)
	if err != nil {
		return err
	}
	for _, b := range boards {
		if err := s.assets.DeleteAssetsByBoard(b.ID); err != nil {
			return fmt.Errorf("delete assets: %w", err)
		}
	}
	if err := s.boards.DeleteBoardsByPage(id); err != nil {
		return fmt.Errorf("delete boards: %w", err)
	}
	if err := s.chat.DeleteMessagesByPage(id); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if err := s.pages.DeletePage(id); err != nil {
		return err
	}
	s.registry.Forget(id)
	s.emitter.Emit(context.Background(), EventPageDeleted, map[string]string{"id": id})
	return nil
}

// GetPageState returns everything a client needs to render the page.
func (s *PageService) GetPageState(pageID string) (*domain.PageState, error) {
	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	boards, err := s.boards.ListBoards(pageID)
	if err != nil {
		return nil, err
	}
	assets, err := s.assets.ListAssetsByPage(pageID)
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []domain.Board{}
	}
	if assets == nil {
		assets = []domain.Asset{}
	}
	// The session holds the live camera, which may be mid-move.
	if sess, err := s.registry.Get(pageID); err == nil {
		cam := sess.Camera()
		page.CameraX, page.CameraY, page.CameraZoom = cam.X, cam.Y, cam.Zoom
	}
	return &domain.PageState{Page: *page, Boards: boards, Assets: assets}, nil
}

// ListMessages returns the page's chat log, oldest first.
func (s *PageService) ListMessages(pageID string) ([]domain.ChatMessage, error) {
	msgs, err := s.chat.ListMessages(pageID)
	if msgs == nil && err == nil {
		msgs = []domain.ChatMessage{}
	}
	return msgs, err
}
