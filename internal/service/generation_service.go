package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/domain"
	"infinicanvas/internal/generation"
	"infinicanvas/internal/layout"
	"infinicanvas/internal/viewport"
)

// ─────────────────────────────────────────────────────────────
// Generation Service: one prompt in, one board on the canvas
// ─────────────────────────────────────────────────────────────
//
// Generate runs synchronously up to the point where the board and its
// placeholders exist and the camera has been told where to go. Backend
// calls then run in the background, one per asset, and the board status
// is settled once every item has reported.

const (
	EventGenerationDone = "generation:done"
	EventChatMessage    = "chat:message"

	DefaultPrompt = "Random Generation"
	maxSeed       = 100000
)

// ErrInvalidCount is returned for a batch larger than a board can hold.
var ErrInvalidCount = errors.New("image count out of range")

// Batch is the handle for one generation request.
type Batch struct {
	Board     domain.Board      `json:"board"`
	Assets    []domain.Asset    `json:"assets"`
	Placement layout.Placement  `json:"placement"`
	Framing   viewport.Decision `json:"framing"`

	mu     sync.Mutex
	status domain.BoardStatus
	urls   []string
	done   chan struct{}
}

// Done is closed once every item has finished.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Status returns the batch status; it is generating until Done is closed.
func (b *Batch) Status() domain.BoardStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// URLs returns the image URLs of the successful items, in asset order.
func (b *Batch) URLs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.urls...)
}

// Preview is a dry run of placement and framing for a board size.
type Preview struct {
	Dimensions layout.Dimensions  `json:"dimensions"`
	Board      layout.BoardLayout `json:"board"`
	Placement  layout.Placement   `json:"placement"`
	Framing    viewport.Decision  `json:"framing"`
}

// GenerationService places boards and drives the backend.
type GenerationService struct {
	ctx      context.Context
	settings *LayoutSettingsService
	gen      generation.Generator
	chat     domain.ChatStore
	emitter  EventEmitter
	logger   *log.Logger

	// mu serialises snapshot -> place -> create so concurrent requests
	// never read the same board set.
	mu sync.Mutex

	cfgMu   sync.RWMutex
	framing viewport.Config

	guard   runningJobsGuard
	batches sync.WaitGroup // one per batch, until it is settled
}

// NewGenerationService creates the service. ctx is the base context for
// background backend calls; they are not tied to the caller's request.
func NewGenerationService(
	ctx context.Context,
	settings *LayoutSettingsService,
	framing viewport.Config,
	gen generation.Generator,
	chat domain.ChatStore,
	emitter EventEmitter,
	logger *log.Logger,
) *GenerationService {
	return &GenerationService{
		ctx:      ctx,
		settings: settings,
		framing:  framing,
		gen:      gen,
		chat:     chat,
		emitter:  emitter,
		logger:   logger.WithPrefix("generate"),
	}
}

// SetFramingConfig replaces the framing configuration.
func (s *GenerationService) SetFramingConfig(cfg viewport.Config) {
	s.cfgMu.Lock()
	s.framing = cfg
	s.cfgMu.Unlock()
}

func (s *GenerationService) framer() *viewport.Framer {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return viewport.NewFramer(s.framing)
}

// Generate creates a board sized for the settings, places it, frames it and
// starts the backend calls for its items.
func (s *GenerationService) Generate(host canvas.Host, prompt string, settings domain.GenerationSettings) (*Batch, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if settings.Count < 1 {
		settings.Count = 1
	}
	cfg := s.settings.Config()
	if err := checkCount(settings.Count, cfg); err != nil {
		return nil, err
	}
	if settings.AspectRatio == "" {
		settings.AspectRatio = layout.DefaultAspectRatio
	}
	if settings.Quality == "" {
		settings.Quality = layout.DefaultQuality
	}

	dims := layout.ResolveDimensions(settings.AspectRatio, settings.Quality)
	bl := layout.SizeBoard(dims.Layout, settings.Count, cfg)

	batch, err := s.createBoard(host, prompt, settings, cfg, bl)
	if err != nil {
		return nil, err
	}

	s.logger.Info("board placed",
		"page", host.PageID(), "board", batch.Board.ID,
		"x", batch.Placement.X, "y", batch.Placement.Y,
		"wrapped", batch.Placement.Wrapped, "camera", batch.Framing.Mode)

	userMsg := &domain.ChatMessage{
		ID:      uuid.New().String(),
		PageID:  host.PageID(),
		BoardID: batch.Board.ID,
		Role:    domain.ChatRoleUser,
		Content: prompt,
	}
	replyMsg := &domain.ChatMessage{
		ID:      uuid.New().String(),
		PageID:  host.PageID(),
		BoardID: batch.Board.ID,
		Role:    domain.ChatRoleAssistant,
		Status:  domain.BoardStatusGenerating,
	}
	s.addMessage(userMsg)
	s.addMessage(replyMsg)

	s.batches.Add(1)
	go s.run(host, batch, dims.Generation, replyMsg)
	return batch, nil
}

// checkCount rejects batches larger than the configured board capacity.
func checkCount(count int, cfg layout.Config) error {
	limit := cfg.MaxCount
	if limit < 1 {
		limit = layout.DefaultMaxCount
	}
	if count > limit {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidCount, count, limit)
	}
	return nil
}

func (s *GenerationService) createBoard(host canvas.Host, prompt string, settings domain.GenerationSettings, cfg layout.Config, bl layout.BoardLayout) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	boards, err := host.Boards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	vp := host.Viewport()
	placement := layout.NewEngine(cfg).Place(layout.Snapshot{
		Boards:    boards,
		Selection: host.Selection(),
		Viewport:  vp.Page,
	}, bl.Width, bl.Height)

	board := domain.Board{
		ID:          uuid.New().String(),
		PageID:      host.PageID(),
		Seq:         nextSeq(boards),
		X:           placement.X,
		Y:           placement.Y,
		Width:       bl.Width,
		Height:      bl.Height,
		Prompt:      prompt,
		AspectRatio: settings.AspectRatio,
		Quality:     settings.Quality,
		Count:       settings.Count,
		Status:      domain.BoardStatusGenerating,
	}
	if err := host.CreateBoard(&board); err != nil {
		return nil, err
	}

	assets := make([]domain.Asset, len(bl.Slots))
	for i, slot := range bl.Slots {
		assets[i] = domain.Asset{
			ID:      uuid.New().String(),
			BoardID: board.ID,
			Index:   i,
			X:       slot.X,
			Y:       slot.Y,
			Width:   bl.Asset.Width,
			Height:  bl.Asset.Height,
			Seed:    rand.Int64N(maxSeed),
			Status:  domain.AssetStatusPending,
		}
		if err := host.CreateAsset(&assets[i]); err != nil {
			board.Status = domain.BoardStatusFailed
			if uerr := host.UpdateBoard(&board); uerr != nil {
				s.logger.Error("fail board", "board", board.ID, "err", uerr)
			}
			return nil, fmt.Errorf("create placeholder: %w", err)
		}
	}

	decision := s.frame(host, board)
	host.Select(board.ID)

	return &Batch{
		Board:     board,
		Assets:    assets,
		Placement: placement,
		Framing:   decision,
		status:    domain.BoardStatusGenerating,
		done:      make(chan struct{}),
	}, nil
}

// frame asks the framer about the board and applies the proposal. A failed
// camera write is logged; the board already exists.
func (s *GenerationService) frame(host canvas.Host, board domain.Board) viewport.Decision {
	d := s.framer().Frame(hostState(host), board.Bounds())
	if d.Move {
		if err := host.SetCamera(d.Transition); err != nil {
			s.logger.Warn("camera move failed", "board", board.ID, "err", err)
		}
	}
	return d
}

func hostState(host canvas.Host) viewport.State {
	vp := host.Viewport()
	return viewport.State{
		Camera:   host.Camera(),
		Page:     vp.Page,
		Screen:   vp.Screen,
		SafeArea: host.SafeArea(),
		MinZoom:  host.MinZoom(),
	}
}

func nextSeq(boards []domain.Board) int64 {
	var seq int64
	for _, b := range boards {
		seq = max(seq, b.Seq)
	}
	return seq + 1
}

// run calls the backend for every asset concurrently and settles the batch.
func (s *GenerationService) run(host canvas.Host, batch *Batch, size layout.Size, reply *domain.ChatMessage) {
	defer s.batches.Done()
	defer close(batch.done)

	results := make([]domain.Asset, len(batch.Assets))
	var wg sync.WaitGroup
	for i, a := range batch.Assets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.generateItem(host, a, batch.Board.Prompt, size)
		}()
	}
	wg.Wait()

	status := domain.BoardStatusSuccess
	var urls []string
	for _, a := range results {
		if a.Status != domain.AssetStatusSuccess {
			status = domain.BoardStatusFailed
			continue
		}
		urls = append(urls, a.URL)
	}

	board := batch.Board
	board.Status = status
	if err := host.UpdateBoard(&board); err != nil {
		s.logger.Error("settle board", "board", board.ID, "err", err)
	}

	reply.Status = status
	reply.ImageURLs = urls
	if err := s.chat.UpdateMessage(reply); err != nil {
		s.logger.Error("update chat", "message", reply.ID, "err", err)
	}
	s.emitter.Emit(s.ctx, EventChatMessage, *reply)

	batch.mu.Lock()
	batch.status = status
	batch.urls = urls
	batch.mu.Unlock()

	s.logger.Info("batch finished", "board", board.ID, "status", status, "images", len(urls))
	s.emitter.Emit(s.ctx, EventGenerationDone, map[string]any{
		"pageId":  host.PageID(),
		"boardId": board.ID,
		"status":  status,
	})
}

// generateItem runs one backend call and writes the result to the asset.
func (s *GenerationService) generateItem(host canvas.Host, a domain.Asset, prompt string, size layout.Size) domain.Asset {
	if !s.guard.TryLock(a.ID) {
		a.Status = domain.AssetStatusFailed
		a.Error = "already generating"
		return a
	}
	defer s.guard.Unlock(a.ID)

	resp, err := s.gen.Generate(s.ctx, generation.Request{
		Prompt: prompt,
		Width:  int(size.Width),
		Height: int(size.Height),
		Seed:   a.Seed,
	})
	switch {
	case err != nil:
		a.Status = domain.AssetStatusFailed
		a.Error = err.Error()
		s.logger.Warn("item failed", "asset", a.ID, "err", err)
	case resp.Status == generation.StatusFailed:
		a.Status = domain.AssetStatusFailed
		a.Error = resp.Error
	default:
		a.Status = domain.AssetStatusSuccess
		a.URL = resp.URL
		a.GenerationID = resp.ID
		if resp.Metadata != nil {
			if b, err := json.Marshal(resp.Metadata); err == nil {
				a.MetadataJSON = string(b)
			}
		}
	}

	if err := host.UpdateAsset(&a); err != nil {
		s.logger.Error("update asset", "asset", a.ID, "err", err)
	}
	return a
}

func (s *GenerationService) addMessage(m *domain.ChatMessage) {
	if err := s.chat.AddMessage(m); err != nil {
		s.logger.Error("add chat message", "err", err)
		return
	}
	// Subscribers marshal later; hand them a copy.
	s.emitter.Emit(s.ctx, EventChatMessage, *m)
}

// ── Dry runs & layout tools ────────────────────────────────

// Preview computes where a board for settings would go and what the camera
// would do, without touching the canvas.
func (s *GenerationService) Preview(host canvas.Host, settings domain.GenerationSettings) (*Preview, error) {
	cfg := s.settings.Config()
	if err := checkCount(settings.Count, cfg); err != nil {
		return nil, err
	}
	dims := layout.ResolveDimensions(settings.AspectRatio, settings.Quality)
	bl := layout.SizeBoard(dims.Layout, settings.Count, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	boards, err := host.Boards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	p := layout.NewEngine(cfg).Place(layout.Snapshot{
		Boards:    boards,
		Selection: host.Selection(),
		Viewport:  host.Viewport().Page,
	}, bl.Width, bl.Height)

	return &Preview{
		Dimensions: dims,
		Board:      bl,
		Placement:  p,
		Framing:    s.framer().Frame(hostState(host), layout.BoardBox(p, bl)),
	}, nil
}

// Arrange re-flows every board on the page in creation order, starting at
// the first board's origin (or the origin of an empty page).
func (s *GenerationService) Arrange(host canvas.Host) ([]domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	boards, err := host.Boards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	if len(boards) == 0 {
		return boards, nil
	}
	layout.SortBySeq(boards)
	startX, startY := boards[0].X, boards[0].Y

	before := make(map[string][2]float64, len(boards))
	for _, b := range boards {
		before[b.ID] = [2]float64{b.X, b.Y}
	}
	layout.NewEngine(s.settings.Config()).Arrange(boards, startX, startY)

	for i := range boards {
		b := &boards[i]
		if before[b.ID] == [2]float64{b.X, b.Y} {
			continue
		}
		if err := host.UpdateBoard(b); err != nil {
			return nil, err
		}
	}
	return boards, nil
}

// FrameBoard brings an existing board into the safe area.
func (s *GenerationService) FrameBoard(host canvas.Host, boardID string) (viewport.Decision, error) {
	boards, err := host.Boards()
	if err != nil {
		return viewport.Decision{}, fmt.Errorf("list boards: %w", err)
	}
	for _, b := range boards {
		if b.ID == boardID {
			return s.frame(host, b), nil
		}
	}
	return viewport.Decision{}, fmt.Errorf("board not found: %s", boardID)
}

// InFlight returns the number of backend calls still running.
func (s *GenerationService) InFlight() int {
	return s.guard.Running()
}

// Wait blocks until every started batch is settled or ctx is done.
func (s *GenerationService) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.batches.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
