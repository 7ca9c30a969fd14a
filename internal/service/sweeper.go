package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Stale placeholder sweeper
// ─────────────────────────────────────────────────────────────
//
// A crash or restart mid-generation leaves assets pending forever. The
// sweeper marks pending assets older than staleAfter as failed unless a
// backend call for them is still running in this process.

// StaleAssetStore is the subset of storage the sweeper needs.
type StaleAssetStore interface {
	ListAssetsByStatus(status domain.AssetStatus, before time.Time) ([]domain.Asset, error)
	UpdateAsset(a *domain.Asset) error
}

// Sweeper runs the stale placeholder check on a cron schedule.
type Sweeper struct {
	assets     StaleAssetStore
	gen        *GenerationService
	emitter    EventEmitter
	logger     *log.Logger
	staleAfter time.Duration

	cron *cron.Cron
}

func NewSweeper(assets StaleAssetStore, gen *GenerationService, emitter EventEmitter, logger *log.Logger, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		assets:     assets,
		gen:        gen,
		emitter:    emitter,
		logger:     logger.WithPrefix("sweeper"),
		staleAfter: staleAfter,
	}
}

// Start schedules the sweep, e.g. "@every 1m".
func (s *Sweeper) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("sweep failed", "err", err)
		}
	}); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	s.logger.Debug("scheduled", "schedule", schedule, "staleAfter", s.staleAfter)
	return nil
}

// Stop halts the schedule and waits for a running sweep to return.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep marks stale pending assets as failed and returns how many it touched.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	stale, err := s.assets.ListAssetsByStatus(domain.AssetStatusPending, time.Now().Add(-s.staleAfter))
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range stale {
		a := &stale[i]
		if s.gen != nil && s.gen.guard.IsRunning(a.ID) {
			continue
		}
		a.Status = domain.AssetStatusFailed
		a.Error = "generation timed out"
		if err := s.assets.UpdateAsset(a); err != nil {
			return n, err
		}
		s.emitter.Emit(ctx, canvas.EventAssetUpdated, a)
		n++
	}
	if n > 0 {
		s.logger.Info("marked stale placeholders failed", "count", n)
	}
	return n, nil
}
