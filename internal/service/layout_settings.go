package service

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"infinicanvas/internal/layout"
	"infinicanvas/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Layout Settings: runtime overrides on top of the config file
// ─────────────────────────────────────────────────────────────
//
// The row wrap threshold can be tuned while the app runs. The override is
// stored in app_settings and survives restarts; config reloads replace the
// base values but keep the override.

const (
	settingRowMaxWidth = "layout.row_max_width"
	MinRowMaxWidth     = 2000.0
	MaxRowMaxWidth     = 30000.0
)

var ErrInvalidRowMaxWidth = errors.New("row max width out of range")

// LayoutSettingsService owns the effective layout configuration.
type LayoutSettingsService struct {
	settings *storage.SettingsStore

	mu       sync.RWMutex
	base     layout.Config
	rowWidth float64 // 0 means no override
}

// NewLayoutSettingsService creates the service and restores a persisted
// override. A missing or unreadable value is ignored.
func NewLayoutSettingsService(settings *storage.SettingsStore, base layout.Config) *LayoutSettingsService {
	s := &LayoutSettingsService{settings: settings, base: base}
	if settings == nil {
		return s
	}
	if v, ok, err := settings.Get(settingRowMaxWidth); err == nil && ok {
		if w, err := strconv.ParseFloat(v, 64); err == nil && validRowWidth(w) {
			s.rowWidth = w
		}
	}
	return s
}

// Config returns the base configuration with overrides applied.
func (s *LayoutSettingsService) Config() layout.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.base
	if s.rowWidth > 0 {
		cfg.RowMaxWidth = s.rowWidth
	}
	return cfg
}

// SetBase replaces the base configuration, e.g. after a config reload.
func (s *LayoutSettingsService) SetBase(cfg layout.Config) {
	s.mu.Lock()
	s.base = cfg
	s.mu.Unlock()
}

// RowMaxWidth returns the effective threshold and whether it is overridden.
func (s *LayoutSettingsService) RowMaxWidth() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rowWidth > 0 {
		return s.rowWidth, true
	}
	return s.base.RowMaxWidth, false
}

// SetRowMaxWidth overrides and persists the row wrap threshold.
func (s *LayoutSettingsService) SetRowMaxWidth(width float64) error {
	if !validRowWidth(width) {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrInvalidRowMaxWidth, width, MinRowMaxWidth, MaxRowMaxWidth)
	}
	if s.settings != nil {
		if err := s.settings.Set(settingRowMaxWidth, strconv.FormatFloat(width, 'f', -1, 64)); err != nil {
			return fmt.Errorf("save row max width: %w", err)
		}
	}
	s.mu.Lock()
	s.rowWidth = width
	s.mu.Unlock()
	return nil
}

// ResetRowMaxWidth drops the override.
func (s *LayoutSettingsService) ResetRowMaxWidth() error {
	if s.settings != nil {
		if err := s.settings.Delete(settingRowMaxWidth); err != nil {
			return fmt.Errorf("reset row max width: %w", err)
		}
	}
	s.mu.Lock()
	s.rowWidth = 0
	s.mu.Unlock()
	return nil
}

func validRowWidth(w float64) bool {
	return w >= MinRowMaxWidth && w <= MaxRowMaxWidth
}
