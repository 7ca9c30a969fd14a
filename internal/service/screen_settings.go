package service

import (
	"fmt"
	"strconv"

	"infinicanvas/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Screen Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves the last screen size and panel state a client reported, so a
// process with no client attached (the stdio MCP server) frames boards for
// the screen the user actually has. Stored in app_settings.

// Screen is the client viewport in screen pixels.
type Screen struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	PanelOpen bool    `json:"panelOpen"`
}

// ScreenSettingsService persists the client screen between sessions.
type ScreenSettingsService struct {
	settings *storage.SettingsStore
}

func NewScreenSettingsService(settings *storage.SettingsStore) *ScreenSettingsService {
	return &ScreenSettingsService{settings: settings}
}

const (
	settingScreenWidth  = "viewport.screen_width"
	settingScreenHeight = "viewport.screen_height"
	settingPanelOpen    = "viewport.panel_open"
	minScreenWidth      = 320
	minScreenHeight     = 240
)

// Load returns the saved screen and whether a usable one was saved.
func (s *ScreenSettingsService) Load() (Screen, bool) {
	if s.settings == nil {
		return Screen{}, false
	}
	w, okW := s.float(settingScreenWidth)
	h, okH := s.float(settingScreenHeight)
	if !okW || !okH || w < minScreenWidth || h < minScreenHeight {
		return Screen{}, false
	}
	open, _, _ := s.settings.Get(settingPanelOpen)
	return Screen{Width: w, Height: h, PanelOpen: open == "true"}, true
}

func (s *ScreenSettingsService) float(key string) (float64, bool) {
	v, ok, err := s.settings.Get(key)
	if err != nil || !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// Save persists the screen.
func (s *ScreenSettingsService) Save(sc Screen) error {
	if s.settings == nil {
		return fmt.Errorf("screen settings: no store")
	}
	for key, value := range map[string]string{
		settingScreenWidth:  strconv.FormatFloat(sc.Width, 'f', -1, 64),
		settingScreenHeight: strconv.FormatFloat(sc.Height, 'f', -1, 64),
		settingPanelOpen:    strconv.FormatBool(sc.PanelOpen),
	} {
		if err := s.settings.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}
