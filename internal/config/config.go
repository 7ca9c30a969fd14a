// Package config loads the TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/layout"
	"infinicanvas/internal/viewport"
)

// Config is the full application configuration.
type Config struct {
	Storage    StorageConfig           `toml:"storage"`
	HTTP       HTTPConfig              `toml:"http"`
	Layout     layout.Config           `toml:"layout"`
	Viewport   ViewportConfig          `toml:"viewport"`
	SafeArea   viewport.SafeAreaConfig `toml:"safe_area"`
	Generation GenerationConfig        `toml:"generation"`
	Sweeper    SweeperConfig           `toml:"sweeper"`
	MCP        MCPConfig               `toml:"mcp"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// DBPath is the sqlite file inside the data directory.
func (s StorageConfig) DBPath() string {
	return filepath.Join(s.DataDir, "canvas.db")
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// ViewportConfig holds the framing tunables and the default screen used by
// sessions until a client reports its own size.
type ViewportConfig struct {
	viewport.Config
	ScreenWidth  float64 `toml:"screen_width"`
	ScreenHeight float64 `toml:"screen_height"`
	MinZoom      float64 `toml:"min_zoom"`
	Animate      bool    `toml:"animate"`
}

type GenerationConfig struct {
	// Backend is "mock" or "http".
	Backend  string            `toml:"backend"`
	Endpoint string            `toml:"endpoint"`
	Headers  map[string]string `toml:"headers"`
	// APIKey is sent as a bearer token: "env:NAME", "keychain:NAME" or the
	// key itself.
	APIKey   string            `toml:"api_key"`
	Timeout  Duration          `toml:"timeout"`
	MinDelay Duration          `toml:"mock_min_delay"`
	MaxDelay Duration          `toml:"mock_max_delay"`
}

type SweeperConfig struct {
	Schedule   string   `toml:"schedule"`
	StaleAfter Duration `toml:"stale_after"`
}

type MCPConfig struct {
	ApprovalTimeout Duration `toml:"approval_timeout"`
}

// Duration is a time.Duration written as a string ("90s") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

const (
	BackendMock = "mock"
	BackendHTTP = "http"
)

// DefaultDataDir returns ~/.infinicanvas.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".infinicanvas")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.toml")
}

func Default() Config {
	opts := canvas.DefaultOptions()
	return Config{
		Storage: StorageConfig{DataDir: DefaultDataDir()},
		HTTP:    HTTPConfig{Addr: "127.0.0.1:7420"},
		Layout:  layout.DefaultConfig(),
		Viewport: ViewportConfig{
			Config:       viewport.DefaultConfig(),
			ScreenWidth:  opts.ScreenWidth,
			ScreenHeight: opts.ScreenHeight,
			MinZoom:      opts.MinZoom,
		},
		SafeArea: viewport.DefaultSafeAreaConfig(),
		Generation: GenerationConfig{
			Backend:  BackendMock,
			Timeout:  Duration{60 * time.Second},
			MinDelay: Duration{2 * time.Second},
			MaxDelay: Duration{5 * time.Second},
		},
		Sweeper: SweeperConfig{
			Schedule:   "@every 1m",
			StaleAfter: Duration{10 * time.Minute},
		},
		MCP: MCPConfig{ApprovalTimeout: Duration{120 * time.Second}},
	}
}

// Load reads the config at path on top of the defaults. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects values the engines cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Layout.RowMaxWidth <= 0:
		return fmt.Errorf("layout.row_max_width must be positive")
	case c.Layout.BoardGapX < 0 || c.Layout.RowGapY < 0:
		return fmt.Errorf("layout gaps must not be negative")
	case c.Layout.RowOverlap < 0 || c.Layout.RowOverlap >= 1:
		return fmt.Errorf("layout.row_overlap must be in [0, 1)")
	case c.Layout.MaxCount < 1:
		return fmt.Errorf("layout.max_count must be at least 1")
	case c.Viewport.MinZoom <= 0:
		return fmt.Errorf("viewport.min_zoom must be positive")
	case c.Viewport.MaxZoom < c.Viewport.MinZoom:
		return fmt.Errorf("viewport.max_zoom must be at least min_zoom")
	case c.Viewport.ScreenWidth <= 0 || c.Viewport.ScreenHeight <= 0:
		return fmt.Errorf("viewport screen size must be positive")
	}
	switch c.Generation.Backend {
	case BackendMock:
	case BackendHTTP:
		if c.Generation.Endpoint == "" {
			return fmt.Errorf("generation.endpoint is required for the http backend")
		}
	default:
		return fmt.Errorf("unknown generation backend %q", c.Generation.Backend)
	}
	return nil
}

// SessionOptions converts the viewport settings into canvas options.
func (c Config) SessionOptions() canvas.Options {
	return canvas.Options{
		ScreenWidth:  c.Viewport.ScreenWidth,
		ScreenHeight: c.Viewport.ScreenHeight,
		MinZoom:      c.Viewport.MinZoom,
		SafeArea:     c.SafeArea,
		Animate:      c.Viewport.Animate,
	}
}
