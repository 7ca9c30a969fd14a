package viewport

import (
	"math"
	"time"

	"infinicanvas/internal/geom"
)

// Config tunes the framing engine.
type Config struct {
	// Tolerance is the containment slack in screen pixels.
	Tolerance float64 `toml:"tolerance" json:"tolerance"`
	// Inset keeps fitted content off the safe-area edges, in screen pixels.
	Inset float64 `toml:"inset" json:"inset"`
	// MaxZoom caps the zoom chosen by a fit.
	MaxZoom float64 `toml:"max_zoom" json:"maxZoom"`
	// DurationMS is the length of the camera transition.
	DurationMS int    `toml:"duration_ms" json:"durationMs"`
	Easing     Easing `toml:"easing" json:"easing"`
}

func DefaultConfig() Config {
	return Config{
		Tolerance:  1,
		Inset:      50,
		MaxZoom:    1,
		DurationMS: int(DefaultDuration / time.Millisecond),
		Easing:     DefaultEasing,
	}
}

// State is the camera-related host state the framer reads.
type State struct {
	Camera   Camera
	Page     geom.Box // viewport in page space
	Screen   geom.Box // viewport in screen space
	SafeArea SafeArea
	MinZoom  float64
}

type Mode string

const (
	ModeNone    Mode = "none"    // target already inside the safe area
	ModeFit     Mode = "fit"     // zoom/pan to the union of viewport and target
	ModePan     Mode = "pan"     // translate only; a fit would go below min zoom
	ModeSkipped Mode = "skipped" // safe area has no room; camera left alone
)

// Decision is the framer's output. Transition is only meaningful when Move
// is true.
type Decision struct {
	Mode       Mode       `json:"mode"`
	Move       bool       `json:"move"`
	Transition Transition `json:"transition"`
	Safe       geom.Box   `json:"safe"` // safe rectangle in page space before the move
}

// Framer decides whether the camera has to move to keep new content in the
// safe area. It is pure: it proposes a Transition and never touches a host.
type Framer struct {
	cfg Config
}

func NewFramer(cfg Config) *Framer {
	return &Framer{cfg: cfg}
}

// SafePageBounds converts the safe area margins to a page-space rectangle
// at the state's zoom.
func SafePageBounds(st State) geom.Box {
	z := st.Camera.Zoom
	return geom.Box{
		MinX: st.Page.MinX + st.SafeArea.Left/z,
		MinY: st.Page.MinY + st.SafeArea.Top/z,
		MaxX: st.Page.MaxX - st.SafeArea.Right/z,
		MaxY: st.Page.MaxY - st.SafeArea.Bottom/z,
	}
}

// Frame returns the camera decision for newly placed content at target.
func (f *Framer) Frame(st State, target geom.Box) Decision {
	if st.Camera.Zoom <= 0 {
		return Decision{Mode: ModeSkipped}
	}
	safe := SafePageBounds(st)
	d := Decision{Mode: ModeNone, Safe: safe}

	if safe.ContainsWithin(target, f.cfg.Tolerance/st.Camera.Zoom) {
		return d
	}

	sa := st.SafeArea
	safeW := st.Screen.Width() - sa.Left - sa.Right
	safeH := st.Screen.Height() - sa.Top - sa.Bottom
	availW := safeW - 2*f.cfg.Inset
	availH := safeH - 2*f.cfg.Inset
	if availW <= 0 || availH <= 0 {
		d.Mode = ModeSkipped
		return d
	}

	union := safe.Union(target)
	zoom := math.Min(availW/union.Width(), availH/union.Height())
	if f.cfg.MaxZoom > 0 {
		zoom = math.Min(zoom, f.cfg.MaxZoom)
	}

	var cam Camera
	if zoom < st.MinZoom {
		d.Mode = ModePan
		cam = f.minimalPan(st, target)
	} else {
		d.Mode = ModeFit
		safeCenterX := sa.Left + safeW/2
		safeCenterY := sa.Top + safeH/2
		cam = Camera{
			X:    union.CenterX() - safeCenterX/zoom,
			Y:    union.CenterY() - safeCenterY/zoom,
			Zoom: zoom,
		}
	}

	d.Move = true
	d.Transition = Transition{
		Camera:   cam,
		Duration: time.Duration(f.cfg.DurationMS) * time.Millisecond,
		Easing:   f.cfg.Easing,
	}
	return d
}

// minimalPan keeps the zoom (raised to the minimum if needed) and moves the
// camera only as far as it takes for the target to re-enter the safe area
// on each axis.
func (f *Framer) minimalPan(st State, target geom.Box) Camera {
	zoom := math.Max(st.Camera.Zoom, st.MinZoom)
	sa := st.SafeArea
	w, h := st.Screen.Width(), st.Screen.Height()

	safe := geom.Box{
		MinX: st.Page.MinX + sa.Left/zoom,
		MinY: st.Page.MinY + sa.Top/zoom,
		MaxX: st.Page.MinX + (w-sa.Right)/zoom,
		MaxY: st.Page.MinY + (h-sa.Bottom)/zoom,
	}
	dx := panDelta(safe.MinX, safe.MaxX, target.MinX, target.MaxX)
	dy := panDelta(safe.MinY, safe.MaxY, target.MinY, target.MaxY)

	return Camera{X: st.Camera.X + dx, Y: st.Camera.Y + dy, Zoom: zoom}
}

// panDelta is the smallest shift of [safeMin, safeMax] that brings
// [tMin, tMax] inside it. When the target is larger than the safe span
// its leading edge is aligned with the safe minimum.
func panDelta(safeMin, safeMax, tMin, tMax float64) float64 {
	switch {
	case tMin < safeMin:
		return tMin - safeMin
	case tMax > safeMax:
		return math.Min(tMax-safeMax, tMin-safeMin)
	default:
		return 0
	}
}
