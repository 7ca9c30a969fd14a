package viewport

import (
	"encoding/json"
	"math"
	"time"

	"infinicanvas/internal/geom"
)

// Camera maps page space to screen space: page = (X, Y) + screen/Zoom,
// with screen coordinates measured from the viewport's top-left corner.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// PageBounds returns the page-space rectangle visible through a viewport of
// the given screen size.
func (c Camera) PageBounds(screenW, screenH float64) geom.Box {
	return geom.Box{MinX: c.X, MinY: c.Y, MaxX: c.X + screenW/c.Zoom, MaxY: c.Y + screenH/c.Zoom}
}

// Lerp interpolates between two cameras; t is clamped to [0, 1].
func Lerp(from, to Camera, t float64) Camera {
	t = math.Max(0, math.Min(1, t))
	return Camera{
		X:    from.X + (to.X-from.X)*t,
		Y:    from.Y + (to.Y-from.Y)*t,
		Zoom: from.Zoom + (to.Zoom-from.Zoom)*t,
	}
}

// SafeArea holds screen-pixel margins taken up by UI chrome.
type SafeArea struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// SafeAreaConfig is the configured chrome layout. The right margin grows
// while the companion panel is open.
type SafeAreaConfig struct {
	Top            float64 `toml:"top" json:"top"`
	Left           float64 `toml:"left" json:"left"`
	Bottom         float64 `toml:"bottom" json:"bottom"`
	Right          float64 `toml:"right" json:"right"`
	RightPanelOpen float64 `toml:"right_panel_open" json:"rightPanelOpen"`
}

func DefaultSafeAreaConfig() SafeAreaConfig {
	return SafeAreaConfig{Top: 64, Left: 72, Bottom: 120, Right: 24, RightPanelOpen: 420}
}

// ForPanel returns the margins for the given panel state.
func (c SafeAreaConfig) ForPanel(open bool) SafeArea {
	right := c.Right
	if open {
		right = c.RightPanelOpen
	}
	return SafeArea{Top: c.Top, Left: c.Left, Bottom: c.Bottom, Right: right}
}

type Easing string

const (
	EaseLinear     Easing = "linear"
	EaseOutQuad    Easing = "easeOutQuad"
	EaseOutCubic   Easing = "easeOutCubic"
	EaseInOutCubic Easing = "easeInOutCubic"
)

const (
	DefaultEasing   = EaseOutCubic
	DefaultDuration = 500 * time.Millisecond
)

// Func returns the easing curve. Unknown names use ease-out cubic.
func (e Easing) Func() func(float64) float64 {
	switch e {
	case EaseLinear:
		return func(t float64) float64 { return t }
	case EaseOutQuad:
		return func(t float64) float64 { return 1 - (1-t)*(1-t) }
	case EaseInOutCubic:
		return func(t float64) float64 {
			if t < 0.5 {
				return 4 * t * t * t
			}
			return 1 - math.Pow(-2*t+2, 3)/2
		}
	default:
		return func(t float64) float64 { return 1 - math.Pow(1-t, 3) }
	}
}

// Transition is a proposed camera move. Hosts with native animation play it
// directly; others drive it with an Animator.
type Transition struct {
	Camera   Camera        `json:"camera"`
	Duration time.Duration `json:"-"`
	Easing   Easing        `json:"easing"`
}

// DurationMS is the duration in milliseconds, for JSON consumers.
func (t Transition) DurationMS() int64 {
	return t.Duration.Milliseconds()
}

type transitionJSON struct {
	Camera     Camera `json:"camera"`
	DurationMS int64  `json:"durationMs"`
	Easing     Easing `json:"easing"`
}

func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal(transitionJSON{Camera: t.Camera, DurationMS: t.DurationMS(), Easing: t.Easing})
}

func (t *Transition) UnmarshalJSON(data []byte) error {
	var v transitionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Transition{Camera: v.Camera, Duration: time.Duration(v.DurationMS) * time.Millisecond, Easing: v.Easing}
	return nil
}
