package layout

import "strings"

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Dimensions is the output of ResolveDimensions. Layout and Generation are
// always equal; they are kept separate so callers state which one they mean.
type Dimensions struct {
	Layout     Size `json:"layout"`
	Generation Size `json:"generation"`
	Multiplier int  `json:"multiplier"`
}

const (
	DefaultAspectRatio = "1:1"
	DefaultQuality     = "standard"
)

// Base pixel sizes per aspect ratio (2K class), widest first.
var baseResolutions = map[string]Size{
	"16:9": {2560, 1440},
	"4:3":  {2304, 1728},
	"3:2":  {2400, 1600},
	"1:1":  {2048, 2048},
	"2:3":  {1600, 2400},
	"3:4":  {1728, 2304},
	"9:16": {1440, 2560},
}

// AspectRatios lists the supported aspect ratio keys, widest first.
var AspectRatios = []string{"16:9", "4:3", "3:2", "1:1", "2:3", "3:4", "9:16"}

var qualityMultipliers = map[string]int{
	"standard": 1,
	"2k":       1,
	"high":     2,
	"4k":       2,
}

// Qualities lists the canonical quality tier names.
var Qualities = []string{"standard", "high"}

// BaseSize returns the tier-1 pixel size for an aspect ratio and whether the
// key was recognised.
func BaseSize(aspectRatio string) (Size, bool) {
	s, ok := baseResolutions[strings.TrimSpace(aspectRatio)]
	return s, ok
}

// Multiplier returns the scale factor for a quality tier and whether the
// tier was recognised.
func Multiplier(quality string) (int, bool) {
	m, ok := qualityMultipliers[strings.ToLower(strings.TrimSpace(quality))]
	return m, ok
}

// ResolveDimensions maps an aspect ratio key and quality tier to concrete
// pixel sizes. Unknown ratios resolve to 1:1 and unknown tiers to a
// multiplier of 1; it never fails.
func ResolveDimensions(aspectRatio, quality string) Dimensions {
	base, ok := BaseSize(aspectRatio)
	if !ok {
		base = baseResolutions[DefaultAspectRatio]
	}
	mult, ok := Multiplier(quality)
	if !ok || mult < 1 {
		mult = 1
	}
	size := Size{Width: base.Width * float64(mult), Height: base.Height * float64(mult)}
	return Dimensions{Layout: size, Generation: size, Multiplier: mult}
}
