package geom

import "math"

// Box is an axis-aligned bounding box in page (or screen) units.
// It is a value type; every operation returns a new Box.
type Box struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// FromRect builds a Box from an origin and a size.
func FromRect(x, y, w, h float64) Box {
	return Box{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }

func (b Box) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }
func (b Box) CenterY() float64 { return (b.MinY + b.MaxY) / 2 }

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Union returns the smallest box containing both a and b.
func (b Box) Union(o Box) Box {
	return Box{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Overlaps reports whether the interiors of the two boxes intersect.
// Boxes that only share an edge do not overlap.
func (b Box) Overlaps(o Box) bool {
	return b.MinX < o.MaxX && b.MaxX > o.MinX &&
		b.MinY < o.MaxY && b.MaxY > o.MinY
}

// Contains reports whether o lies entirely inside b (edges inclusive).
func (b Box) Contains(o Box) bool {
	return b.ContainsWithin(o, 0)
}

// ContainsWithin is Contains with every edge of b pushed outwards by tol.
func (b Box) ContainsWithin(o Box, tol float64) bool {
	return o.MinX >= b.MinX-tol && o.MaxX <= b.MaxX+tol &&
		o.MinY >= b.MinY-tol && o.MaxY <= b.MaxY+tol
}

// VerticalOverlap returns the length of the overlap between the box's
// vertical extent and [minY, maxY), or 0 when they are disjoint.
func (b Box) VerticalOverlap(minY, maxY float64) float64 {
	return math.Max(0, math.Min(b.MaxY, maxY)-math.Max(b.MinY, minY))
}

// Translate moves the box by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	return Box{MinX: b.MinX + dx, MinY: b.MinY + dy, MaxX: b.MaxX + dx, MaxY: b.MaxY + dy}
}

// Inset shrinks the box by the given amount on each side. Negative values grow it.
func (b Box) Inset(top, left, bottom, right float64) Box {
	return Box{MinX: b.MinX + left, MinY: b.MinY + top, MaxX: b.MaxX - right, MaxY: b.MaxY - bottom}
}
