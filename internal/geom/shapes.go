package geom

import "math"

// Shape is the capability set a chunk footprint must provide. Rect and Box
// both satisfy it; level containers and generators are parameterized over
// it rather than over a concrete dimensionality.
//
// Contains uses inclusive comparisons: a shape contains another shape that
// only touches its boundary. Intersects uses strict comparisons: two shapes
// whose boundaries touch do not intersect. The asymmetry is deliberate —
// it is what lets adjacent chunks share a wall without counting as
// overlapping. A zero-extent shape can be contained but never intersects
// anything, itself included.
type Shape[S any] interface {
	Contains(S) bool
	Intersects(S) bool
	ContainsPoint(Vec) bool
	Translate(Vec) S
	RotateQuarter(int) S
	Degenerate() bool
}

// Rect is an axis-aligned rectangle: position of the min corner plus
// non-negative extents.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NewRect builds a rectangle from a min corner and extents.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Contains reports whether o lies entirely within r, boundaries included.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// Intersects reports whether r and o overlap with non-zero area.
// Edge-touching rectangles do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// ContainsPoint reports whether p lies within r, boundary included.
func (r Rect) ContainsPoint(p Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Degenerate reports whether r has no usable area.
func (r Rect) Degenerate() bool {
	return r.W <= 0 || r.H <= 0
}

// Translate returns r moved by d. The Z component of d is ignored.
func (r Rect) Translate(d Vec) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// RotateQuarter rotates r counterclockwise around the origin by the given
// number of quarter turns. The result is again axis-aligned.
func (r Rect) RotateQuarter(turns int) Rect {
	a := Vec{X: r.X, Y: r.Y}.RotateQuarter(turns)
	b := Vec{X: r.X + r.W, Y: r.Y + r.H}.RotateQuarter(turns)
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// Box is an axis-aligned box: position of the min corner plus non-negative
// extents.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
	H float64 `json:"h"`
	D float64 `json:"d"`
}

// NewBox builds a box from a min corner and extents.
func NewBox(x, y, z, w, h, d float64) Box {
	return Box{X: x, Y: y, Z: z, W: w, H: h, D: d}
}

// Contains reports whether o lies entirely within b, boundaries included.
func (b Box) Contains(o Box) bool {
	return o.X >= b.X && o.Y >= b.Y && o.Z >= b.Z &&
		o.X+o.W <= b.X+b.W && o.Y+o.H <= b.Y+b.H && o.Z+o.D <= b.Z+b.D
}

// Intersects reports whether b and o overlap with non-zero volume.
// Face-touching boxes do not intersect.
func (b Box) Intersects(o Box) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W &&
		b.Y < o.Y+o.H && o.Y < b.Y+b.H &&
		b.Z < o.Z+o.D && o.Z < b.Z+b.D
}

// ContainsPoint reports whether p lies within b, boundary included.
func (b Box) ContainsPoint(p Vec) bool {
	return p.X >= b.X && p.X <= b.X+b.W &&
		p.Y >= b.Y && p.Y <= b.Y+b.H &&
		p.Z >= b.Z && p.Z <= b.Z+b.D
}

// Degenerate reports whether b has no usable volume.
func (b Box) Degenerate() bool {
	return b.W <= 0 || b.H <= 0 || b.D <= 0
}

// Translate returns b moved by d.
func (b Box) Translate(d Vec) Box {
	return Box{X: b.X + d.X, Y: b.Y + d.Y, Z: b.Z + d.Z, W: b.W, H: b.H, D: b.D}
}

// RotateQuarter rotates b counterclockwise around the Z axis by the given
// number of quarter turns. Depth and vertical position are unchanged.
func (b Box) RotateQuarter(turns int) Box {
	a := Vec{X: b.X, Y: b.Y}.RotateQuarter(turns)
	c := Vec{X: b.X + b.W, Y: b.Y + b.H}.RotateQuarter(turns)
	return Box{
		X: math.Min(a.X, c.X),
		Y: math.Min(a.Y, c.Y),
		Z: b.Z,
		W: math.Abs(a.X - c.X),
		H: math.Abs(a.Y - c.Y),
		D: b.D,
	}
}
