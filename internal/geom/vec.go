package geom

// Vec represents a point or offset in level space.
// 2D levels use X and Y only; Z stays zero.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Add returns the component-wise sum of v and o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference of v and o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// RotateQuarter rotates v counterclockwise around the Z axis by the given
// number of quarter turns. Negative turns rotate clockwise. Z is unchanged.
func (v Vec) RotateQuarter(turns int) Vec {
	switch ((turns % 4) + 4) % 4 {
	case 1:
		return Vec{X: -v.Y, Y: v.X, Z: v.Z}
	case 2:
		return Vec{X: -v.X, Y: -v.Y, Z: v.Z}
	case 3:
		return Vec{X: v.Y, Y: -v.X, Z: v.Z}
	default:
		return v
	}
}
