package geom

import "fmt"

// Direction is a discrete outward-facing direction for a connection point.
// East/North/West/South lie in the XY plane (the order matters: each step
// is one counterclockwise quarter turn). Up and Down are along Z and are
// unaffected by quarter-turn rotation.
type Direction int

const (
	East Direction = iota
	North
	West
	South
	Up
	Down
)

var directionNames = [...]string{"east", "north", "west", "south", "up", "down"}

var directionVectors = [...]Vec{
	{X: 1}, {Y: 1}, {X: -1}, {Y: -1}, {Z: 1}, {Z: -1},
}

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	if d < East || d > Down {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d is one of the six defined directions.
func (d Direction) Valid() bool {
	return d >= East && d <= Down
}

// Vector returns the unit vector for the direction.
func (d Direction) Vector() Vec {
	return directionVectors[d]
}

// Horizontal reports whether d lies in the XY plane.
func (d Direction) Horizontal() bool {
	return d >= East && d <= South
}

// Opposite returns the direction facing the other way.
func (d Direction) Opposite() Direction {
	if d.Horizontal() {
		return (d + 2) % 4
	}
	if d == Up {
		return Down
	}
	return Up
}

// RotateQuarter rotates a horizontal direction counterclockwise by the
// given number of quarter turns. Up and Down are returned unchanged.
func (d Direction) RotateQuarter(turns int) Direction {
	if !d.Horizontal() {
		return d
	}
	return Direction((((int(d)+turns)%4)+4)%4)
}

// TurnsTo returns the number of counterclockwise quarter turns that rotate
// d onto target, and whether such a rotation exists. Vertical directions
// cannot be rotated: they align only with themselves (zero turns).
func (d Direction) TurnsTo(target Direction) (int, bool) {
	if d.Horizontal() != target.Horizontal() {
		return 0, false
	}
	if !d.Horizontal() {
		if d == target {
			return 0, true
		}
		return 0, false
	}
	return (((int(target) - int(d)) % 4) + 4) % 4, true
}

// ParseDirection converts a lowercase direction name back to a Direction.
func ParseDirection(name string) (Direction, error) {
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", name)
}
