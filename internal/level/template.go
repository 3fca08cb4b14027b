package level

import (
	"fmt"

	"github.com/levelforge/server/internal/geom"
)

// ContextDef describes a connection point relative to a template's origin:
// where it sits on the boundary, which way it faces outward, and an
// arbitrary tag used for compatibility matching.
type ContextDef struct {
	Offset geom.Vec       `json:"offset"`
	Dir    geom.Direction `json:"dir"`
	Tag    string         `json:"tag,omitempty"`
}

// Template is an immutable chunk blueprint: a footprint shape authored at
// the origin, the relative connection points on its boundary, a tag, and a
// weight used for catalog sampling. Rotatable templates may be placed in
// any of the four quarter-turn orientations.
type Template[S geom.Shape[S]] struct {
	Tag       string
	Weight    float64
	Shape     S
	Contexts  []ContextDef
	Rotatable bool
}

// Validate checks the template for configuration errors that would make
// generation meaningless: negative weight or an invalid context direction.
func (t Template[S]) Validate() error {
	if t.Weight < 0 {
		return fmt.Errorf("%w: template %q has negative weight %v", ErrInvalidArgument, t.Tag, t.Weight)
	}
	if t.Shape.Degenerate() {
		return fmt.Errorf("%w: template %q has degenerate geometry", ErrInvalidArgument, t.Tag)
	}
	for i, def := range t.Contexts {
		if !def.Dir.Valid() {
			return fmt.Errorf("%w: template %q context %d has invalid direction", ErrInvalidArgument, t.Tag, i)
		}
	}
	return nil
}
