package level

import (
	"iter"

	"github.com/levelforge/server/internal/geom"
)

// Context is a directed connection point on a chunk's boundary. It is
// created open when its owning chunk is instantiated, closed when another
// chunk attaches to it, and destroyed with its owner. All state changes
// route through the Level so the open indices stay consistent.
type Context[S geom.Shape[S]] struct {
	Position geom.Vec
	Dir      geom.Direction
	Tag      string

	owner   *Chunk[S]
	partner *Context[S]
	open    bool
}

// Open reports whether the context is still waiting for a partner.
func (c *Context[S]) Open() bool {
	return c.open
}

// Owner returns the chunk the context belongs to, or nil after the chunk
// has been removed.
func (c *Context[S]) Owner() *Chunk[S] {
	return c.owner
}

// Partner returns the context on the neighboring chunk this context was
// attached to, or nil while the context is open or dangling.
func (c *Context[S]) Partner() *Context[S] {
	return c.partner
}

// Chunk is a placed, transformed instance of a template. It owns its
// world-space footprint and its contexts.
type Chunk[S geom.Shape[S]] struct {
	Tag string

	shape    S
	contexts []*Context[S]
}

// NewChunk instantiates a template with a placement transform: a
// counterclockwise quarter-turn rotation about the origin followed by a
// translation. Every context starts open.
func NewChunk[S geom.Shape[S]](tpl Template[S], turns int, offset geom.Vec) *Chunk[S] {
	chunk := &Chunk[S]{
		Tag:   tpl.Tag,
		shape: tpl.Shape.RotateQuarter(turns).Translate(offset),
	}
	for _, def := range tpl.Contexts {
		chunk.contexts = append(chunk.contexts, &Context[S]{
			Position: def.Offset.RotateQuarter(turns).Add(offset),
			Dir:      def.Dir.RotateQuarter(turns),
			Tag:      def.Tag,
			owner:    chunk,
			open:     true,
		})
	}
	return chunk
}

// Shape returns the chunk's world-space footprint.
func (c *Chunk[S]) Shape() S {
	return c.shape
}

// Contexts returns a snapshot of the chunk's contexts, open and closed.
func (c *Chunk[S]) Contexts() []*Context[S] {
	out := make([]*Context[S], len(c.contexts))
	copy(out, c.contexts)
	return out
}

// OpenContexts yields the chunk's currently open contexts in definition
// order. The sequence is restartable; it re-reads the live state on each
// range.
func (c *Chunk[S]) OpenContexts() iter.Seq[*Context[S]] {
	return func(yield func(*Context[S]) bool) {
		for _, ctx := range c.contexts {
			if ctx.open && !yield(ctx) {
				return
			}
		}
	}
}

// HasOpenContext reports whether the chunk still has at least one open
// connection point.
func (c *Chunk[S]) HasOpenContext() bool {
	for _, ctx := range c.contexts {
		if ctx.open {
			return true
		}
	}
	return false
}
