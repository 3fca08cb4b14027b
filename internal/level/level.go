package level

import (
	"fmt"
	"slices"

	"github.com/levelforge/server/internal/geom"
)

// Level is the generated structure: chunks in insertion order plus the
// derived open-context and open-chunk views. It assumes a single writer;
// the generator and post-processing policies mutate it sequentially and
// the surrounding application reads it afterwards.
type Level[S geom.Shape[S]] struct {
	chunks []*Chunk[S]
}

// New creates an empty level.
func New[S geom.Shape[S]]() *Level[S] {
	return &Level[S]{}
}

// Len returns the number of chunks currently placed.
func (l *Level[S]) Len() int {
	return len(l.chunks)
}

// Chunks returns a snapshot of all placed chunks in insertion order.
func (l *Level[S]) Chunks() []*Chunk[S] {
	out := make([]*Chunk[S], len(l.chunks))
	copy(out, l.chunks)
	return out
}

// AddChunk inserts a chunk. The caller guarantees the chunk does not
// overlap anything already placed; overlap testing is the generator's job.
func (l *Level[S]) AddChunk(c *Chunk[S]) {
	l.chunks = append(l.chunks, c)
}

// Attach closes both sides of a connection: the open target context on a
// placed chunk and the matching context on the newly placed chunk. The
// pairing is kept so the connection stays traversable.
func (l *Level[S]) Attach(target, candidate *Context[S]) {
	target.open = false
	candidate.open = false
	target.partner = candidate
	candidate.partner = target
}

// CloseContext marks a context permanently closed without a partner,
// leaving a dangling dead end for post-processing to reconcile.
func (l *Level[S]) CloseContext(ctx *Context[S]) error {
	if !l.owns(ctx) {
		return fmt.Errorf("close context at %v: %w", ctx.Position, ErrNotFound)
	}
	ctx.open = false
	return nil
}

// RemoveChunk removes a chunk and cascades: its contexts leave every
// index, and any context on a neighboring chunk that was attached to it is
// reopened. Reopening keeps the invariant that a closed context always has
// a partner chunk present in the level.
func (l *Level[S]) RemoveChunk(c *Chunk[S]) error {
	idx := slices.Index(l.chunks, c)
	if idx < 0 {
		return fmt.Errorf("remove chunk %q: %w", c.Tag, ErrNotFound)
	}
	l.chunks = slices.Delete(l.chunks, idx, idx+1)

	for _, ctx := range c.contexts {
		if p := ctx.partner; p != nil {
			p.partner = nil
			p.open = true
		}
		ctx.partner = nil
		ctx.open = false
		ctx.owner = nil
	}
	c.contexts = nil
	return nil
}

// RemoveContext removes a single context from its owning chunk, dropping
// it from every index. Returns ErrNotFound if the context's owner is not
// in the level or no longer holds it.
func (l *Level[S]) RemoveContext(ctx *Context[S]) error {
	if !l.owns(ctx) {
		return fmt.Errorf("remove context at %v: %w", ctx.Position, ErrNotFound)
	}
	owner := ctx.owner
	idx := slices.Index(owner.contexts, ctx)
	owner.contexts = slices.Delete(owner.contexts, idx, idx+1)
	if p := ctx.partner; p != nil {
		p.partner = nil
		p.open = true
	}
	ctx.partner = nil
	ctx.open = false
	ctx.owner = nil
	return nil
}

// FindOpenContexts returns a fresh snapshot of every open context, ordered
// by chunk insertion order and then per-chunk context order. Later level
// mutation does not affect an already returned snapshot slice.
func (l *Level[S]) FindOpenContexts() []*Context[S] {
	var out []*Context[S]
	for _, c := range l.chunks {
		for _, ctx := range c.contexts {
			if ctx.open {
				out = append(out, ctx)
			}
		}
	}
	return out
}

// FindOpenChunks returns a fresh snapshot of every chunk with at least one
// open context, in insertion order.
func (l *Level[S]) FindOpenChunks() []*Chunk[S] {
	var out []*Chunk[S]
	for _, c := range l.chunks {
		if c.HasOpenContext() {
			out = append(out, c)
		}
	}
	return out
}

// owns reports whether ctx currently belongs to a chunk in the level.
func (l *Level[S]) owns(ctx *Context[S]) bool {
	if ctx == nil || ctx.owner == nil {
		return false
	}
	if !slices.Contains(l.chunks, ctx.owner) {
		return false
	}
	return slices.Contains(ctx.owner.contexts, ctx)
}
