package levelgen

import (
	"fmt"

	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
)

// Policy is a cleanup pass run over a finished level. Policies run
// sequentially after generation halts, each to its own fixpoint.
type Policy[S geom.Shape[S]] interface {
	Process(g *Generator[S], lvl *level.Level[S]) error
}

// DiscardOpenContexts removes open contexts the predicate accepts,
// rescanning until a full pass removes nothing. A nil predicate discards
// every open context: silently leaving dangling ends is worse than
// trimming them.
type DiscardOpenContexts[S geom.Shape[S]] struct {
	ShouldDiscard func(*level.Context[S]) bool
}

// Process runs the fixpoint pass. The generator is used for reporting
// only; a nil generator or level is an invalid argument.
func (p DiscardOpenContexts[S]) Process(g *Generator[S], lvl *level.Level[S]) error {
	if g == nil || lvl == nil {
		return fmt.Errorf("discard open contexts: %w", level.ErrInvalidArgument)
	}
	discard := p.ShouldDiscard
	if discard == nil {
		discard = func(*level.Context[S]) bool { return true }
	}

	for {
		removed := 0
		for _, ctx := range lvl.FindOpenContexts() {
			if !discard(ctx) {
				continue
			}
			pos, dir := ctx.Position, ctx.Dir
			if err := lvl.RemoveContext(ctx); err != nil {
				return fmt.Errorf("discard open contexts: %w", err)
			}
			g.Logger().Printf("removed open context at %v facing %v", pos, dir)
			removed++
		}
		if removed == 0 {
			return nil
		}
	}
}

// DiscardOpenChunks removes chunks that still have an open context,
// rescanning until a full pass removes nothing. Removing a chunk reopens
// the contexts of its neighbors, so a pass can expose new open chunks for
// the next one; the chunk count strictly shrinks, so the loop converges.
// A nil predicate discards every open chunk.
type DiscardOpenChunks[S geom.Shape[S]] struct {
	ShouldDiscard func(*level.Chunk[S]) bool
}

// Process runs the fixpoint pass. The generator is used for reporting
// only; a nil generator or level is an invalid argument.
func (p DiscardOpenChunks[S]) Process(g *Generator[S], lvl *level.Level[S]) error {
	if g == nil || lvl == nil {
		return fmt.Errorf("discard open chunks: %w", level.ErrInvalidArgument)
	}
	discard := p.ShouldDiscard
	if discard == nil {
		discard = func(*level.Chunk[S]) bool { return true }
	}

	for {
		removed := 0
		for _, chunk := range lvl.FindOpenChunks() {
			if !discard(chunk) {
				continue
			}
			tag, shape := chunk.Tag, chunk.Shape()
			if err := lvl.RemoveChunk(chunk); err != nil {
				return fmt.Errorf("discard open chunks: %w", err)
			}
			g.Logger().Printf("removed open chunk %q at %+v", tag, shape)
			removed++
		}
		if removed == 0 {
			return nil
		}
	}
}
