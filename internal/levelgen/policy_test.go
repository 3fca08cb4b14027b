package levelgen

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/levelforge/server/internal/catalog"
	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
)

func generateTestLevel(t *testing.T, seed int64, target int) (*Generator[geom.Rect], *level.Level[geom.Rect]) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TargetChunks = target
	gen := newTestGenerator(t, catalog.NewMemory(squareTemplate()), seed, cfg)
	lvl, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	return gen, lvl
}

func TestPoliciesRejectNilArguments(t *testing.T) {
	gen, lvl := generateTestLevel(t, 1, 3)

	tests := []struct {
		name string
		run  func() error
	}{
		{"contexts nil level", func() error {
			return DiscardOpenContexts[geom.Rect]{}.Process(gen, nil)
		}},
		{"contexts nil generator", func() error {
			return DiscardOpenContexts[geom.Rect]{}.Process(nil, lvl)
		}},
		{"chunks nil level", func() error {
			return DiscardOpenChunks[geom.Rect]{}.Process(gen, nil)
		}},
		{"chunks nil generator", func() error {
			return DiscardOpenChunks[geom.Rect]{}.Process(nil, lvl)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, level.ErrInvalidArgument) {
				t.Errorf("Process() = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestDiscardOpenContextsIsIdempotent(t *testing.T) {
	gen, lvl := generateTestLevel(t, 8, 6)
	policy := DiscardOpenContexts[geom.Rect]{}

	if err := policy.Process(gen, lvl); err != nil {
		t.Fatalf("first Process() failed: %v", err)
	}
	open := len(lvl.FindOpenContexts())
	chunks := lvl.Len()

	if err := policy.Process(gen, lvl); err != nil {
		t.Fatalf("second Process() failed: %v", err)
	}
	if got := len(lvl.FindOpenContexts()); got != open {
		t.Errorf("second pass changed open contexts: %d -> %d", open, got)
	}
	if lvl.Len() != chunks {
		t.Errorf("second pass changed chunk count: %d -> %d", chunks, lvl.Len())
	}
	if open != 0 {
		t.Errorf("default predicate left %d open contexts", open)
	}
}

func TestDiscardOpenContextsPredicate(t *testing.T) {
	gen, lvl := generateTestLevel(t, 8, 6)
	before := len(lvl.FindOpenContexts())
	if before == 0 {
		t.Fatal("test level has no open frontier")
	}

	// Keep everything: the pass must converge without removing a thing.
	keep := DiscardOpenContexts[geom.Rect]{
		ShouldDiscard: func(*level.Context[geom.Rect]) bool { return false },
	}
	if err := keep.Process(gen, lvl); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if got := len(lvl.FindOpenContexts()); got != before {
		t.Errorf("keep-all predicate removed contexts: %d -> %d", before, got)
	}

	// Discard only west-facing ends.
	west := DiscardOpenContexts[geom.Rect]{
		ShouldDiscard: func(ctx *level.Context[geom.Rect]) bool { return ctx.Dir == geom.West },
	}
	if err := west.Process(gen, lvl); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	for _, ctx := range lvl.FindOpenContexts() {
		if ctx.Dir == geom.West {
			t.Errorf("west-facing context at %+v survived the discard pass", ctx.Position)
		}
	}
}

func TestDiscardOpenChunksCascades(t *testing.T) {
	// A chain of rooms: every chunk except possibly interior ones has an
	// open context, and removing one reopens its neighbor, so the default
	// predicate unravels the whole chain.
	gen, lvl := generateTestLevel(t, 4, 6)

	policy := DiscardOpenChunks[geom.Rect]{}
	if err := policy.Process(gen, lvl); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	if got := len(lvl.FindOpenChunks()); got != 0 {
		t.Errorf("open chunks after discard = %d, want 0", got)
	}
	if got := lvl.Len(); got != 0 {
		t.Errorf("chain of square rooms should unravel entirely, %d chunks left", got)
	}

	// Fixpoint: a second run is a no-op.
	if err := policy.Process(gen, lvl); err != nil {
		t.Fatalf("second Process() failed: %v", err)
	}
	if lvl.Len() != 0 {
		t.Errorf("second pass resurrected chunks: %d", lvl.Len())
	}
}

func TestDiscardOpenChunksKeepsClosedCore(t *testing.T) {
	gen, lvl := generateTestLevel(t, 4, 6)

	// Close the frontier first; then no chunk is open and the chunk
	// discard pass must leave the level alone.
	if err := (DiscardOpenContexts[geom.Rect]{}).Process(gen, lvl); err != nil {
		t.Fatalf("context discard failed: %v", err)
	}
	before := lvl.Len()

	if err := (DiscardOpenChunks[geom.Rect]{}).Process(gen, lvl); err != nil {
		t.Fatalf("chunk discard failed: %v", err)
	}
	if lvl.Len() != before {
		t.Errorf("chunk discard removed %d chunks from a closed level", before-lvl.Len())
	}
}

func TestPoliciesComposeSequentially(t *testing.T) {
	gen, lvl := generateTestLevel(t, 12, 8)

	policies := []Policy[geom.Rect]{
		DiscardOpenChunks[geom.Rect]{ShouldDiscard: func(c *level.Chunk[geom.Rect]) bool {
			// Only prune single-connection leaves.
			open := 0
			for range c.OpenContexts() {
				open++
			}
			return open >= 3
		}},
		DiscardOpenContexts[geom.Rect]{},
	}

	for _, p := range policies {
		if err := p.Process(gen, lvl); err != nil {
			t.Fatalf("Process() failed: %v", err)
		}
	}
	if got := len(lvl.FindOpenContexts()); got != 0 {
		t.Errorf("open contexts after composed policies = %d, want 0", got)
	}
}

// Guard against accidental reliance on shared global rand state.
func TestGeneratorsDoNotShareState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetChunks = 6
	cfg.Logger = quietLogger()

	a, err := New(catalog.Default(), rand.New(rand.NewSource(21)), cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	b, err := New(catalog.Default(), rand.New(rand.NewSource(21)), cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	la, _ := a.Generate()
	lb, _ := b.Generate()
	if la.Len() != lb.Len() {
		t.Errorf("identically seeded generators produced %d vs %d chunks", la.Len(), lb.Len())
	}
}
