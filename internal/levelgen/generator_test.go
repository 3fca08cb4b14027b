package levelgen

import (
	"bytes"
	"errors"
	"io"
	"log"
	"math/rand"
	"testing"

	"github.com/levelforge/server/internal/catalog"
	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
)

func quietLogger() Logger {
	return log.New(io.Discard, "", 0)
}

// squareTemplate is a 10x10 room with a context on each wall, the
// single-template catalog used by the deterministic scenarios.
func squareTemplate() level.Template[geom.Rect] {
	return level.Template[geom.Rect]{
		Tag:    "room",
		Weight: 1,
		Shape:  geom.NewRect(0, 0, 10, 10),
		Contexts: []level.ContextDef{
			{Offset: geom.Vec{X: 10, Y: 5}, Dir: geom.East},
			{Offset: geom.Vec{X: 5, Y: 10}, Dir: geom.North},
			{Offset: geom.Vec{X: 0, Y: 5}, Dir: geom.West},
			{Offset: geom.Vec{X: 5, Y: 0}, Dir: geom.South},
		},
	}
}

func newTestGenerator(t *testing.T, cat Catalog[geom.Rect], seed int64, cfg Config) *Generator[geom.Rect] {
	t.Helper()
	cfg.Logger = quietLogger()
	gen, err := New(cat, rand.New(rand.NewSource(seed)), cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return gen
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	src := rand.New(rand.NewSource(1))
	square := catalog.NewMemory(squareTemplate())

	tests := []struct {
		name string
		cat  Catalog[geom.Rect]
		src  Source
		cfg  Config
	}{
		{"nil catalog", nil, src, DefaultConfig()},
		{"nil source", square, nil, DefaultConfig()},
		{"empty catalog", catalog.NewMemory[geom.Rect](), src, DefaultConfig()},
		{"degenerate template", catalog.NewMemory(level.Template[geom.Rect]{
			Tag: "flat", Weight: 1, Shape: geom.NewRect(0, 0, 0, 5),
		}), src, DefaultConfig()},
		{"negative budget", square, src, Config{RetryBudget: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cat, tt.src, tt.cfg)
			if !errors.Is(err, level.ErrInvalidArgument) {
				t.Errorf("New() = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestAlignments(t *testing.T) {
	corridor := level.Template[geom.Rect]{
		Tag:       "corridor",
		Weight:    1,
		Rotatable: true,
		Shape:     geom.NewRect(0, 0, 10, 4),
		Contexts: []level.ContextDef{
			{Offset: geom.Vec{X: 0, Y: 2}, Dir: geom.West},
			{Offset: geom.Vec{X: 10, Y: 2}, Dir: geom.East},
		},
	}

	// An open context facing east at (10,5).
	host := level.NewChunk(squareTemplate(), 0, geom.Vec{})
	target := host.Contexts()[0]

	got := alignments(corridor, target)
	if len(got) != 2 {
		t.Fatalf("alignments() returned %d candidates, want 2", len(got))
	}

	for _, p := range got {
		chunk := level.NewChunk(p.tpl, p.turns, p.offset)
		ctx := chunk.Contexts()[p.ctx]
		if ctx.Position != target.Position {
			t.Errorf("candidate context at %+v, want %+v", ctx.Position, target.Position)
		}
		if ctx.Dir != target.Dir.Opposite() {
			t.Errorf("candidate context facing %v, want %v", ctx.Dir, target.Dir.Opposite())
		}
		if chunk.Shape().Intersects(host.Shape()) {
			t.Errorf("aligned candidate %+v overlaps its host", chunk.Shape())
		}
	}
}

func TestAlignmentsRespectsRotatableAndTags(t *testing.T) {
	host := level.NewChunk(squareTemplate(), 0, geom.Vec{})
	target := host.Contexts()[0] // east

	fixed := squareTemplate()
	fixed.Rotatable = false
	if got := alignments(fixed, target); len(got) != 1 {
		t.Errorf("non-rotatable square yields %d candidates, want 1 (its west context)", len(got))
	}

	tagged := squareTemplate()
	for i := range tagged.Contexts {
		tagged.Contexts[i].Tag = "window"
	}
	doorHost := squareTemplate()
	for i := range doorHost.Contexts {
		doorHost.Contexts[i].Tag = "door"
	}
	doorTarget := level.NewChunk(doorHost, 0, geom.Vec{}).Contexts()[0]
	if got := alignments(tagged, doorTarget); len(got) != 0 {
		t.Errorf("mismatched tags yield %d candidates, want 0", len(got))
	}
}

func TestWeightedOrder(t *testing.T) {
	tpls := []level.Template[geom.Rect]{
		{Tag: "heavy", Weight: 1, Shape: geom.NewRect(0, 0, 4, 4)},
		{Tag: "never", Weight: 0, Shape: geom.NewRect(0, 0, 4, 4)},
	}
	gen := newTestGenerator(t, catalog.NewMemory(squareTemplate()), 7, DefaultConfig())

	order := gen.weightedOrder(tpls)
	if len(order) != 2 || order[0] != 0 || order[1] != 1 {
		t.Errorf("weightedOrder = %v, want [0 1] (all weight on the first template)", order)
	}
}

func TestGenerateReachesTargetWithoutOverlap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetChunks = 25
	cfg.RetryBudget = 200
	gen := newTestGenerator(t, catalog.Default(), 42, cfg)

	lvl, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if lvl.Len() == 0 {
		t.Fatal("Generate() produced an empty level")
	}

	chunks := lvl.Chunks()
	for i := range chunks {
		for j := i + 1; j < len(chunks); j++ {
			if chunks[i].Shape().Intersects(chunks[j].Shape()) {
				t.Errorf("chunks %d and %d overlap: %+v vs %+v",
					i, j, chunks[i].Shape(), chunks[j].Shape())
			}
		}
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	run := func(seed int64) []geom.Rect {
		cfg := DefaultConfig()
		cfg.TargetChunks = 15
		cfg.Select = SelectRandom
		gen := newTestGenerator(t, catalog.Default(), seed, cfg)
		lvl, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		shapes := make([]geom.Rect, 0, lvl.Len())
		for _, c := range lvl.Chunks() {
			shapes = append(shapes, c.Shape())
		}
		return shapes
	}

	a := run(99)
	b := run(99)
	if len(a) != len(b) {
		t.Fatalf("same seed produced %d vs %d chunks", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between identically seeded runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateClosesBothSidesOfAttachment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetChunks = 5
	gen := newTestGenerator(t, catalog.NewMemory(squareTemplate()), 3, cfg)

	lvl, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if lvl.Len() != 5 {
		t.Fatalf("level has %d chunks, want 5", lvl.Len())
	}

	attachments := 0
	for _, chunk := range lvl.Chunks() {
		for _, ctx := range chunk.Contexts() {
			if ctx.Open() {
				continue
			}
			p := ctx.Partner()
			if p == nil {
				t.Errorf("closed context at %+v has no partner", ctx.Position)
				continue
			}
			if p.Partner() != ctx {
				t.Error("attachment is not mutual")
			}
			if p.Position != ctx.Position || p.Dir != ctx.Dir.Opposite() {
				t.Errorf("partners misaligned: %+v/%v vs %+v/%v",
					ctx.Position, ctx.Dir, p.Position, p.Dir)
			}
			attachments++
		}
	}
	// 5 chunks joined by 4 connections, each counted from both sides.
	if attachments != 8 {
		t.Errorf("counted %d closed context ends, want 8", attachments)
	}
}

func TestDeadEndsAreLeftOpenByDefault(t *testing.T) {
	// Only context faces west; nothing in the catalog faces east, so the
	// root's context can never be satisfied.
	stub := level.Template[geom.Rect]{
		Tag:    "stub",
		Weight: 1,
		Shape:  geom.NewRect(0, 0, 10, 10),
		Contexts: []level.ContextDef{
			{Offset: geom.Vec{X: 0, Y: 5}, Dir: geom.West},
		},
	}
	cfg := DefaultConfig()
	cfg.TargetChunks = 4
	gen := newTestGenerator(t, catalog.NewMemory(stub), 5, cfg)

	lvl, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if lvl.Len() != 1 {
		t.Errorf("level has %d chunks, want 1", lvl.Len())
	}
	if got := len(lvl.FindOpenContexts()); got != 1 {
		t.Errorf("open contexts = %d, want 1 (unsatisfiable end stays open)", got)
	}
	if gen.Exhausted() {
		t.Error("running out of candidates is not budget exhaustion")
	}
}

func TestCloseDeadEnds(t *testing.T) {
	stub := level.Template[geom.Rect]{
		Tag:    "stub",
		Weight: 1,
		Shape:  geom.NewRect(0, 0, 10, 10),
		Contexts: []level.ContextDef{
			{Offset: geom.Vec{X: 0, Y: 5}, Dir: geom.West},
			{Offset: geom.Vec{X: 5, Y: 10}, Dir: geom.North},
		},
	}
	cfg := DefaultConfig()
	cfg.TargetChunks = 4
	cfg.CloseDeadEnds = true
	gen := newTestGenerator(t, catalog.NewMemory(stub), 5, cfg)

	lvl, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if got := len(lvl.FindOpenContexts()); got != 0 {
		t.Errorf("open contexts = %d, want 0 with CloseDeadEnds", got)
	}
}

func TestBacktrackRemovesStuckChunk(t *testing.T) {
	// The seed template only grows east; the branch template dead-ends
	// with a north context nothing can satisfy, forcing a backtrack.
	seedTpl := level.Template[geom.Rect]{
		Tag:    "seed",
		Weight: 1,
		Shape:  geom.NewRect(0, 0, 10, 10),
		Contexts: []level.ContextDef{
			{Offset: geom.Vec{X: 10, Y: 5}, Dir: geom.East},
		},
	}
	branch := level.Template[geom.Rect]{
		Tag:    "branch",
		Weight: 0,
		Shape:  geom.NewRect(0, 0, 10, 10),
		Contexts: []level.ContextDef{
			{Offset: geom.Vec{X: 0, Y: 5}, Dir: geom.West},
			{Offset: geom.Vec{X: 5, Y: 10}, Dir: geom.North},
		},
	}

	var buf bytes.Buffer
	cfg := Config{
		TargetChunks: 10,
		RetryBudget:  3,
		Backtrack:    true,
		Logger:       log.New(&buf, "", 0),
	}
	gen, err := New(catalog.NewMemory(seedTpl, branch), rand.New(rand.NewSource(11)), cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	lvl, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if !gen.Exhausted() {
		t.Error("expected budget exhaustion after repeated backtracking")
	}
	if !bytes.Contains(buf.Bytes(), []byte("removed chunk")) {
		t.Error("expected a removal notice for the backtracked chunk")
	}
	if lvl.Len() > 2 {
		t.Errorf("level has %d chunks, want at most 2", lvl.Len())
	}
}

func TestGenerateEndToEndScenario(t *testing.T) {
	// One square template with four symmetric contexts and a budget of
	// five chunks: the generated level is exactly five non-overlapping
	// rooms with an open frontier, and the default discard policy trims
	// every dangling context afterwards.
	cfg := DefaultConfig()
	cfg.TargetChunks = 5
	gen := newTestGenerator(t, catalog.NewMemory(squareTemplate()), 1, cfg)

	lvl, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if lvl.Len() != 5 {
		t.Fatalf("level has %d chunks, want 5", lvl.Len())
	}

	chunks := lvl.Chunks()
	for i := range chunks {
		for j := i + 1; j < len(chunks); j++ {
			if chunks[i].Shape().Intersects(chunks[j].Shape()) {
				t.Errorf("chunks %d and %d overlap", i, j)
			}
		}
	}

	if got := len(lvl.FindOpenContexts()); got == 0 {
		t.Error("expected an open frontier before post-processing")
	}

	policy := DiscardOpenContexts[geom.Rect]{}
	if err := policy.Process(gen, lvl); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if got := len(lvl.FindOpenContexts()); got != 0 {
		t.Errorf("open contexts after discard = %d, want 0", got)
	}
	if lvl.Len() != 5 {
		t.Errorf("discarding contexts removed chunks: %d left, want 5", lvl.Len())
	}
}
