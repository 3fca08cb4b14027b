package levelgen

import (
	"fmt"
	"log"

	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
)

// blockedProbe is how far past a context position the generator peeks when
// checking whether the context opens into already-occupied space.
const blockedProbe = 1e-6

// Source is the injected randomness capability. *math/rand.Rand satisfies
// it; tests seed one for reproducible runs.
type Source interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Logger receives human-readable progress and removal notices. *log.Logger
// satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Catalog enumerates the chunk templates available to a generation run.
// Weights on the templates drive sampling; the catalog itself only needs
// to enumerate.
type Catalog[S geom.Shape[S]] interface {
	Templates() []level.Template[S]
}

// SelectStrategy names the policy for picking which open context to
// extend next.
type SelectStrategy string

const (
	// SelectOldest extends the longest-waiting open context first,
	// growing the level breadth-first.
	SelectOldest SelectStrategy = "oldest"
	// SelectRandom draws the next open context from the injected source.
	SelectRandom SelectStrategy = "random"
)

// Config controls a generation run.
type Config struct {
	// TargetChunks stops generation once the level holds this many
	// chunks. Zero means generate until no open context remains.
	TargetChunks int
	// RetryBudget is the number of failed extension attempts allowed
	// before the run reports exhaustion and stops.
	RetryBudget int
	// Backtrack removes the chunk owning an unsatisfiable context so an
	// earlier decision can be retried, instead of leaving a dead end.
	Backtrack bool
	// CloseDeadEnds permanently closes unsatisfiable contexts. When
	// false they stay open for post-processing to reconcile.
	CloseDeadEnds bool
	// RejectBlocked rejects candidates whose every remaining context
	// would open flush against already-placed geometry.
	RejectBlocked bool
	// Select picks the open-context selection strategy.
	Select SelectStrategy
	// Logger receives progress notices. Defaults to the standard logger.
	Logger Logger
}

// DefaultConfig returns the configuration used when the caller does not
// care: a medium-sized level, no backtracking, dead ends left open for
// post-processing.
func DefaultConfig() Config {
	return Config{
		TargetChunks:  32,
		RetryBudget:   64,
		RejectBlocked: true,
		Select:        SelectOldest,
	}
}

// Generator assembles a level by stitching catalog templates onto open
// contexts, one placement per iteration: select a context, propose
// candidates, validate them against everything already placed, commit the
// first that fits.
type Generator[S geom.Shape[S]] struct {
	catalog Catalog[S]
	src     Source
	cfg     Config
	log     Logger

	root      *level.Chunk[S]
	exhausted map[*level.Context[S]]bool
	attempts  int
	rejected  int
	drained   bool
}

// New validates the injected capabilities and builds a generator.
// A nil catalog or source, an empty catalog, or a template with degenerate
// geometry is a configuration error.
func New[S geom.Shape[S]](catalog Catalog[S], src Source, cfg Config) (*Generator[S], error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: nil template catalog", level.ErrInvalidArgument)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", level.ErrInvalidArgument)
	}
	tpls := catalog.Templates()
	if len(tpls) == 0 {
		return nil, fmt.Errorf("%w: empty template catalog", level.ErrInvalidArgument)
	}
	for _, tpl := range tpls {
		if err := tpl.Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.RetryBudget < 0 || cfg.TargetChunks < 0 {
		return nil, fmt.Errorf("%w: negative generation budget", level.ErrInvalidArgument)
	}
	if cfg.Select == "" {
		cfg.Select = SelectOldest
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Generator[S]{
		catalog: catalog,
		src:     src,
		cfg:     cfg,
		log:     logger,
	}, nil
}

// Logger returns the generator's logging capability, for post-processing
// policies that report through it.
func (g *Generator[S]) Logger() Logger {
	return g.log
}

// Exhausted reports whether the last run stopped because the retry budget
// ran out rather than because the level was complete.
func (g *Generator[S]) Exhausted() bool {
	return g.drained
}

// Rejected returns how many candidate placements the last run discarded
// during validation.
func (g *Generator[S]) Rejected() int {
	return g.rejected
}

// Generate runs the placement loop from a fresh level seeded with one
// weighted-sampled root chunk at the origin. Budget exhaustion is not an
// error: the level built so far is returned and Exhausted reports true.
func (g *Generator[S]) Generate() (*level.Level[S], error) {
	g.exhausted = make(map[*level.Context[S]]bool)
	g.attempts = 0
	g.rejected = 0
	g.drained = false

	lvl := level.New[S]()
	root := g.sampleTemplate(g.catalog.Templates())
	g.root = level.NewChunk(root, 0, geom.Vec{})
	lvl.AddChunk(g.root)
	g.log.Printf("seeded level with root chunk %q", g.root.Tag)

	for {
		if g.cfg.TargetChunks > 0 && lvl.Len() >= g.cfg.TargetChunks {
			g.log.Printf("generation stopped: reached target of %d chunks", g.cfg.TargetChunks)
			break
		}
		target := g.selectContext(lvl)
		if target == nil {
			g.log.Printf("generation stopped: no open contexts remain")
			break
		}
		if g.attempts >= g.cfg.RetryBudget {
			g.drained = true
			g.log.Printf("generation stopped: retry budget of %d exhausted", g.cfg.RetryBudget)
			break
		}
		if g.extend(lvl, target) {
			continue
		}
		g.attempts++
		g.giveUp(lvl, target)
	}
	return lvl, nil
}

// selectContext picks the next open context to extend, skipping contexts
// already found unsatisfiable. Returns nil when nothing is left to try.
func (g *Generator[S]) selectContext(lvl *level.Level[S]) *level.Context[S] {
	var open []*level.Context[S]
	for _, ctx := range lvl.FindOpenContexts() {
		if !g.exhausted[ctx] {
			open = append(open, ctx)
		}
	}
	if len(open) == 0 {
		return nil
	}
	if g.cfg.Select == SelectRandom {
		return open[g.src.Intn(len(open))]
	}
	return open[0]
}

// extend tries every candidate placement against the target context in a
// deterministic shuffled order and commits the first that validates.
// A false return means every candidate was rejected, which is a normal
// outcome, not an error.
func (g *Generator[S]) extend(lvl *level.Level[S], target *level.Context[S]) bool {
	for _, p := range g.candidates(target) {
		if g.collides(lvl, p.shape()) {
			g.rejected++
			continue
		}
		chunk := level.NewChunk(p.tpl, p.turns, p.offset)
		if g.cfg.RejectBlocked && g.buried(lvl, chunk, p.ctx) {
			g.rejected++
			continue
		}
		lvl.AddChunk(chunk)
		lvl.Attach(target, chunk.Contexts()[p.ctx])
		g.log.Printf("placed chunk %q at context %v facing %v", chunk.Tag, target.Position, target.Dir)
		return true
	}
	return false
}

// sampleTemplate draws one template proportional to weight.
func (g *Generator[S]) sampleTemplate(tpls []level.Template[S]) level.Template[S] {
	return tpls[g.weightedOrder(tpls)[0]]
}

// candidates builds the proposal list for one target context: templates in
// weighted draw order, each template's alignments shuffled.
func (g *Generator[S]) candidates(target *level.Context[S]) []placement[S] {
	tpls := g.catalog.Templates()
	var out []placement[S]
	for _, i := range g.weightedOrder(tpls) {
		aligned := alignments(tpls[i], target)
		g.src.Shuffle(len(aligned), func(a, b int) {
			aligned[a], aligned[b] = aligned[b], aligned[a]
		})
		out = append(out, aligned...)
	}
	return out
}

// weightedOrder draws template indices without replacement, proportional
// to weight. Zero-weight templates are drawn last, uniformly.
func (g *Generator[S]) weightedOrder(tpls []level.Template[S]) []int {
	remaining := make([]int, len(tpls))
	total := 0.0
	for i, tpl := range tpls {
		remaining[i] = i
		total += tpl.Weight
	}

	order := make([]int, 0, len(tpls))
	for len(remaining) > 0 {
		pick := 0
		if total > 0 {
			r := g.src.Float64() * total
			for j, idx := range remaining {
				r -= tpls[idx].Weight
				if r <= 0 {
					pick = j
					break
				}
			}
		} else {
			pick = g.src.Intn(len(remaining))
		}
		idx := remaining[pick]
		total -= tpls[idx].Weight
		order = append(order, idx)
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return order
}

// collides reports whether the candidate footprint overlaps any placed
// chunk. Touching boundaries do not collide; that is how chunks share
// walls.
func (g *Generator[S]) collides(lvl *level.Level[S], shape S) bool {
	for _, placed := range lvl.Chunks() {
		if shape.Intersects(placed.Shape()) {
			return true
		}
	}
	return false
}

// buried reports whether every context of the candidate other than the
// attaching one opens flush into already-placed geometry, which would make
// the chunk a sealed dead end.
func (g *Generator[S]) buried(lvl *level.Level[S], chunk *level.Chunk[S], attach int) bool {
	contexts := chunk.Contexts()
	if len(contexts) <= 1 {
		return false
	}
	for i, ctx := range contexts {
		if i == attach {
			continue
		}
		probe := ctx.Position.Add(ctx.Dir.Vector().Scale(blockedProbe))
		blocked := false
		for _, placed := range lvl.Chunks() {
			if placed.Shape().ContainsPoint(probe) {
				blocked = true
				break
			}
		}
		if !blocked {
			return false
		}
	}
	return true
}

// giveUp records a context as unsatisfiable after all candidates failed.
// With backtracking enabled the owning chunk is removed instead, reopening
// the neighbor it hung off so a different decision can be tried.
func (g *Generator[S]) giveUp(lvl *level.Level[S], target *level.Context[S]) {
	owner := target.Owner()
	if g.cfg.Backtrack && owner != nil && owner != g.root {
		if err := lvl.RemoveChunk(owner); err != nil {
			g.log.Printf("backtrack failed for chunk %q: %v", owner.Tag, err)
			g.exhausted[target] = true
			return
		}
		g.log.Printf("removed chunk %q: no candidate fits its context at %v", owner.Tag, target.Position)
		// Freed space makes earlier verdicts stale.
		for ctx := range g.exhausted {
			if ctx.Owner() == nil || ctx.Open() {
				delete(g.exhausted, ctx)
			}
		}
		return
	}

	g.exhausted[target] = true
	if g.cfg.CloseDeadEnds {
		if err := lvl.CloseContext(target); err != nil {
			g.log.Printf("failed to close dead end at %v: %v", target.Position, err)
			return
		}
		g.log.Printf("closed dead end at %v facing %v", target.Position, target.Dir)
		return
	}
	g.log.Printf("context at %v facing %v is unsatisfiable, left open", target.Position, target.Dir)
}
