package levelgen

import (
	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
)

// placement is one candidate way of attaching a template to a target
// context: which context definition docks, how many quarter turns the
// template makes, and where it ends up.
type placement[S geom.Shape[S]] struct {
	tpl    level.Template[S]
	ctx    int
	turns  int
	offset geom.Vec
}

// shape returns the candidate's world-space footprint.
func (p placement[S]) shape() S {
	return p.tpl.Shape.RotateQuarter(p.turns).Translate(p.offset)
}

// alignments computes every rigid transform that maps one of the
// template's compatible contexts onto the target: position equal,
// direction exactly opposite so the two chunks face each other. A
// non-rotatable template only aligns in its authored orientation; a
// rotatable one contributes a distinct candidate per matching quarter
// turn.
func alignments[S geom.Shape[S]](tpl level.Template[S], target *level.Context[S]) []placement[S] {
	inward := target.Dir.Opposite()
	var out []placement[S]
	for i, def := range tpl.Contexts {
		if !compatibleTags(def.Tag, target.Tag) {
			continue
		}
		turns, ok := def.Dir.TurnsTo(inward)
		if !ok {
			continue
		}
		if !tpl.Rotatable && turns != 0 {
			continue
		}
		out = append(out, placement[S]{
			tpl:    tpl,
			ctx:    i,
			turns:  turns,
			offset: target.Position.Sub(def.Offset.RotateQuarter(turns)),
		})
	}
	return out
}

// compatibleTags reports whether two context tags may connect. An empty
// tag is a wildcard.
func compatibleTags(a, b string) bool {
	return a == "" || b == "" || a == b
}
