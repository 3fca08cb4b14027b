// Package catalog provides chunk template catalogs: an in-memory
// implementation of the generator's catalog capability, a built-in 2D
// template set, and conversion to and from the flat records the database
// layer stores.
package catalog

import (
	"fmt"

	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
)

// Memory is a read-only in-memory template catalog.
type Memory[S geom.Shape[S]] struct {
	templates []level.Template[S]
}

// NewMemory builds a catalog from the given templates.
func NewMemory[S geom.Shape[S]](tpls ...level.Template[S]) *Memory[S] {
	m := &Memory[S]{templates: make([]level.Template[S], len(tpls))}
	copy(m.templates, tpls)
	return m
}

// Templates returns a snapshot of the catalog's templates.
func (m *Memory[S]) Templates() []level.Template[S] {
	out := make([]level.Template[S], len(m.templates))
	copy(out, m.templates)
	return out
}

// Default returns the built-in 2D template set: a room, a corridor, a
// corner, a tee junction, and a dead-end cap. It backs fresh deployments
// whose database holds no templates yet.
func Default() *Memory[geom.Rect] {
	return NewMemory(
		level.Template[geom.Rect]{
			Tag:    "room",
			Weight: 3,
			Shape:  geom.NewRect(0, 0, 10, 10),
			Contexts: []level.ContextDef{
				{Offset: geom.Vec{X: 10, Y: 5}, Dir: geom.East},
				{Offset: geom.Vec{X: 5, Y: 10}, Dir: geom.North},
				{Offset: geom.Vec{X: 0, Y: 5}, Dir: geom.West},
				{Offset: geom.Vec{X: 5, Y: 0}, Dir: geom.South},
			},
		},
		level.Template[geom.Rect]{
			Tag:       "corridor",
			Weight:    4,
			Rotatable: true,
			Shape:     geom.NewRect(0, 0, 10, 4),
			Contexts: []level.ContextDef{
				{Offset: geom.Vec{X: 0, Y: 2}, Dir: geom.West},
				{Offset: geom.Vec{X: 10, Y: 2}, Dir: geom.East},
			},
		},
		level.Template[geom.Rect]{
			Tag:       "corner",
			Weight:    2,
			Rotatable: true,
			Shape:     geom.NewRect(0, 0, 6, 6),
			Contexts: []level.ContextDef{
				{Offset: geom.Vec{X: 0, Y: 3}, Dir: geom.West},
				{Offset: geom.Vec{X: 3, Y: 6}, Dir: geom.North},
			},
		},
		level.Template[geom.Rect]{
			Tag:       "tee",
			Weight:    1,
			Rotatable: true,
			Shape:     geom.NewRect(0, 0, 8, 6),
			Contexts: []level.ContextDef{
				{Offset: geom.Vec{X: 0, Y: 3}, Dir: geom.West},
				{Offset: geom.Vec{X: 8, Y: 3}, Dir: geom.East},
				{Offset: geom.Vec{X: 4, Y: 6}, Dir: geom.North},
			},
		},
		level.Template[geom.Rect]{
			Tag:       "cap",
			Weight:    1,
			Rotatable: true,
			Shape:     geom.NewRect(0, 0, 4, 4),
			Contexts: []level.ContextDef{
				{Offset: geom.Vec{X: 0, Y: 2}, Dir: geom.West},
			},
		},
	)
}

// ContextRecord is the flat, storage-facing form of a context definition.
type ContextRecord struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Dir string  `json:"dir"`
	Tag string  `json:"tag,omitempty"`
}

// Record is the flat, storage-facing form of a 2D template.
type Record struct {
	Tag       string
	Width     float64
	Height    float64
	Weight    float64
	Rotatable bool
	Contexts  []ContextRecord
}

// FromRecords converts stored template rows into an in-memory catalog,
// validating each template on the way in.
func FromRecords(recs []Record) (*Memory[geom.Rect], error) {
	tpls := make([]level.Template[geom.Rect], 0, len(recs))
	for _, rec := range recs {
		tpl := level.Template[geom.Rect]{
			Tag:       rec.Tag,
			Weight:    rec.Weight,
			Rotatable: rec.Rotatable,
			Shape:     geom.NewRect(0, 0, rec.Width, rec.Height),
		}
		for _, c := range rec.Contexts {
			dir, err := geom.ParseDirection(c.Dir)
			if err != nil {
				return nil, fmt.Errorf("template %q: %w", rec.Tag, err)
			}
			tpl.Contexts = append(tpl.Contexts, level.ContextDef{
				Offset: geom.Vec{X: c.X, Y: c.Y},
				Dir:    dir,
				Tag:    c.Tag,
			})
		}
		if err := tpl.Validate(); err != nil {
			return nil, err
		}
		tpls = append(tpls, tpl)
	}
	return NewMemory(tpls...), nil
}

// ToRecord flattens a 2D template for storage.
func ToRecord(tpl level.Template[geom.Rect]) Record {
	rec := Record{
		Tag:       tpl.Tag,
		Width:     tpl.Shape.W,
		Height:    tpl.Shape.H,
		Weight:    tpl.Weight,
		Rotatable: tpl.Rotatable,
	}
	for _, def := range tpl.Contexts {
		rec.Contexts = append(rec.Contexts, ContextRecord{
			X:   def.Offset.X,
			Y:   def.Offset.Y,
			Dir: def.Dir.String(),
			Tag: def.Tag,
		})
	}
	return rec
}
