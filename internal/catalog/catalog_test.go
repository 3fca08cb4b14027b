package catalog

import "testing"

func TestDefaultTemplatesAreValid(t *testing.T) {
	for _, tpl := range Default().Templates() {
		if err := tpl.Validate(); err != nil {
			t.Errorf("built-in template %q invalid: %v", tpl.Tag, err)
		}
		if tpl.Weight <= 0 {
			t.Errorf("built-in template %q has weight %v, want > 0", tpl.Tag, tpl.Weight)
		}
		if len(tpl.Contexts) == 0 {
			t.Errorf("built-in template %q has no contexts", tpl.Tag)
		}
	}
}

func TestDefaultContextsSitOnBoundary(t *testing.T) {
	for _, tpl := range Default().Templates() {
		shape := tpl.Shape
		for i, def := range tpl.Contexts {
			p := def.Offset
			onBoundary := p.X == shape.X || p.X == shape.X+shape.W ||
				p.Y == shape.Y || p.Y == shape.Y+shape.H
			if !shape.ContainsPoint(p) || !onBoundary {
				t.Errorf("template %q context %d at %+v is not on the shape boundary", tpl.Tag, i, p)
			}
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	original := Default().Templates()
	recs := make([]Record, 0, len(original))
	for _, tpl := range original {
		recs = append(recs, ToRecord(tpl))
	}

	restored, err := FromRecords(recs)
	if err != nil {
		t.Fatalf("FromRecords() failed: %v", err)
	}

	got := restored.Templates()
	if len(got) != len(original) {
		t.Fatalf("restored %d templates, want %d", len(got), len(original))
	}
	for i, tpl := range got {
		want := original[i]
		if tpl.Tag != want.Tag || tpl.Weight != want.Weight || tpl.Rotatable != want.Rotatable {
			t.Errorf("template %d metadata = %q/%v/%v, want %q/%v/%v",
				i, tpl.Tag, tpl.Weight, tpl.Rotatable, want.Tag, want.Weight, want.Rotatable)
		}
		if tpl.Shape != want.Shape {
			t.Errorf("template %q shape = %+v, want %+v", tpl.Tag, tpl.Shape, want.Shape)
		}
		if len(tpl.Contexts) != len(want.Contexts) {
			t.Fatalf("template %q has %d contexts, want %d", tpl.Tag, len(tpl.Contexts), len(want.Contexts))
		}
		for j, def := range tpl.Contexts {
			if def != want.Contexts[j] {
				t.Errorf("template %q context %d = %+v, want %+v", tpl.Tag, j, def, want.Contexts[j])
			}
		}
	}
}

func TestFromRecordsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"unknown direction", Record{Tag: "bad", Width: 4, Height: 4, Weight: 1,
			Contexts: []ContextRecord{{X: 0, Y: 2, Dir: "diagonal"}}}},
		{"degenerate shape", Record{Tag: "flat", Width: 0, Height: 4, Weight: 1}},
		{"negative weight", Record{Tag: "neg", Width: 4, Height: 4, Weight: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromRecords([]Record{tt.rec}); err == nil {
				t.Error("FromRecords() accepted invalid record")
			}
		})
	}
}

func TestMemoryTemplatesIsSnapshot(t *testing.T) {
	m := Default()
	tpls := m.Templates()
	tpls[0].Tag = "mutated"
	if m.Templates()[0].Tag == "mutated" {
		t.Error("Templates() must not expose the catalog's backing slice")
	}
}
