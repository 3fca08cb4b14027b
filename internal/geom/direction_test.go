package geom

import "testing"

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		d, want Direction
	}{
		{East, West},
		{West, East},
		{North, South},
		{South, North},
		{Up, Down},
		{Down, Up},
	}

	for _, tt := range tests {
		if got := tt.d.Opposite(); got != tt.want {
			t.Errorf("%v.Opposite() = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestDirectionRotateQuarter(t *testing.T) {
	if got := East.RotateQuarter(1); got != North {
		t.Errorf("East rotated one quarter = %v, want north", got)
	}
	if got := South.RotateQuarter(2); got != North {
		t.Errorf("South rotated two quarters = %v, want north", got)
	}
	if got := North.RotateQuarter(-1); got != East {
		t.Errorf("North rotated back one quarter = %v, want east", got)
	}
	if got := Up.RotateQuarter(3); got != Up {
		t.Errorf("Up must not rotate, got %v", got)
	}
}

func TestDirectionTurnsTo(t *testing.T) {
	tests := []struct {
		name     string
		from, to Direction
		turns    int
		ok       bool
	}{
		{"east to east", East, East, 0, true},
		{"east to north", East, North, 1, true},
		{"east to west", East, West, 2, true},
		{"north to east", North, East, 3, true},
		{"up to up", Up, Up, 0, true},
		{"up to down", Up, Down, 0, false},
		{"up to east", Up, East, 0, false},
		{"south to up", South, Up, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns, ok := tt.from.TurnsTo(tt.to)
			if ok != tt.ok || (ok && turns != tt.turns) {
				t.Errorf("TurnsTo(%v, %v) = (%d, %v), want (%d, %v)",
					tt.from, tt.to, turns, ok, tt.turns, tt.ok)
			}
			if ok {
				if got := tt.from.RotateQuarter(turns); got != tt.to {
					t.Errorf("rotating %v by %d quarters = %v, want %v", tt.from, turns, got, tt.to)
				}
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	for d := East; d <= Down; d++ {
		parsed, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("ParseDirection(%q) failed: %v", d.String(), err)
		}
		if parsed != d {
			t.Errorf("ParseDirection(%q) = %v, want %v", d.String(), parsed, d)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for unknown direction name")
	}
}

func TestVecRotateQuarter(t *testing.T) {
	v := Vec{X: 2, Y: 1, Z: 5}
	got := v.RotateQuarter(1)
	if got.X != -1 || got.Y != 2 || got.Z != 5 {
		t.Errorf("RotateQuarter(1) = %+v, want {-1 2 5}", got)
	}
	if back := got.RotateQuarter(-1); back != v {
		t.Errorf("rotation round-trip = %+v, want %+v", back, v)
	}
}
