package testutil

import (
	"time"

	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/level"
)

// TestFixtures provides test data generators
type TestFixtures struct{}

// NewTestFixtures creates a new test fixtures helper
func NewTestFixtures() *TestFixtures {
	return &TestFixtures{}
}

// RandomString generates a random string of specified length
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	seed := time.Now().UnixNano()
	for i := range b {
		seed = seed*1103515245 + 12345 // Simple LCG
		idx := int(seed % int64(len(charset)))
		if idx < 0 {
			idx = -idx
		}
		b[i] = charset[idx]
	}
	return string(b)
}

// RandomLevelName generates a random level name
func RandomLevelName() string {
	return "testlevel_" + RandomString(8)
}

// SquareRoom returns a 10x10 room template with a context at the midpoint
// of each wall, the smallest template that can grow a level in every
// direction.
func (f *TestFixtures) SquareRoom() level.Template[geom.Rect] {
	return level.Template[geom.Rect]{
		Tag:    "room",
		Weight: 1,
		Shape:  geom.Rect{X: 0, Y: 0, W: 10, H: 10},
		Contexts: []level.ContextDef{
			{Offset: geom.Vec{X: 10, Y: 5}, Dir: geom.East},
			{Offset: geom.Vec{X: 5, Y: 10}, Dir: geom.North},
			{Offset: geom.Vec{X: 0, Y: 5}, Dir: geom.West},
			{Offset: geom.Vec{X: 5, Y: 0}, Dir: geom.South},
		},
	}
}

// DeadEndCap returns a small single-context template useful for closing
// corridors in tests.
func (f *TestFixtures) DeadEndCap() level.Template[geom.Rect] {
	return level.Template[geom.Rect]{
		Tag:       "cap",
		Weight:    1,
		Rotatable: true,
		Shape:     geom.Rect{X: 0, Y: 0, W: 4, H: 4},
		Contexts: []level.ContextDef{
			{Offset: geom.Vec{X: 0, Y: 2}, Dir: geom.West},
		},
	}
}
