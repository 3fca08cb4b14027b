package level

import "errors"

var (
	// ErrNotFound is returned when a chunk or context targeted for removal
	// is not present in the level.
	ErrNotFound = errors.New("not found in level")

	// ErrInvalidArgument is returned when a required input (catalog, level,
	// generator, template) is nil, empty, or degenerate.
	ErrInvalidArgument = errors.New("invalid argument")
)
