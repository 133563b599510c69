package planner

import "errors"

var (
	// ErrNotFound is returned when an operation names an unknown entity.
	ErrNotFound = errors.New("not found")
	// ErrCycle is returned when a link would make a task its own ancestor.
	ErrCycle = errors.New("link would create a cycle")
)
