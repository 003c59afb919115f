package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidGraph = errors.New("invalid dependency graph")
	ErrCycle        = errors.New("dependency cycle detected")
)

// CycleError names the packages on one dependency cycle.
type CycleError struct {
	// Path starts and ends with the same package.
	Path []string
}

// Node returns a package participating in the cycle.
func (e *CycleError) Node() string {
	if e == nil || len(e.Path) == 0 {
		return ""
	}
	return e.Path[0]
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Path) == 0 {
		return ErrCycle.Error()
	}
	return fmt.Sprintf("%s involving %q: %s", ErrCycle.Error(), e.Node(), strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidGraph, fmt.Sprintf(format, args...))
}
