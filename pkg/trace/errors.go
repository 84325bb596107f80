package trace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
)

var (
	// ErrNodeNotFound is returned when a pad is not anchored in the graph.
	ErrNodeNotFound = errors.New("pad not in graph")
	// ErrNoPathFound is returned when two pads are not connected. It is an
	// expected result, not a fault.
	ErrNoPathFound = errors.New("no path found")
	// ErrCrossNet is returned when the two pads (or the requested net)
	// disagree on the net name.
	ErrCrossNet = errors.New("pads are on different nets")
)

// Attempt records one strategy's outcome.
type Attempt struct {
	Strategy string `json:"strategy"`
	Err      error  `json:"-"`
	Message  string `json:"error"`
}

// NoPathError reports that every strategy failed to connect two pads.
type NoPathError struct {
	Net      string
	Start    board.PadKey
	End      board.PadKey
	Attempts []Attempt
}

func (e *NoPathError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Strategy
	}
	return fmt.Sprintf("%s: %s to %s on net %q (tried %s)",
		ErrNoPathFound, e.Start, e.End, e.Net, strings.Join(names, ", "))
}

// Unwrap lets errors.Is match ErrNoPathFound.
func (e *NoPathError) Unwrap() error {
	return ErrNoPathFound
}
