package trace

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLength/internal/testboard"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/connectivity"
)

// spyStrategy counts how often a strategy is asked to build a graph.
type spyStrategy struct {
	connectivity.Strategy
	calls atomic.Int64
}

func (s *spyStrategy) Merge(endpoints []connectivity.Endpoint) []int {
	s.calls.Add(1)
	return s.Strategy.Merge(endpoints)
}

func spies() (*spyStrategy, *spyStrategy) {
	return &spyStrategy{Strategy: connectivity.NewExact()}, &spyStrategy{Strategy: connectivity.NewTolerant()}
}

func sampleIndex(t *testing.T) *board.NetIndex {
	t.Helper()
	idx, err := board.NewNetIndex(testboard.Sample())
	if err != nil {
		t.Fatalf("NewNetIndex() error = %v", err)
	}
	return idx
}

func key(des, num string) board.PadKey {
	return board.PadKey{Designator: des, Number: num}
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
