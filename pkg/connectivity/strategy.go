package connectivity

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

// Strategy names.
const (
	StrategyExact    = "exact"
	StrategyTolerant = "tolerant"
)

// Endpoint is one terminal of a primitive, the unit a Strategy merges.
type Endpoint struct {
	Prim board.Primitive
	board.Terminal
}

// Strategy decides which endpoints are the same graph node.
type Strategy interface {
	Name() string
	// Merge returns a node label per endpoint. Equal labels share a node.
	Merge(endpoints []Endpoint) []int
}

func compatibleFunc(endpoints []Endpoint) func(i, j int) bool {
	return func(i, j int) bool {
		return endpoints[i].Compatible(endpoints[j].Terminal)
	}
}

func points(endpoints []Endpoint) []geom.Point {
	out := make([]geom.Point, len(endpoints))
	for i, e := range endpoints {
		out[i] = e.Point
	}
	return out
}

// Exact merges endpoints only when they are the same drawn point, i.e. their
// coordinates fall in the same Epsilon cell, and their layers are compatible.
type Exact struct {
	Epsilon float64
}

// NewExact returns an Exact strategy with DefaultEpsilon.
func NewExact() *Exact {
	return &Exact{Epsilon: DefaultEpsilon}
}

func (s *Exact) Name() string { return StrategyExact }

func (s *Exact) Merge(endpoints []Endpoint) []int {
	uf := newUnionFind(len(endpoints))
	mergeQuantized(points(endpoints), s.Epsilon, compatibleFunc(endpoints), uf)
	return uf.labels()
}

// Tolerant merges endpoints within Tolerance of each other on compatible
// layers. With PadCapture set, a track or arc end lying on a pad's copper
// joins the pad's node even when it is further than Tolerance from the pad
// centre.
type Tolerant struct {
	Tolerance  float64
	PadCapture bool
}

// NewTolerant returns a Tolerant strategy with DefaultTolerance and pad
// capture enabled.
func NewTolerant() *Tolerant {
	return &Tolerant{Tolerance: DefaultTolerance, PadCapture: true}
}

func (s *Tolerant) Name() string { return StrategyTolerant }

func (s *Tolerant) Merge(endpoints []Endpoint) []int {
	uf := newUnionFind(len(endpoints))
	if len(endpoints) == 0 {
		return nil
	}

	compatible := compatibleFunc(endpoints)
	idx := newPointIndex(points(endpoints))
	if s.Tolerance > 0 {
		mergeWithin(idx, s.Tolerance, compatible, uf)
	} else {
		mergeQuantized(idx.points, 0, compatible, uf)
	}

	if s.PadCapture {
		s.capturePads(endpoints, idx, compatible, uf)
	}
	return uf.labels()
}

func (s *Tolerant) capturePads(endpoints []Endpoint, idx *pointIndex, compatible func(i, j int) bool, uf *unionFind) {
	margin := max(s.Tolerance, 0)
	for i, e := range endpoints {
		pad, ok := e.Prim.(*board.Pad)
		if !ok || pad.Size.Width <= 0 || pad.Size.Height <= 0 {
			continue
		}

		reach := math.Hypot(pad.Size.Width/2, pad.Size.Height/2) + margin
		for _, j := range idx.within(pad.Location, reach) {
			switch endpoints[j].Prim.Kind() {
			case board.KindTrack, board.KindArc:
			default:
				continue
			}
			if compatible(i, j) && pad.Contains(endpoints[j].Point, margin) {
				uf.union(i, j)
			}
		}
	}
}

// Options configures NewStrategy.
type Options struct {
	Epsilon    float64
	Tolerance  float64
	PadCapture bool
}

// DefaultOptions returns the default strategy settings.
func DefaultOptions() Options {
	return Options{Epsilon: DefaultEpsilon, Tolerance: DefaultTolerance, PadCapture: true}
}

// NewStrategy builds a strategy by name. "accurate" and "bidirectional" are
// accepted as aliases of "exact" and "tolerant".
func NewStrategy(name string, opts Options) (Strategy, error) {
	switch name {
	case StrategyExact, "accurate":
		return &Exact{Epsilon: opts.Epsilon}, nil
	case StrategyTolerant, "bidirectional":
		return &Tolerant{Tolerance: opts.Tolerance, PadCapture: opts.PadCapture}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// Strategies builds strategies in the given order.
func Strategies(names []string, opts Options) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := NewStrategy(name, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
