// Package trace resolves copper paths between pads and ranks critical
// trace lengths within a net.
package trace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/connectivity"
)

// Resolution is a successfully resolved path.
type Resolution struct {
	Net         string       `json:"net_name"`
	Start       board.PadKey `json:"start"`
	End         board.PadKey `json:"end"`
	Strategy    string       `json:"strategy"`
	LengthMils  float64      `json:"length_mils"`
	LengthMM    float64      `json:"length_mm"`
	Elements    []Element    `json:"elements"`
	Description string       `json:"path_description"`
	// Attempts lists the strategies that failed before Strategy succeeded.
	Attempts []Attempt `json:"attempts,omitempty"`

	Path *Path `json:"-"`
}

// Resolver tries each strategy in order until one connects the two pads.
type Resolver struct {
	index      *board.NetIndex
	source     GraphSource
	strategies []connectivity.Strategy
	logger     *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStrategies replaces the default exact-then-tolerant order.
func WithStrategies(s ...connectivity.Strategy) ResolverOption {
	return func(r *Resolver) {
		r.strategies = s
	}
}

// WithGraphSource sets where graphs come from, e.g. a GraphCache.
func WithGraphSource(src GraphSource) ResolverOption {
	return func(r *Resolver) {
		r.source = src
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewResolver creates a resolver over idx. By default it builds uncached
// graphs and tries the exact strategy before the tolerant one.
func NewResolver(idx *board.NetIndex, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		index:      idx,
		strategies: []connectivity.Strategy{connectivity.NewExact(), connectivity.NewTolerant()},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.source == nil {
		r.source = NewBuilder(idx)
	}
	if r.logger == nil {
		r.logger = discardLogger()
	}
	return r
}

// Index returns the net index the resolver reads.
func (r *Resolver) Index() *board.NetIndex {
	return r.index
}

// Strategies returns the strategy names in priority order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// ResolvePath resolves the path between startComponent.startPad and
// endComponent.endPad on netName.
func (r *Resolver) ResolvePath(netName, startComponent, startPad, endComponent, endPad string) (*Resolution, error) {
	return r.Resolve(netName,
		board.PadKey{Designator: startComponent, Number: startPad},
		board.PadKey{Designator: endComponent, Number: endPad})
}

// Resolve resolves the path between two pads. An empty net takes the net of
// the start pad. Pads on different nets fail with ErrCrossNet before any
// graph is built. When no strategy connects the pads the error is a
// *NoPathError matching ErrNoPathFound.
func (r *Resolver) Resolve(net string, start, end board.PadKey) (*Resolution, error) {
	sp, err := r.index.PadByKey(start)
	if err != nil {
		return nil, err
	}
	ep, err := r.index.PadByKey(end)
	if err != nil {
		return nil, err
	}

	if sp.NetName != ep.NetName {
		return nil, fmt.Errorf("%w: %s is on %q, %s is on %q", ErrCrossNet, start, sp.NetName, end, ep.NetName)
	}
	if net == "" {
		net = sp.NetName
	}
	if net != sp.NetName {
		return nil, fmt.Errorf("%w: %s and %s are on %q, not %q", ErrCrossNet, start, end, sp.NetName, net)
	}
	if !r.index.HasNet(net) {
		return nil, fmt.Errorf("%w: %q", board.ErrUnknownNet, net)
	}

	var attempts []Attempt
	for _, s := range r.strategies {
		g, err := r.source.Graph(net, s)
		if err != nil {
			return nil, fmt.Errorf("build %s graph for %q: %w", s.Name(), net, err)
		}

		path, err := FindPath(g, start, end)
		if err == nil {
			r.logger.Debug("path resolved",
				"net", net, "start", start.String(), "end", end.String(),
				"strategy", s.Name(), "length_mils", path.LengthMils)

			elements := path.Elements()
			return &Resolution{
				Net:         net,
				Start:       start,
				End:         end,
				Strategy:    s.Name(),
				LengthMils:  path.LengthMils,
				LengthMM:    path.LengthMM(),
				Elements:    elements,
				Description: path.Summary(len(elements)),
				Attempts:    attempts,
				Path:        path,
			}, nil
		}
		if !errors.Is(err, ErrNoPathFound) && !errors.Is(err, ErrNodeNotFound) {
			return nil, err
		}

		r.logger.Debug("strategy found no path",
			"net", net, "start", start.String(), "end", end.String(),
			"strategy", s.Name(), "nodes", len(g.Nodes), "edges", len(g.Edges))
		attempts = append(attempts, Attempt{Strategy: s.Name(), Err: err, Message: err.Error()})
	}

	return nil, &NoPathError{Net: net, Start: start, End: end, Attempts: attempts}
}

// Graph returns the graph for net under the named strategy, from the
// resolver's graph source.
func (r *Resolver) Graph(net, strategy string) (*connectivity.Graph, error) {
	if !r.index.HasNet(net) {
		return nil, fmt.Errorf("%w: %q", board.ErrUnknownNet, net)
	}
	for _, s := range r.strategies {
		if s.Name() == strategy {
			return r.source.Graph(net, s)
		}
	}
	return nil, fmt.Errorf("strategy %q is not configured", strategy)
}
