package trace

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/connectivity"
)

// SessionOptions configures NewSession.
type SessionOptions struct {
	// Strategies in priority order. Empty means exact, then tolerant.
	Strategies  []connectivity.Strategy
	CacheGraphs bool
	Workers     int
	Logger      *slog.Logger
}

// Session owns everything derived from one loaded board: the net index, the
// optional graph cache, a resolver and an analyzer.
type Session struct {
	ID       string
	Board    *board.Board
	Index    *board.NetIndex
	Cache    *GraphCache // nil when caching is off
	Resolver *Resolver
	Analyzer *Analyzer
	Created  time.Time

	logger *slog.Logger
}

// NewSession indexes b and wires a resolver and analyzer over it.
func NewSession(b *board.Board, opts SessionOptions) (*Session, error) {
	idx, err := board.NewNetIndex(b)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	s := &Session{
		ID:      uuid.NewString(),
		Board:   b,
		Index:   idx,
		Created: time.Now(),
	}
	s.logger = logger.With("session", s.ID)

	ropts := []ResolverOption{WithLogger(s.logger)}
	if len(opts.Strategies) > 0 {
		ropts = append(ropts, WithStrategies(opts.Strategies...))
	}
	if opts.CacheGraphs {
		s.Cache = NewGraphCache(idx)
		ropts = append(ropts, WithGraphSource(s.Cache))
	}

	s.Resolver = NewResolver(idx, ropts...)
	s.Analyzer = NewAnalyzer(s.Resolver, opts.Workers)

	stats := b.Stats()
	s.logger.Info("session opened",
		"board", b.Name, "nets", len(idx.NetNames()),
		"pads", stats.Pads, "tracks", stats.Tracks, "arcs", stats.Arcs, "vias", stats.Vias,
		"cache", opts.CacheGraphs)
	return s, nil
}

// Close drops cached graphs.
func (s *Session) Close() {
	if s.Cache != nil {
		s.logger.Debug("session closed", "cached_graphs", s.Cache.Len(), "builds", s.Cache.Builds())
		s.Cache.Clear()
	}
}
