package trace

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
)

// DefaultWorkers bounds how many pairs the analyzer resolves at once.
const DefaultWorkers = 4

// CriticalPath is one ranked pad pair.
type CriticalPath struct {
	Rank           int     `json:"rank"`
	StartComponent string  `json:"start_component"`
	StartPad       string  `json:"start_pad"`
	EndComponent   string  `json:"end_component"`
	EndPad         string  `json:"end_pad"`
	LengthMM       float64 `json:"length_mm"`
	Percent        float64 `json:"percent_of_max"`
	Strategy       string  `json:"strategy"`
	Elements       int     `json:"element_count"`
}

// Pair returns the pad pair the entry measures.
func (c CriticalPath) Pair() board.PadPair {
	return board.PadPair{
		Start: board.PadKey{Designator: c.StartComponent, Number: c.StartPad},
		End:   board.PadKey{Designator: c.EndComponent, Number: c.EndPad},
	}
}

// SkippedPair is a pair that resolved to no path.
type SkippedPair struct {
	Pair   board.PadPair `json:"pair"`
	Reason string        `json:"reason"`
}

// CriticalReport ranks the resolved pairs of one net.
type CriticalReport struct {
	Net     string         `json:"net_name"`
	Paths   []CriticalPath `json:"critical_paths"`
	Longest *CriticalPath  `json:"longest_path,omitempty"`
	MaxMM   float64        `json:"max_length_mm"`
	TotalMM float64        `json:"total_length_mm"`
	Skipped []SkippedPair  `json:"skipped,omitempty"`
}

// Analyzer ranks pad pairs by resolved path length.
type Analyzer struct {
	resolver *Resolver
	workers  int
}

// NewAnalyzer creates an analyzer resolving up to workers pairs at once.
func NewAnalyzer(r *Resolver, workers int) *Analyzer {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Analyzer{resolver: r, workers: workers}
}

// Rank resolves every pair on net and returns them longest first. Pairs with
// no path are listed as skipped; any other failure aborts the batch. An empty
// net lets each pair take the net of its start pad.
func (a *Analyzer) Rank(ctx context.Context, net string, pairs []board.PadPair) (*CriticalReport, error) {
	if net != "" && !a.resolver.Index().HasNet(net) {
		return nil, fmt.Errorf("%w: %q", board.ErrUnknownNet, net)
	}

	results := make([]*Resolution, len(pairs))
	failures := make([]error, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.resolver.Resolve(net, pair.Start, pair.End)
			switch {
			case err == nil:
				results[i] = res
			case errors.Is(err, ErrNoPathFound):
				failures[i] = err
			default:
				return fmt.Errorf("%s: %w", pair, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &CriticalReport{Net: net}
	for i, res := range results {
		if res == nil {
			report.Skipped = append(report.Skipped, SkippedPair{Pair: pairs[i], Reason: failures[i].Error()})
			continue
		}
		report.Paths = append(report.Paths, CriticalPath{
			StartComponent: res.Start.Designator,
			StartPad:       res.Start.Number,
			EndComponent:   res.End.Designator,
			EndPad:         res.End.Number,
			LengthMM:       res.LengthMM,
			Strategy:       res.Strategy,
			Elements:       len(res.Elements),
		})
		report.TotalMM += res.LengthMM
	}

	sort.SliceStable(report.Paths, func(i, j int) bool {
		return report.Paths[i].LengthMM > report.Paths[j].LengthMM
	})
	if len(report.Paths) > 0 {
		report.MaxMM = report.Paths[0].LengthMM
	}
	for i := range report.Paths {
		p := &report.Paths[i]
		p.Rank = i + 1
		if report.MaxMM > 0 {
			p.Percent = p.LengthMM / report.MaxMM * 100
		}
	}
	if len(report.Paths) > 0 {
		longest := report.Paths[0]
		report.Longest = &longest
	}
	return report, nil
}

// RankAll ranks every pad pair on the net.
func (a *Analyzer) RankAll(ctx context.Context, net string) (*CriticalReport, error) {
	pairs, err := a.resolver.Index().PadPairs(net)
	if err != nil {
		return nil, err
	}
	return a.Rank(ctx, net, pairs)
}
