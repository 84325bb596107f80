package board

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

var (
	// ErrUnknownNet is returned when a net name is not on the board.
	ErrUnknownNet = errors.New("unknown net")
	// ErrUnknownPad is returned when a (component, pad) pair is not on the board.
	ErrUnknownPad = errors.New("unknown pad")
)

// NetIndex groups a board's primitives by net and pads by key.
// It is read-only after construction and safe for concurrent use.
type NetIndex struct {
	board     *Board
	byNet     map[string][]Primitive
	padsByNet map[string][]*Pad
	pads      map[PadKey]*Pad
	names     []string
}

// NewNetIndex validates the board and builds the lookup maps.
func NewNetIndex(b *Board) (*NetIndex, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	// The first copy of a repeated pad key stands for the pad.
	pads := lo.UniqBy(b.Pads, func(p *Pad) PadKey { return p.Key() })

	idx := &NetIndex{
		board:     b,
		byNet:     lo.GroupBy(b.Primitives(), func(p Primitive) string { return p.Net() }),
		padsByNet: lo.GroupBy(pads, func(p *Pad) string { return p.NetName }),
		pads:      lo.KeyBy(pads, func(p *Pad) PadKey { return p.Key() }),
	}
	idx.names = lo.Keys(idx.byNet)
	sort.Strings(idx.names)
	return idx, nil
}

// Board returns the indexed board.
func (x *NetIndex) Board() *Board {
	return x.board
}

// Net returns every primitive on the named net, in load order.
func (x *NetIndex) Net(name string) ([]Primitive, error) {
	prims, ok := x.byNet[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNet, name)
	}
	return prims, nil
}

// HasNet reports whether the net exists.
func (x *NetIndex) HasNet(name string) bool {
	_, ok := x.byNet[name]
	return ok
}

// Pad looks up a pad by component designator and pad number.
func (x *NetIndex) Pad(designator, number string) (*Pad, error) {
	return x.PadByKey(PadKey{Designator: designator, Number: number})
}

// PadByKey looks up a pad by key.
func (x *NetIndex) PadByKey(k PadKey) (*Pad, error) {
	p, ok := x.pads[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPad, k)
	}
	return p, nil
}

// NetNames returns all net names, sorted.
func (x *NetIndex) NetNames() []string {
	return x.names
}

// Pads returns the pads on a net in load order, one per key.
func (x *NetIndex) Pads(net string) []*Pad {
	return x.padsByNet[net]
}

// NetSummary describes the contents of one net.
type NetSummary struct {
	Name       string `json:"net_name"`
	Components int    `json:"component_count"`
	Pads       int    `json:"pad_count"`
	Tracks     int    `json:"track_count"`
	Arcs       int    `json:"arc_count"`
	Vias       int    `json:"via_count"`
	Objects    int    `json:"object_count"`
}

// Summary returns the summary for one net.
func (x *NetIndex) Summary(net string) (NetSummary, error) {
	prims, err := x.Net(net)
	if err != nil {
		return NetSummary{}, err
	}

	s := NetSummary{Name: net, Objects: len(prims)}
	for _, p := range prims {
		switch p.Kind() {
		case KindPad:
			s.Pads++
		case KindTrack:
			s.Tracks++
		case KindArc:
			s.Arcs++
		case KindVia:
			s.Vias++
		}
	}
	s.Components = len(lo.Uniq(lo.Map(x.padsByNet[net], func(p *Pad, _ int) string {
		return p.Designator
	})))
	return s, nil
}

// Summaries returns one summary per net, sorted by name.
func (x *NetIndex) Summaries() []NetSummary {
	out := make([]NetSummary, 0, len(x.names))
	for _, name := range x.names {
		s, _ := x.Summary(name)
		out = append(out, s)
	}
	return out
}

// Component lists the pads one component has on a net.
type Component struct {
	Designator string   `json:"designator"`
	Pads       []string `json:"pads"`
}

// Components returns the components with pads on the net, in order of
// first appearance.
func (x *NetIndex) Components(net string) ([]Component, error) {
	if !x.HasNet(net) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNet, net)
	}

	var out []Component
	at := make(map[string]int)
	for _, p := range x.padsByNet[net] {
		i, ok := at[p.Designator]
		if !ok {
			i = len(out)
			at[p.Designator] = i
			out = append(out, Component{Designator: p.Designator})
		}
		out[i].Pads = append(out[i].Pads, p.Number)
	}
	return out, nil
}

// PadPair is an unordered request to measure the copper between two pads.
type PadPair struct {
	Start PadKey `json:"start"`
	End   PadKey `json:"end"`
}

func (pp PadPair) String() string {
	return pp.Start.String() + "-" + pp.End.String()
}

// PadPairs enumerates every pair of pads on the net, in load order.
func (x *NetIndex) PadPairs(net string) ([]PadPair, error) {
	if !x.HasNet(net) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNet, net)
	}

	pads := x.padsByNet[net]
	var pairs []PadPair
	for i := 0; i < len(pads); i++ {
		for j := i + 1; j < len(pads); j++ {
			pairs = append(pairs, PadPair{Start: pads[i].Key(), End: pads[j].Key()})
		}
	}
	return pairs, nil
}
