package board

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingNet is returned by Validate for a primitive with no net.
	ErrMissingNet = errors.New("board: primitive has no net")
	// ErrDuplicatePad is returned by Validate when two pads share a key but
	// claim different nets.
	ErrDuplicatePad = errors.New("board: duplicate pad on different nets")
)

// Board is the finalized primitive set of one layout. Primitives are
// numbered in the order they are added.
type Board struct {
	Name   string
	Source string // file the board was loaded from, if any

	Pads   []*Pad
	Tracks []*Track
	Arcs   []*Arc
	Vias   []*Via

	prims []Primitive
}

// New creates an empty board.
func New(name string) *Board {
	return &Board{Name: name}
}

// AddPad assigns the pad an ID and appends it.
func (b *Board) AddPad(p *Pad) *Pad {
	p.ID = b.nextID()
	b.Pads = append(b.Pads, p)
	b.prims = append(b.prims, p)
	return p
}

// AddTrack assigns the track an ID and appends it.
func (b *Board) AddTrack(t *Track) *Track {
	t.ID = b.nextID()
	b.Tracks = append(b.Tracks, t)
	b.prims = append(b.prims, t)
	return t
}

// AddArc assigns the arc an ID and appends it. Endpoints are derived from
// the sweep when none were supplied.
func (b *Board) AddArc(a *Arc) *Arc {
	if a.Start == a.End {
		a.Derive()
	}
	a.ID = b.nextID()
	b.Arcs = append(b.Arcs, a)
	b.prims = append(b.prims, a)
	return a
}

// AddVia assigns the via an ID and appends it.
func (b *Board) AddVia(v *Via) *Via {
	v.ID = b.nextID()
	b.Vias = append(b.Vias, v)
	b.prims = append(b.prims, v)
	return v
}

func (b *Board) nextID() PrimitiveID {
	return PrimitiveID(len(b.prims))
}

// Primitives returns every primitive in load order.
func (b *Board) Primitives() []Primitive {
	return b.prims
}

// Primitive returns the primitive with the given ID.
func (b *Board) Primitive(id PrimitiveID) (Primitive, bool) {
	if id < 0 || int(id) >= len(b.prims) {
		return nil, false
	}
	return b.prims[id], true
}

// Validate checks the invariants the net index relies on: every primitive
// carries a net, and all pads sharing a key share a net. Repeated keys on
// one net (split exposed pads, several "MP" pads) are allowed.
func (b *Board) Validate() error {
	for _, p := range b.prims {
		if p.Net() == "" {
			return fmt.Errorf("%w: %s #%d", ErrMissingNet, p.Kind(), p.Ref())
		}
	}

	nets := make(map[PadKey]string, len(b.Pads))
	for _, p := range b.Pads {
		net, seen := nets[p.Key()]
		if !seen {
			nets[p.Key()] = p.NetName
			continue
		}
		if net != p.NetName {
			return fmt.Errorf("%w: %s is on %q and %q", ErrDuplicatePad, p.Key(), net, p.NetName)
		}
	}
	return nil
}

// Stats summarizes the board contents.
type Stats struct {
	Pads   int `json:"pads"`
	Tracks int `json:"tracks"`
	Arcs   int `json:"arcs"`
	Vias   int `json:"vias"`
}

// Stats returns primitive counts.
func (b *Board) Stats() Stats {
	return Stats{Pads: len(b.Pads), Tracks: len(b.Tracks), Arcs: len(b.Arcs), Vias: len(b.Vias)}
}
