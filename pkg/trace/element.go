package trace

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

// ArcGeometry carries the circle parameters of an arc element.
type ArcGeometry struct {
	Center     geom.Point `json:"center"`
	RadiusMM   float64    `json:"radius_mm"`
	StartAngle float64    `json:"start_angle"`
	EndAngle   float64    `json:"end_angle"`
}

// Element is one entry of a rendered path: a pad, via, track or arc with
// enough geometry to draw it without going back to the board.
// Coordinates are in mils.
type Element struct {
	Index       int               `json:"index"`
	Type        board.Kind        `json:"type"`
	ID          board.PrimitiveID `json:"id"`
	Description string            `json:"description"`
	Net         string            `json:"net"`
	Layer       board.Layer       `json:"layer,omitempty"`

	// Pads
	Component string      `json:"component,omitempty"`
	Pad       string      `json:"pad,omitempty"`
	Location  *geom.Point `json:"location,omitempty"`

	// Tracks and arcs, as drawn
	Start    *geom.Point  `json:"start,omitempty"`
	End      *geom.Point  `json:"end,omitempty"`
	Arc      *ArcGeometry `json:"arc,omitempty"`
	LengthMM float64      `json:"length_mm"`

	// Vias
	FromLayer board.Layer `json:"from_layer,omitempty"`
	ToLayer   board.Layer `json:"to_layer,omitempty"`
}

func newElement(index int, p board.Primitive) Element {
	el := Element{
		Index:       index,
		Type:        p.Kind(),
		ID:          p.Ref(),
		Description: p.Describe(),
		Net:         p.Net(),
		LengthMM:    geom.MilsToMillimeters(p.Length()),
	}

	switch v := p.(type) {
	case *board.Pad:
		loc := v.Location
		el.Component = v.Designator
		el.Pad = v.Number
		el.Location = &loc
		el.Layer = v.Layer
	case *board.Track:
		start, end := v.Start, v.End
		el.Start, el.End = &start, &end
		el.Layer = v.Layer
	case *board.Arc:
		start, end := v.Start, v.End
		el.Start, el.End = &start, &end
		el.Layer = v.Layer
		el.Arc = &ArcGeometry{
			Center:     v.Center,
			RadiusMM:   geom.MilsToMillimeters(v.Radius),
			StartAngle: v.StartAngle,
			EndAngle:   v.EndAngle,
		}
	case *board.Via:
		loc := v.Location
		el.Location = &loc
		el.FromLayer = v.FromLayer
		el.ToLayer = v.ToLayer
	}
	return el
}

// Elements returns the path as an ordered list: the start pad and any other
// pads and vias sharing its node, then each track or arc followed by the
// copper absorbed into the node it arrives on and the pads and vias there,
// and the end pad last.
func (p *Path) Elements() []Element {
	startPad := p.anchorPad(p.from, p.Start)
	endPad := p.anchorPad(p.to, p.End)

	var out []Element
	add := func(prim board.Primitive) {
		out = append(out, newElement(len(out), prim))
	}
	addAnchors := func(n connectivity.NodeID) {
		for _, a := range p.graph.Node(n).Anchors {
			if a == board.Primitive(startPad) || a == board.Primitive(endPad) {
				continue
			}
			add(a)
		}
	}

	if startPad != nil {
		add(startPad)
	}
	addAnchors(p.from)
	for i, s := range p.Steps {
		add(s.Edge.Prim)
		if i < len(p.Steps)-1 {
			for _, a := range p.graph.Node(s.To).Absorbed {
				add(a)
			}
		}
		addAnchors(s.To)
	}
	if endPad != nil && endPad != startPad {
		add(endPad)
	}
	return out
}

// anchorPad returns the copy of pad k anchored on node n.
func (p *Path) anchorPad(n connectivity.NodeID, k board.PadKey) *board.Pad {
	for _, a := range p.graph.Node(n).Anchors {
		if pad, ok := a.(*board.Pad); ok && pad.Key() == k {
			return pad
		}
	}
	return nil
}

// Descriptions returns the display string of each element.
func Descriptions(elements []Element) []string {
	out := make([]string, len(elements))
	for i, el := range elements {
		out[i] = el.Description
	}
	return out
}

// Summary returns a one-line description of the path.
func (p *Path) Summary(elements int) string {
	return fmt.Sprintf("Path from %s to %s (%d elements, %.5f mm)", p.Start, p.End, elements, p.LengthMM())
}
