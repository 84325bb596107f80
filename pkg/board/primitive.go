// Package board models the copper primitives of a PCB layout and the net
// index built over them. Coordinates are in mils.
package board

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

// PrimitiveID is a board-unique identifier assigned in load order.
type PrimitiveID int

// Kind tags the concrete type of a Primitive.
type Kind int

const (
	KindPad Kind = iota
	KindTrack
	KindArc
	KindVia
)

func (k Kind) String() string {
	switch k {
	case KindPad:
		return "pad"
	case KindTrack:
		return "track"
	case KindArc:
		return "arc"
	case KindVia:
		return "via"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Layer is a copper layer name (e.g. "F.Cu", "B.Cu", or a numeric layer
// from a JSON export).
type Layer string

// Terminal is a point where a primitive can connect to other copper.
type Terminal struct {
	Point geom.Point
	Layer Layer
	// AllLayers is set for plated holes (vias, through-hole pads) that
	// connect every copper layer at their location.
	AllLayers bool
}

// Compatible reports whether copper at t and u can touch.
func (t Terminal) Compatible(u Terminal) bool {
	return t.AllLayers || u.AllLayers || t.Layer == u.Layer
}

// Primitive is one of *Pad, *Track, *Arc or *Via.
type Primitive interface {
	Ref() PrimitiveID
	Net() string
	Kind() Kind
	// Length is the traversal length in mils. Pads and vias have zero length.
	Length() float64
	// Terminals returns one terminal for pads and vias, and the two
	// endpoints for tracks and arcs.
	Terminals() []Terminal
	Describe() string
}

// Base carries the fields common to every primitive.
type Base struct {
	ID      PrimitiveID
	NetName string
}

func (b *Base) Ref() PrimitiveID { return b.ID }
func (b *Base) Net() string      { return b.NetName }

// PadKey identifies a pad by component designator and pad number.
type PadKey struct {
	Designator string `json:"component"`
	Number     string `json:"pad"`
}

func (k PadKey) String() string {
	return k.Designator + "." + k.Number
}

// Pad is a component terminal.
type Pad struct {
	Base
	Designator string
	Number     string
	Location   geom.Point
	Layer      Layer
	Size       geom.Size
	Rotation   float64 // degrees
	Shape      string  // rect, roundrect, circle, oval, ...
	HoleSize   float64
}

func (p *Pad) Kind() Kind       { return KindPad }
func (p *Pad) Length() float64  { return 0 }
func (p *Pad) Key() PadKey      { return PadKey{Designator: p.Designator, Number: p.Number} }
func (p *Pad) Describe() string { return "Pad " + p.Key().String() }

// SpansAllLayers reports whether the pad is plated through, or carries no
// layer information at all.
func (p *Pad) SpansAllLayers() bool {
	return p.HoleSize > 0 || p.Layer == ""
}

func (p *Pad) Terminals() []Terminal {
	return []Terminal{{Point: p.Location, Layer: p.Layer, AllLayers: p.SpansAllLayers()}}
}

// Contains reports whether pt lies on the pad's copper, grown by margin.
// Round and oval pads are treated as their inscribed stadium, everything
// else as the rotated rectangle.
func (p *Pad) Contains(pt geom.Point, margin float64) bool {
	local := pt.Sub(p.Location).Rotate(-p.Rotation)
	hw, hh := p.Size.Width/2, p.Size.Height/2
	switch p.Shape {
	case "circle":
		return local.Distance(geom.Point{}) <= hw+margin
	case "oval":
		// Stadium: distance to the centre segment along the long axis.
		r := min(hw, hh)
		ax, ay := max(hw-r, 0), max(hh-r, 0)
		cx := max(-ax, min(ax, local.X))
		cy := max(-ay, min(ay, local.Y))
		return local.Distance(geom.Pt(cx, cy)) <= r+margin
	default:
		return abs(local.X) <= hw+margin && abs(local.Y) <= hh+margin
	}
}

// Track is a straight copper segment.
type Track struct {
	Base
	Layer Layer
	Start geom.Point
	End   geom.Point
	Width float64
}

func (t *Track) Kind() Kind      { return KindTrack }
func (t *Track) Length() float64 { return t.Start.Distance(t.End) }

func (t *Track) Terminals() []Terminal {
	return []Terminal{{Point: t.Start, Layer: t.Layer}, {Point: t.End, Layer: t.Layer}}
}

func (t *Track) Describe() string {
	return fmt.Sprintf("Track L=%.3fmm", geom.MilsToMillimeters(t.Length()))
}

// Arc is a curved copper segment sweeping counter-clockwise from StartAngle
// to EndAngle. Start and End hold the endpoints; Derive fills them from the
// sweep when the source did not supply them.
type Arc struct {
	Base
	Layer      Layer
	Center     geom.Point
	Radius     float64
	StartAngle float64 // degrees
	EndAngle   float64 // degrees
	Start      geom.Point
	End        geom.Point
	Width      float64
}

func (a *Arc) Kind() Kind { return KindArc }

func (a *Arc) Length() float64 {
	return geom.ArcLength(a.Radius, a.StartAngle, a.EndAngle)
}

// Derive sets Start and End from the centre, radius and angles.
func (a *Arc) Derive() {
	a.Start = geom.PointOnCircle(a.Center, a.Radius, a.StartAngle)
	a.End = geom.PointOnCircle(a.Center, a.Radius, a.EndAngle)
}

func (a *Arc) Terminals() []Terminal {
	return []Terminal{{Point: a.Start, Layer: a.Layer}, {Point: a.End, Layer: a.Layer}}
}

func (a *Arc) Describe() string {
	return fmt.Sprintf("Arc R=%.3fmm", geom.MilsToMillimeters(a.Radius))
}

// Via is a plated hole joining copper layers. It has no planar length.
type Via struct {
	Base
	Location  geom.Point
	FromLayer Layer
	ToLayer   Layer
	HoleSize  float64
}

func (v *Via) Kind() Kind       { return KindVia }
func (v *Via) Length() float64  { return 0 }
func (v *Via) Describe() string { return "Via" }

func (v *Via) Terminals() []Terminal {
	return []Terminal{{Point: v.Location, Layer: v.FromLayer, AllLayers: true}}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
