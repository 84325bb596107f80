// Package testboard builds small synthetic boards shared by the package
// tests. The shapes reproduce measurements taken on a real two-layer board.
package testboard

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

const (
	front = board.Layer("F.Cu")
	back  = board.Layer("B.Cu")
)

// AVDD lengths in mils. U1.20 to C3.2 is 2.1 mm. The C3.2 to R2.1 track
// starts half a mil off the C3.2 pad centre, so U1.20 to R2.1 only
// resolves with tolerant merging, at 4.00922 mm.
const (
	AVDDLegA   = 40.0
	AVDDLegB   = 42.67716535
	AVDDGap    = 0.5
	AVDDLegC   = 75.16614175
	AVDDToC3MM = 2.1
	AVDDToR2MM = 4.00922
)

// PHC lengths in mils.
const (
	PHCToC44   = 148.0315
	PHCRun     = 500.0
	PHCRise    = 600.0
	PHCArcR    = 100.0
	PHCTail    = 502.3692
	PHCToC44MM = 3.76
	PHCToR29MM = 48.45
)

// GNDObjects is the number of primitives on the fragmented GND net.
const GNDObjects = 188

func pad(b *board.Board, net, des, num string, at geom.Point, layer board.Layer) *board.Pad {
	return b.AddPad(&board.Pad{
		Base:       board.Base{NetName: net},
		Designator: des,
		Number:     num,
		Location:   at,
		Layer:      layer,
		Size:       geom.Size{Width: 8, Height: 8},
		Shape:      "rect",
	})
}

func track(b *board.Board, net string, from, to geom.Point, layer board.Layer) *board.Track {
	return b.AddTrack(&board.Track{
		Base:  board.Base{NetName: net},
		Layer: layer,
		Start: from,
		End:   to,
		Width: 6,
	})
}

// AddAVDD adds the six AVDD objects: pads U1.20, C3.2, R2.1 and three tracks.
func AddAVDD(b *board.Board) {
	const net = "AVDD"
	u1 := geom.Pt(0, 0)
	bend := geom.Pt(AVDDLegA, 0)
	c3 := geom.Pt(AVDDLegA, AVDDLegB)
	tail := geom.Pt(AVDDLegA+AVDDGap, AVDDLegB)
	r2 := geom.Pt(AVDDLegA+AVDDGap+AVDDLegC, AVDDLegB)

	pad(b, net, "U1", "20", u1, front)
	track(b, net, u1, bend, front)
	track(b, net, bend, c3, front)
	pad(b, net, "C3", "2", c3, front)
	track(b, net, tail, r2, front)
	pad(b, net, "R2", "1", r2, front)
}

// AddPHC adds the PHC net: U1.62 to C44.1 on the front, then a via, a
// back-side run with a quarter arc, ending on the through-hole pad R29.1.
func AddPHC(b *board.Board) {
	const net = "PHC"
	const y0 = 2000.0
	u1 := geom.Pt(0, y0)
	c44 := geom.Pt(PHCToC44, y0)
	via := geom.Pt(PHCToC44+PHCRun, y0)
	rise := geom.Pt(via.X, y0+PHCRise)
	arcCenter := geom.Pt(via.X+PHCArcR, rise.Y)
	arcTop := geom.Pt(arcCenter.X, rise.Y+PHCArcR)
	r29 := geom.Pt(arcTop.X, arcTop.Y+PHCTail)

	pad(b, net, "U1", "62", u1, front)
	track(b, net, u1, c44, front)
	pad(b, net, "C44", "1", c44, front)
	track(b, net, c44, via, front)
	b.AddVia(&board.Via{
		Base:      board.Base{NetName: net},
		Location:  via,
		FromLayer: front,
		ToLayer:   back,
		HoleSize:  12,
	})
	track(b, net, via, rise, back)
	b.AddArc(&board.Arc{
		Base:       board.Base{NetName: net},
		Layer:      back,
		Center:     arcCenter,
		Radius:     PHCArcR,
		StartAngle: 90,
		EndAngle:   180,
		Start:      arcTop,
		End:        rise,
		Width:      6,
	})
	track(b, net, arcTop, r29, back)
	r := pad(b, net, "R29", "1", r29, "")
	r.HoleSize = 30
	r.Shape = "circle"
	r.Size = geom.Size{Width: 60, Height: 60}
}

// AddGND adds 188 GND objects: pads U1.66 and C28.2 and 186 short tracks
// that never touch each other.
func AddGND(b *board.Board) {
	const net = "GND"
	pad(b, net, "U1", "66", geom.Pt(0, -500), front)
	pad(b, net, "C28", "2", geom.Pt(5000, -500), front)
	track(b, net, geom.Pt(0, -500), geom.Pt(30, -500), front)
	for i := 1; i < GNDObjects-2; i++ {
		x := float64(i) * 25
		track(b, net, geom.Pt(x, -600), geom.Pt(x+10, -600), front)
	}
}

// AddCrossNet adds SW3.1 on net SW3 and C16.2 on net NetC16_2, each with a
// track leaving the pad.
func AddCrossNet(b *board.Board) {
	pad(b, "SW3", "SW3", "1", geom.Pt(-1000, 0), front)
	track(b, "SW3", geom.Pt(-1000, 0), geom.Pt(-1000, 100), front)
	pad(b, "NetC16_2", "C16", "2", geom.Pt(-2000, 0), front)
	track(b, "NetC16_2", geom.Pt(-2000, 0), geom.Pt(-2000, 100), front)
}

// AddPair adds a two-primitive net: test points TP1.1 and TP2.1 drawn on
// the same spot.
func AddPair(b *board.Board, net string) {
	pad(b, net, "TP1", "1", geom.Pt(-3000, 0), front)
	pad(b, net, "TP2", "1", geom.Pt(-3000, 0), front)
}

// Sample returns a board holding every fixture net.
func Sample() *board.Board {
	b := board.New("sample")
	AddAVDD(b)
	AddPHC(b)
	AddGND(b)
	AddCrossNet(b)
	return b
}

// MustIndex builds a net index or panics.
func MustIndex(b *board.Board) *board.NetIndex {
	idx, err := board.NewNetIndex(b)
	if err != nil {
		panic(fmt.Sprintf("testboard: %v", err))
	}
	return idx
}
