package board

import (
	"errors"
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

func TestBoardAssignsIDsInLoadOrder(t *testing.T) {
	b := New("ids")
	p := b.AddPad(&Pad{Base: Base{NetName: "N"}, Designator: "U1", Number: "1"})
	tr := b.AddTrack(&Track{Base: Base{NetName: "N"}, Start: geom.Pt(0, 0), End: geom.Pt(1, 0)})
	v := b.AddVia(&Via{Base: Base{NetName: "N"}})

	if p.Ref() != 0 || tr.Ref() != 1 || v.Ref() != 2 {
		t.Errorf("IDs = %d, %d, %d, want 0, 1, 2", p.Ref(), tr.Ref(), v.Ref())
	}
	if got, ok := b.Primitive(1); !ok || got != Primitive(tr) {
		t.Errorf("Primitive(1) = %v, %v, want the track", got, ok)
	}
	if _, ok := b.Primitive(3); ok {
		t.Error("Primitive(3) should not exist")
	}
}

func TestBoardValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func(b *Board)
		wantErr error
	}{
		{
			name: "valid",
			build: func(b *Board) {
				b.AddPad(&Pad{Base: Base{NetName: "N"}, Designator: "U1", Number: "1"})
			},
		},
		{
			name: "missing net",
			build: func(b *Board) {
				b.AddTrack(&Track{})
			},
			wantErr: ErrMissingNet,
		},
		{
			name: "repeated pad on one net",
			build: func(b *Board) {
				b.AddPad(&Pad{Base: Base{NetName: "GND"}, Designator: "U1", Number: "EP"})
				b.AddPad(&Pad{Base: Base{NetName: "GND"}, Designator: "U1", Number: "EP"})
			},
		},
		{
			name: "duplicate pad on different nets",
			build: func(b *Board) {
				b.AddPad(&Pad{Base: Base{NetName: "N"}, Designator: "U1", Number: "1"})
				b.AddPad(&Pad{Base: Base{NetName: "M"}, Designator: "U1", Number: "1"})
			},
			wantErr: ErrDuplicatePad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.name)
			tt.build(b)
			err := b.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPrimitiveLengths(t *testing.T) {
	tests := []struct {
		name string
		prim Primitive
		want float64
	}{
		{"pad", &Pad{}, 0},
		{"via", &Via{}, 0},
		{"track", &Track{Start: geom.Pt(0, 0), End: geom.Pt(3, 4)}, 5},
		{"arc quarter", &Arc{Radius: 10, StartAngle: 0, EndAngle: 90}, 5 * math.Pi},
		{"arc wraps", &Arc{Radius: 10, StartAngle: 270, EndAngle: 0}, 5 * math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.prim.Length(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Length() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddArcDerivesEndpoints(t *testing.T) {
	b := New("arc")
	a := b.AddArc(&Arc{Base: Base{NetName: "N"}, Center: geom.Pt(0, 0), Radius: 10, StartAngle: 0, EndAngle: 90})

	if a.Start.Distance(geom.Pt(10, 0)) > 1e-9 {
		t.Errorf("Start = %v, want (10, 0)", a.Start)
	}
	if a.End.Distance(geom.Pt(0, 10)) > 1e-9 {
		t.Errorf("End = %v, want (0, 10)", a.End)
	}
}

func TestTerminals(t *testing.T) {
	smd := &Pad{Layer: "F.Cu"}
	tht := &Pad{Layer: "F.Cu", HoleSize: 30}
	via := &Via{FromLayer: "F.Cu", ToLayer: "B.Cu"}
	back := &Track{Layer: "B.Cu"}

	tests := []struct {
		name string
		a, b Primitive
		want bool
	}{
		{"smd pad to back track", smd, back, false},
		{"tht pad to back track", tht, back, true},
		{"via to back track", via, back, true},
		{"same layer", &Track{Layer: "F.Cu"}, smd, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Terminals()[0].Compatible(tt.b.Terminals()[0])
			if got != tt.want {
				t.Errorf("Compatible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPadContains(t *testing.T) {
	rect := &Pad{Location: geom.Pt(100, 100), Size: geom.Size{Width: 20, Height: 10}, Shape: "rect"}
	rotated := &Pad{Location: geom.Pt(0, 0), Size: geom.Size{Width: 20, Height: 10}, Rotation: 90, Shape: "rect"}
	round := &Pad{Location: geom.Pt(0, 0), Size: geom.Size{Width: 20, Height: 20}, Shape: "circle"}
	oval := &Pad{Location: geom.Pt(0, 0), Size: geom.Size{Width: 40, Height: 10}, Shape: "oval"}

	tests := []struct {
		name   string
		pad    *Pad
		pt     geom.Point
		margin float64
		want   bool
	}{
		{"rect inside", rect, geom.Pt(109, 104), 0, true},
		{"rect outside", rect, geom.Pt(111, 100), 0, false},
		{"rect margin", rect, geom.Pt(111, 100), 2, true},
		{"rotated long axis is y", rotated, geom.Pt(0, 9), 0, true},
		{"rotated short axis is x", rotated, geom.Pt(9, 0), 0, false},
		{"circle corner excluded", round, geom.Pt(9, 9), 0, false},
		{"circle inside", round, geom.Pt(6, 6), 0, true},
		{"oval end cap", oval, geom.Pt(19, 0), 0, true},
		{"oval corner excluded", oval, geom.Pt(19, 4.9), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pad.Contains(tt.pt, tt.margin); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		prim Primitive
		want string
	}{
		{&Pad{Designator: "U1", Number: "20"}, "Pad U1.20"},
		{&Track{Start: geom.Pt(0, 0), End: geom.Pt(1000, 0)}, "Track L=25.400mm"},
		{&Arc{Radius: 100}, "Arc R=2.540mm"},
		{&Via{}, "Via"},
	}

	for _, tt := range tests {
		if got := tt.prim.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
