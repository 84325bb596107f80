package kicad

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/trace"
)

const sampleBoard = `(kicad_pcb (version 20240108) (generator "pcbnew")
  (general (thickness 1.6))
  (net 0 "")
  (net 1 "AVDD")
  (net 2 "GND")
  (footprint "Package_QFP:LQFP-64" (layer "F.Cu") (at 10 10)
    (property "Reference" "U1" (at 0 -5 0) (layer "F.SilkS"))
    (property "Value" "MCU" (at 0 5 0) (layer "F.Fab"))
    (pad "1" smd rect (at 0 0) (size 0.2 0.2) (layers "F.Cu" "F.Paste" "F.Mask") (net 1 "AVDD"))
    (pad "2" smd rect (at 0.5 0) (size 0.2 0.2) (layers "F.Cu" "F.Paste" "F.Mask") (net 0 ""))
  )
  (footprint "Capacitor_SMD:C_0402" (layer "F.Cu") (at 12 10 90)
    (property "Reference" "C3")
    (pad "2" smd roundrect (at 0.1 0 90) (size 0.2 0.3) (layers "F.Cu") (net 1 "AVDD"))
  )
  (footprint "TestPoint:THT" (layer "F.Cu") (at 20 20)
    (fp_text reference "TP1" (at 0 0) (layer "F.SilkS"))
    (pad "1" thru_hole circle (at 0 0) (size 1.5 1.5) (drill 0.8) (layers "*.Cu" "*.Mask") (net 2 "GND"))
  )
  (segment (start 10 10) (end 12 10) (width 0.25) (layer "F.Cu") (net 1))
  (segment (start 12 10) (end 12 9.9) (width 0.25) (layer "F.Cu") (net 1))
  (segment (start 20 20) (end 21 20) (width 0.25) (layer "F.Cu") (net 2))
  (segment (start 30 30) (end 31 30) (width 0.25) (layer "F.Cu") (net 0))
  (segment (start 40 40) (end 40 40) (width 0.25) (layer "F.Cu") (net 2))
  (arc (start 21 20) (mid 21.70710678 20.29289322) (end 22 21) (width 0.25) (layer "F.Cu") (net 2))
  (via (at 22 21) (size 0.6) (drill 0.3) (layers "F.Cu" "B.Cu") (net 2))
  (zone (net 2) (net_name "GND") (layer "B.Cu"))
)
`

func TestParse(t *testing.T) {
	b, err := Parse(strings.NewReader(sampleBoard), "sample")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := board.Stats{Pads: 3, Tracks: 3, Arcs: 1, Vias: 1}
	if got := b.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	if b.Name != "sample" {
		t.Errorf("Name = %q, want sample", b.Name)
	}

	idx, err := board.NewNetIndex(b)
	if err != nil {
		t.Fatalf("NewNetIndex() error = %v", err)
	}

	t.Run("footprint rotation", func(t *testing.T) {
		pad, err := idx.Pad("C3", "2")
		if err != nil {
			t.Fatalf("Pad() error = %v", err)
		}
		wantLoc := geom.Pt(geom.MillimetersToMils(12), geom.MillimetersToMils(9.9))
		if pad.Location.Distance(wantLoc) > 1e-6 {
			t.Errorf("Location = %v, want %v", pad.Location, wantLoc)
		}
		if pad.Rotation != -90 || pad.Shape != "rect" || pad.Layer != "F.Cu" {
			t.Errorf("pad = %+v", pad)
		}
		if math.Abs(pad.Size.Height-geom.MillimetersToMils(0.3)) > 1e-9 {
			t.Errorf("Size = %+v", pad.Size)
		}
	})

	t.Run("through hole pad", func(t *testing.T) {
		pad, err := idx.Pad("TP1", "1")
		if err != nil {
			t.Fatalf("Pad() error = %v", err)
		}
		if !pad.SpansAllLayers() || pad.Layer != "" {
			t.Errorf("TP1.1 should span all layers: %+v", pad)
		}
		if math.Abs(pad.HoleSize-geom.MillimetersToMils(0.8)) > 1e-9 {
			t.Errorf("HoleSize = %v", pad.HoleSize)
		}
	})

	t.Run("unnetted pads skipped", func(t *testing.T) {
		if _, err := idx.Pad("U1", "2"); err == nil {
			t.Error("U1.2 has no net and should not be loaded")
		}
	})

	t.Run("arc", func(t *testing.T) {
		arc := b.Arcs[0]
		if math.Abs(geom.MilsToMillimeters(arc.Radius)-1) > 1e-6 {
			t.Errorf("Radius = %v mm, want 1", geom.MilsToMillimeters(arc.Radius))
		}
		if got := geom.MilsToMillimeters(arc.Length()); math.Abs(got-math.Pi/2) > 1e-6 {
			t.Errorf("Length = %v mm, want %v", got, math.Pi/2)
		}
	})

	t.Run("via", func(t *testing.T) {
		via := b.Vias[0]
		if via.FromLayer != "F.Cu" || via.ToLayer != "B.Cu" || via.NetName != "GND" {
			t.Errorf("via = %+v", via)
		}
	})

	t.Run("path", func(t *testing.T) {
		res, err := trace.NewResolver(idx).ResolvePath("AVDD", "U1", "1", "C3", "2")
		if err != nil {
			t.Fatalf("ResolvePath() error = %v", err)
		}
		if math.Abs(res.LengthMM-2.1) > 1e-6 {
			t.Errorf("LengthMM = %v, want 2.1", res.LengthMM)
		}
		if len(res.Elements) != 4 {
			t.Errorf("got %d elements, want 4", len(res.Elements))
		}
	})
}

func TestParseNamedNets(t *testing.T) {
	src := `(kicad_pcb (version 20250114)
  (footprint "R" (layer "F.Cu") (at 0 0)
    (property "Reference" "R1")
    (pad "1" smd rect (at 0 0) (size 0.5 0.5) (layers "F.Cu") (net "SIG")))
  (footprint "R" (layer "F.Cu") (at 5 0)
    (property "Reference" "R2")
    (pad "1" smd rect (at 0 0) (size 0.5 0.5) (layers "F.Cu") (net "SIG")))
  (segment (start 0 0) (end 5 0) (width 0.2) (layer "F.Cu") (net "SIG")))`

	b, err := Parse(strings.NewReader(src), "named")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(b.Tracks) != 1 || b.Tracks[0].NetName != "SIG" {
		t.Fatalf("tracks = %+v", b.Tracks)
	}
	for _, p := range b.Pads {
		if p.NetName != "SIG" {
			t.Errorf("pad %s net = %q, want SIG", p.Key(), p.NetName)
		}
	}
}

func TestParseRepeatedPadNumber(t *testing.T) {
	src := `(kicad_pcb (version 20240108)
  (net 0 "")
  (net 1 "GND")
  (net 2 "VCC")
  (footprint "Package_DFN:DFN-8-1EP" (layer "F.Cu") (at 0 0)
    (property "Reference" "U1")
    (pad "1" smd rect (at -1 -1) (size 0.3 0.3) (layers "F.Cu") (net 2 "VCC"))
    (pad "EP" smd rect (at 0 -0.5) (size 0.5 0.5) (layers "F.Cu") (net 1 "GND"))
    (pad "EP" smd rect (at 0 0.5) (size 0.5 0.5) (layers "F.Cu") (net 1 "GND")))
  (footprint "C" (layer "F.Cu") (at 3 0.5)
    (property "Reference" "C1")
    (pad "2" smd rect (at 0 0) (size 0.5 0.5) (layers "F.Cu") (net 1 "GND")))
  (footprint "C" (layer "F.Cu") (at 3 -1)
    (property "Reference" "C2")
    (pad "1" smd rect (at 0 0) (size 0.5 0.5) (layers "F.Cu") (net 2 "VCC")))
  (segment (start 0 0.5) (end 3 0.5) (width 0.2) (layer "F.Cu") (net 1))
  (segment (start -1 -1) (end 3 -1) (width 0.2) (layer "F.Cu") (net 2)))`

	b, err := Parse(strings.NewReader(src), "dfn")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	idx, err := board.NewNetIndex(b)
	if err != nil {
		t.Fatalf("NewNetIndex() error = %v", err)
	}

	r := trace.NewResolver(idx)
	res, err := r.ResolvePath("GND", "U1", "EP", "C1", "2")
	if err != nil {
		t.Fatalf("ResolvePath(U1.EP, C1.2) error = %v", err)
	}
	if math.Abs(res.LengthMM-3) > 1e-6 {
		t.Errorf("U1.EP to C1.2 = %v mm, want 3", res.LengthMM)
	}
	if _, err := r.ResolvePath("VCC", "U1", "1", "C2", "1"); err != nil {
		t.Errorf("ResolvePath(U1.1, C2.1) error = %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", ``, "empty file"},
		{"wrong root", `(kicad_sch (version 1))`, "not a KiCad PCB file"},
		{"unbalanced", `(kicad_pcb (segment (start 0 0)`, "failed to parse s-expression"},
		{"missing end", `(kicad_pcb (net 1 "A") (segment (start 0 0) (layer "F.Cu") (net 1)))`, "missing required 'end'"},
		{"bad number", `(kicad_pcb (net 1 "A") (segment (start x 0) (end 1 1) (layer "F.Cu") (net 1)))`, "failed to parse start X"},
		{"missing layer", `(kicad_pcb (net 1 "A") (segment (start 0 0) (end 1 1) (net 1)))`, "missing required 'layer'"},
		{"no reference", `(kicad_pcb (footprint "R" (at 0 0) (pad "1" smd rect (at 0 0) (size 1 1) (layers "F.Cu") (net 1 "A"))))`, "missing footprint reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), tt.name)
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.kicad_pcb")
	if err := os.WriteFile(path, []byte(sampleBoard), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if b.Name != "demo" || b.Source != path {
		t.Errorf("Name = %q, Source = %q", b.Name, b.Source)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.kicad_pcb")); err == nil {
		t.Error("ParseFile() on a missing file should fail")
	}
}

func TestUnquote(t *testing.T) {
	tests := map[string]string{
		`"F.Cu"`:          "F.Cu",
		`F.Cu`:            "F.Cu",
		`"say \"hi\""`:    `say "hi"`,
		`""`:              "",
		`"bad \q escape"`: `bad \q escape`,
	}
	for in, want := range tests {
		if got := unquote(in); got != want {
			t.Errorf("unquote(%s) = %q, want %q", in, got, want)
		}
	}
}
