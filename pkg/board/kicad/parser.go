// Package kicad loads the copper of a KiCad .kicad_pcb board (segments,
// arcs, vias and footprint pads) into a board.Board. Coordinates are
// converted from millimetres to mils.
package kicad

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

// allCopper is the KiCad wildcard for pads present on every copper layer.
const allCopper = "*.Cu"

// netTable maps KiCad net numbers to names.
type netTable map[int]string

// ParseFile reads and parses a KiCad board file.
func ParseFile(filename string) (*board.Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	b, err := Parse(file, strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if err != nil {
		return nil, err
	}
	b.Source = filename
	return b, nil
}

// Parse reads a KiCad board from r.
func Parse(r io.Reader, name string) (*board.Board, error) {
	sexps, err := parseSexp(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	root := sexps[0]
	rootName, err := getNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	nets := parseNets(root)
	b := board.New(name)

	for _, fp := range findAllNodes(root, "footprint") {
		if err := parseFootprint(b, fp, nets); err != nil {
			return nil, fmt.Errorf("failed to parse footprint: %w", err)
		}
	}
	// KiCad 5 boards call footprints modules.
	for _, fp := range findAllNodes(root, "module") {
		if err := parseFootprint(b, fp, nets); err != nil {
			return nil, fmt.Errorf("failed to parse module: %w", err)
		}
	}
	for _, seg := range findAllNodes(root, "segment") {
		if err := parseSegment(b, seg, nets); err != nil {
			return nil, fmt.Errorf("failed to parse segment: %w", err)
		}
	}
	for _, arc := range findAllNodes(root, "arc") {
		if err := parseArc(b, arc, nets); err != nil {
			return nil, fmt.Errorf("failed to parse arc: %w", err)
		}
	}
	for _, via := range findAllNodes(root, "via") {
		if err := parseVia(b, via, nets); err != nil {
			return nil, fmt.Errorf("failed to parse via: %w", err)
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// parseNets reads the (net N "name") table.
func parseNets(root *Node) netTable {
	nets := make(netTable)
	for _, n := range findAllNodes(root, "net") {
		num, err := getFloat(n, 1)
		if err != nil {
			continue
		}
		name, err := getString(n, 2)
		if err != nil {
			continue
		}
		nets[int(num)] = name
	}
	return nets
}

// netName resolves a (net ...) child of n. Older files reference nets by
// number, newer ones by name, and pads carry both.
func netName(n *Node, nets netTable) string {
	nn, found := findNode(n, "net")
	if !found {
		return ""
	}
	if name, err := getString(nn, 2); err == nil {
		return name
	}
	ref, err := getString(nn, 1)
	if err != nil {
		return ""
	}
	if num, err := strconv.Atoi(ref); err == nil {
		return nets[num]
	}
	return ref
}

func getLayer(n *Node) (board.Layer, error) {
	ln, found := findNode(n, "layer")
	if !found {
		return "", fmt.Errorf("missing required 'layer' field")
	}
	layer, err := getString(ln, 1)
	if err != nil {
		return "", fmt.Errorf("failed to parse layer: %w", err)
	}
	return board.Layer(layer), nil
}

// parseSegment reads (segment (start x y) (end x y) (width w) (layer l) (net n)).
func parseSegment(b *board.Board, n *Node, nets netTable) error {
	track := &board.Track{Base: board.Base{NetName: netName(n, nets)}}

	var err error
	if track.Start, err = getPoint(n, "start"); err != nil {
		return err
	}
	if track.End, err = getPoint(n, "end"); err != nil {
		return err
	}
	if track.Layer, err = getLayer(n); err != nil {
		return err
	}
	if track.Width, _, err = getLength(n, "width"); err != nil {
		return err
	}

	if track.NetName == "" || track.Length() <= 1e-6 {
		return nil
	}
	b.AddTrack(track)
	return nil
}

// parseArc reads (arc (start x y) (mid x y) (end x y) (width w) (layer l) (net n)).
func parseArc(b *board.Board, n *Node, nets netTable) error {
	net := netName(n, nets)

	start, err := getPoint(n, "start")
	if err != nil {
		return err
	}
	mid, err := getPoint(n, "mid")
	if err != nil {
		return err
	}
	end, err := getPoint(n, "end")
	if err != nil {
		return err
	}
	layer, err := getLayer(n)
	if err != nil {
		return err
	}
	width, _, err := getLength(n, "width")
	if err != nil {
		return err
	}
	if net == "" {
		return nil
	}

	center, radius, startDeg, endDeg, err := geom.ArcThrough(start, mid, end)
	if err != nil {
		// Degenerate arc; treat it as straight copper.
		if start.Distance(end) <= 1e-6 {
			return nil
		}
		b.AddTrack(&board.Track{
			Base: board.Base{NetName: net}, Layer: layer,
			Start: start, End: end, Width: width,
		})
		return nil
	}

	arc := &board.Arc{
		Base:       board.Base{NetName: net},
		Layer:      layer,
		Center:     center,
		Radius:     radius,
		StartAngle: startDeg,
		EndAngle:   endDeg,
		Start:      start,
		End:        end,
		Width:      width,
	}
	if arc.Length() <= 1e-6 {
		return nil
	}
	b.AddArc(arc)
	return nil
}

// parseVia reads (via (at x y) (size s) (drill d) (layers a b) (net n)).
func parseVia(b *board.Board, n *Node, nets netTable) error {
	net := netName(n, nets)
	at, err := getPoint(n, "at")
	if err != nil {
		return err
	}

	via := &board.Via{Base: board.Base{NetName: net}, Location: at}
	if dn, found := findNode(n, "drill"); found {
		if d, ok := getFirstFloat(dn); ok {
			via.HoleSize = geom.MillimetersToMils(d)
		}
	}
	if ln, found := findNode(n, "layers"); found {
		layers := getStrings(ln)
		if len(layers) > 0 {
			via.FromLayer = board.Layer(layers[0])
			via.ToLayer = board.Layer(layers[len(layers)-1])
		}
	}

	if net == "" {
		return nil
	}
	b.AddVia(via)
	return nil
}

// parseFootprint adds the netted pads of a footprint. Pad positions are
// stored relative to the footprint and rotated with it.
func parseFootprint(b *board.Board, n *Node, nets netTable) error {
	origin, err := getPoint(n, "at")
	if err != nil {
		return err
	}
	rotation := getAngle(n)
	reference := footprintReference(n)
	if reference == "" {
		return fmt.Errorf("missing footprint reference")
	}

	for _, pn := range findAllNodes(n, "pad") {
		pad, err := parsePad(pn, nets)
		if err != nil {
			return fmt.Errorf("failed to parse pad of %s: %w", reference, err)
		}
		if pad == nil {
			continue
		}
		pad.Designator = reference
		pad.Location = origin.Add(pad.Location.Rotate(-rotation))
		b.AddPad(pad)
	}
	return nil
}

// footprintReference returns the designator from (property "Reference" ...)
// or, for KiCad 6 files, (fp_text reference ...).
func footprintReference(n *Node) string {
	for _, prop := range findAllNodes(n, "property") {
		name, err := getString(prop, 1)
		if err != nil || name != "Reference" {
			continue
		}
		if ref, err := getString(prop, 2); err == nil {
			return ref
		}
	}
	for _, text := range findAllNodes(n, "fp_text") {
		kind, err := getString(text, 1)
		if err != nil || kind != "reference" {
			continue
		}
		if ref, err := getString(text, 2); err == nil {
			return ref
		}
	}
	return ""
}

// parsePad reads (pad "1" thru_hole circle (at x y [angle]) (size w h)
// (drill d) (layers ...) (net n "name")). It returns nil for unnetted pads.
// Location is left footprint-relative.
func parsePad(n *Node, nets netTable) (*board.Pad, error) {
	number, err := getString(n, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	padType, err := getString(n, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}
	shape, err := getString(n, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}

	net := netName(n, nets)
	if net == "" {
		return nil, nil
	}

	local, err := getPoint(n, "at")
	if err != nil {
		return nil, err
	}
	pad := &board.Pad{
		Base:     board.Base{NetName: net},
		Number:   number,
		Location: local,
		// KiCad angles turn clockwise on screen.
		Rotation: -getAngle(n),
		Shape:    normalizeShape(shape),
	}

	if sn, found := findNode(n, "size"); found {
		w, err := getFloat(sn, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pad width: %w", err)
		}
		h, err := getFloat(sn, 2)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pad height: %w", err)
		}
		pad.Size = geom.Size{Width: geom.MillimetersToMils(w), Height: geom.MillimetersToMils(h)}
	}

	if padType == "thru_hole" {
		if dn, found := findNode(n, "drill"); found {
			if d, ok := getFirstFloat(dn); ok {
				pad.HoleSize = geom.MillimetersToMils(d)
			}
		}
	}

	if ln, found := findNode(n, "layers"); found {
		for _, l := range getStrings(ln) {
			if l == allCopper {
				pad.Layer = ""
				break
			}
			if strings.HasSuffix(l, ".Cu") && pad.Layer == "" {
				pad.Layer = board.Layer(l)
			}
		}
	}
	return pad, nil
}

func normalizeShape(s string) string {
	switch s {
	case "circle":
		return "circle"
	case "oval":
		return "oval"
	default:
		return "rect"
	}
}
