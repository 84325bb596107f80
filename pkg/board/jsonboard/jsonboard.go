// Package jsonboard reads and writes boards in the JSON export format:
// components with pads, tracks, arcs and vias, coordinates in mils.
package jsonboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

// Document is the top-level JSON object.
type Document struct {
	Components []Component `json:"components"`
	Tracks     []Track     `json:"tracks"`
	Arcs       []Arc       `json:"arcs"`
	Vias       []Via       `json:"vias"`
}

// Component groups the pads of one part.
type Component struct {
	Designator string `json:"designator"`
	Layer      Layer  `json:"layer,omitempty"`
	Pads       []Pad  `json:"pads"`
}

// Pad is one component pad.
type Pad struct {
	PadNumber PadNumber  `json:"padNumber"`
	NetName   string     `json:"netName"`
	Location  geom.Point `json:"location"`
	Layer     Layer      `json:"layer,omitempty"`
	Width     float64    `json:"width,omitempty"`
	Height    float64    `json:"height,omitempty"`
	HoleSize  float64    `json:"holeSize,omitempty"`
	Rotation  float64    `json:"rotation,omitempty"`
	Shape     string     `json:"shape,omitempty"`
}

// Track is a straight segment.
type Track struct {
	Start   geom.Point `json:"start"`
	End     geom.Point `json:"end"`
	NetName string     `json:"netName"`
	Layer   Layer      `json:"layer"`
	Width   float64    `json:"width,omitempty"`
	Length  float64    `json:"length"`
}

// Arc is a counter-clockwise arc with its measured endpoints.
type Arc struct {
	Center     geom.Point `json:"center"`
	Radius     float64    `json:"radius"`
	StartAngle float64    `json:"startAngle"`
	EndAngle   float64    `json:"endAngle"`
	Start      geom.Point `json:"start"`
	End        geom.Point `json:"end"`
	NetName    string     `json:"netName"`
	Layer      Layer      `json:"layer"`
	Width      float64    `json:"width,omitempty"`
	Length     float64    `json:"length"`
}

// Via joins two layers.
type Via struct {
	Location  geom.Point `json:"location"`
	NetName   string     `json:"netName"`
	FromLayer Layer      `json:"fromLayer"`
	ToLayer   Layer      `json:"toLayer"`
	HoleSize  float64    `json:"holeSize,omitempty"`
}

// Layer accepts both numeric and named layers.
type Layer string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Layer) UnmarshalJSON(data []byte) error {
	s, err := scalar(data)
	if err != nil {
		return fmt.Errorf("layer: %w", err)
	}
	*l = Layer(s)
	return nil
}

// PadNumber accepts both numeric and named pad numbers.
type PadNumber string

// UnmarshalJSON implements json.Unmarshaler.
func (p *PadNumber) UnmarshalJSON(data []byte) error {
	s, err := scalar(data)
	if err != nil {
		return fmt.Errorf("padNumber: %w", err)
	}
	*p = PadNumber(s)
	return nil
}

func scalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// normalizeShape maps export shape names onto the names board.Pad knows.
func normalizeShape(s string) string {
	switch strings.ToLower(s) {
	case "round", "circle", "circular":
		return "circle"
	case "oval", "obround", "oblong":
		return "oval"
	default:
		return "rect"
	}
}

// LoadFile reads a JSON board file.
func LoadFile(path string) (*board.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	b, err := Decode(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, err
	}
	b.Source = path
	return b, nil
}

// Decode reads a board document. Items without a net, and tracks or arcs
// with no length, are skipped.
func Decode(r io.Reader, name string) (*board.Board, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse board JSON: %w", err)
	}
	return doc.Board(name)
}

// Board converts the document into a validated board.
func (doc *Document) Board(name string) (*board.Board, error) {
	b := board.New(name)

	for _, c := range doc.Components {
		for _, p := range c.Pads {
			if p.NetName == "" {
				continue
			}
			layer := p.Layer
			if layer == "" {
				layer = c.Layer
			}
			b.AddPad(&board.Pad{
				Base:       board.Base{NetName: p.NetName},
				Designator: c.Designator,
				Number:     string(p.PadNumber),
				Location:   p.Location,
				Layer:      board.Layer(layer),
				Size:       geom.Size{Width: p.Width, Height: p.Height},
				Rotation:   p.Rotation,
				Shape:      normalizeShape(p.Shape),
				HoleSize:   p.HoleSize,
			})
		}
	}

	for _, t := range doc.Tracks {
		track := &board.Track{
			Base:  board.Base{NetName: t.NetName},
			Layer: board.Layer(t.Layer),
			Start: t.Start,
			End:   t.End,
			Width: t.Width,
		}
		if t.NetName == "" || track.Length() <= 1e-6 {
			continue
		}
		b.AddTrack(track)
	}

	for _, a := range doc.Arcs {
		arc := &board.Arc{
			Base:       board.Base{NetName: a.NetName},
			Layer:      board.Layer(a.Layer),
			Center:     a.Center,
			Radius:     a.Radius,
			StartAngle: a.StartAngle,
			EndAngle:   a.EndAngle,
			Start:      a.Start,
			End:        a.End,
			Width:      a.Width,
		}
		if a.NetName == "" || arc.Length() <= 1e-6 {
			continue
		}
		b.AddArc(arc)
	}

	for _, v := range doc.Vias {
		if v.NetName == "" {
			continue
		}
		b.AddVia(&board.Via{
			Base:      board.Base{NetName: v.NetName},
			Location:  v.Location,
			FromLayer: board.Layer(v.FromLayer),
			ToLayer:   board.Layer(v.ToLayer),
			HoleSize:  v.HoleSize,
		})
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// FromBoard converts a board back into a document. Pads are grouped by
// component in order of first appearance.
func FromBoard(b *board.Board) *Document {
	doc := &Document{}
	at := make(map[string]int)
	for _, p := range b.Pads {
		i, ok := at[p.Designator]
		if !ok {
			i = len(doc.Components)
			at[p.Designator] = i
			doc.Components = append(doc.Components, Component{Designator: p.Designator})
		}
		doc.Components[i].Pads = append(doc.Components[i].Pads, Pad{
			PadNumber: PadNumber(p.Number),
			NetName:   p.NetName,
			Location:  p.Location,
			Layer:     Layer(p.Layer),
			Width:     p.Size.Width,
			Height:    p.Size.Height,
			HoleSize:  p.HoleSize,
			Rotation:  p.Rotation,
			Shape:     p.Shape,
		})
	}
	for _, t := range b.Tracks {
		doc.Tracks = append(doc.Tracks, Track{
			Start: t.Start, End: t.End, NetName: t.NetName,
			Layer: Layer(t.Layer), Width: t.Width, Length: t.Length(),
		})
	}
	for _, a := range b.Arcs {
		doc.Arcs = append(doc.Arcs, Arc{
			Center: a.Center, Radius: a.Radius, StartAngle: a.StartAngle, EndAngle: a.EndAngle,
			Start: a.Start, End: a.End, NetName: a.NetName,
			Layer: Layer(a.Layer), Width: a.Width, Length: a.Length(),
		})
	}
	for _, v := range b.Vias {
		doc.Vias = append(doc.Vias, Via{
			Location: v.Location, NetName: v.NetName,
			FromLayer: Layer(v.FromLayer), ToLayer: Layer(v.ToLayer), HoleSize: v.HoleSize,
		})
	}
	return doc
}

// Encode writes b as indented JSON.
func Encode(w io.Writer, b *board.Board) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(FromBoard(b))
}

// WriteFile writes b to path.
func WriteFile(path string, b *board.Board) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Encode(f, b); err != nil {
		f.Close()
		return fmt.Errorf("failed to write board JSON: %w", err)
	}
	return f.Close()
}
