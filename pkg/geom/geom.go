// Package geom holds the planar value types shared by the board model and the
// connectivity engine. All coordinates are in mils.
package geom

import (
	"fmt"
	"math"
)

// Unit conversion constants
const (
	MilsToMM = 0.0254     // 1 mil = 0.0254 mm
	MMToMils = 1 / 0.0254 // 1 mm ≈ 39.37 mils
)

// Point is a location on the board in mils.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rotate rotates p about the origin by deg degrees (counter-clockwise).
func (p Point) Rotate(deg float64) Point {
	if deg == 0 {
		return p
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	return Point{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Size is a width/height pair in mils.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MilsToMillimeters converts a length in mils to millimetres.
func MilsToMillimeters(mils float64) float64 {
	return mils * MilsToMM
}

// MillimetersToMils converts a length in millimetres to mils.
func MillimetersToMils(mm float64) float64 {
	return mm / MilsToMM
}
