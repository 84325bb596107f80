package geom

import (
	"errors"
	"math"
)

// ErrCollinear is returned when three points do not define a circle.
var ErrCollinear = errors.New("geom: points are collinear")

// Sweep returns the counter-clockwise sweep in degrees from start to end.
// A negative difference wraps by 360.
func Sweep(startDeg, endDeg float64) float64 {
	sweep := endDeg - startDeg
	if sweep < 0 {
		sweep += 360
	}
	return sweep
}

// ArcLength returns radius × sweep in radians.
func ArcLength(radius, startDeg, endDeg float64) float64 {
	return radius * Sweep(startDeg, endDeg) * math.Pi / 180
}

// PointOnCircle returns the point at angle deg on the circle.
func PointOnCircle(center Point, radius, deg float64) Point {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Point{X: center.X + radius*c, Y: center.Y + radius*s}
}

// AngleOf returns the angle of p around center in degrees, in [0, 360).
func AngleOf(center, p Point) float64 {
	deg := math.Atan2(p.Y-center.Y, p.X-center.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Circumcircle returns the circle passing through a, b and c.
func Circumcircle(a, b, c Point) (Point, float64, error) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		return Point{}, 0, ErrCollinear
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	center := Point{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}
	return center, center.Distance(a), nil
}

// ArcThrough describes the arc from start through mid to end as a
// counter-clockwise sweep. For clockwise input the start and end angles are
// swapped so the sweep still covers the same copper.
func ArcThrough(start, mid, end Point) (center Point, radius, startDeg, endDeg float64, err error) {
	center, radius, err = Circumcircle(start, mid, end)
	if err != nil {
		return Point{}, 0, 0, 0, err
	}
	startDeg = AngleOf(center, start)
	midDeg := AngleOf(center, mid)
	endDeg = AngleOf(center, end)
	if Sweep(startDeg, midDeg) > Sweep(startDeg, endDeg) {
		startDeg, endDeg = endDeg, startDeg
	}
	return center, radius, startDeg, endDeg, nil
}
