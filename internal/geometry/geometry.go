package geometry

import "math"

// Point is a 2D position in CSS pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// IsZero reports whether p is the origin
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Distance returns the euclidean distance between two points
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Rect is the client-space bounding box of the viewport element,
// as reported by getBoundingClientRect on the frontend
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measured reports whether the rect describes a laid-out element.
// A zero or negative size means the container has not been mounted yet.
func (r Rect) Measured() bool {
	return r.Width > 0 && r.Height > 0 &&
		!math.IsNaN(r.Left) && !math.IsNaN(r.Top) &&
		!math.IsInf(r.Width, 0) && !math.IsInf(r.Height, 0)
}

// Clamp limits v to [lo, hi]. NaN is returned unchanged so callers can
// decide on their own fallback.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
