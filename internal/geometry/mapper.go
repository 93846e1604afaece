package geometry

import "math"

// DefaultPercent is returned for horizontal percentages when the viewport
// has no layout yet
const DefaultPercent = 50.0

// Mapper converts client coordinates delivered with pointer events into
// viewport-local and image-space coordinates
type Mapper struct {
	bounds Rect
}

// NewMapper creates a mapper for the given viewport bounds
func NewMapper(bounds Rect) *Mapper {
	return &Mapper{bounds: bounds}
}

// SetBounds updates the viewport rectangle after a layout change
func (m *Mapper) SetBounds(bounds Rect) {
	m.bounds = bounds
}

// Bounds returns the current viewport rectangle
func (m *Mapper) Bounds() Rect {
	return m.bounds
}

// Measured reports whether the viewport has been laid out
func (m *Mapper) Measured() bool {
	return m.bounds.Measured()
}

// PercentX maps clientX to a percentage of the viewport width, clamped to [0, 100].
// Returns DefaultPercent when the viewport is unmeasured.
func (m *Mapper) PercentX(clientX float64) float64 {
	if !m.Measured() || math.IsNaN(clientX) {
		return DefaultPercent
	}
	p := (clientX - m.bounds.Left) / m.bounds.Width * 100
	return Clamp(p, 0, 100)
}

// Local maps a client point into viewport-local pixels clamped to the
// viewport rectangle. ok is false when the viewport is unmeasured.
func (m *Mapper) Local(client Point) (p Point, ok bool) {
	if !m.Measured() || math.IsNaN(client.X) || math.IsNaN(client.Y) {
		return Point{}, false
	}
	return Point{
		X: Clamp(client.X-m.bounds.Left, 0, m.bounds.Width),
		Y: Clamp(client.Y-m.bounds.Top, 0, m.bounds.Height),
	}, true
}

// Normalized maps a client point to [0,1]x[0,1] viewport coordinates
func (m *Mapper) Normalized(client Point) (Point, bool) {
	local, ok := m.Local(client)
	if !ok {
		return Point{}, false
	}
	return Point{X: local.X / m.bounds.Width, Y: local.Y / m.bounds.Height}, true
}

// ToImage maps a viewport-local point into the unscaled image space of
// content drawn under translate(pan) scale(zoom). Zoom values below the
// rest scale are treated as 1.
func ToImage(local Point, zoom float64, pan Point) Point {
	if zoom < 1 || math.IsNaN(zoom) {
		zoom = 1
	}
	return Point{
		X: (local.X - pan.X) / zoom,
		Y: (local.Y - pan.Y) / zoom,
	}
}

// ToViewport is the inverse of ToImage
func ToViewport(img Point, zoom float64, pan Point) Point {
	if zoom < 1 || math.IsNaN(zoom) {
		zoom = 1
	}
	return Point{
		X: img.X*zoom + pan.X,
		Y: img.Y*zoom + pan.Y,
	}
}
