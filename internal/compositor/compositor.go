package compositor

import (
	"fmt"
	"math"
	"strconv"

	"spacezoom-desktop/internal/geometry"
	"spacezoom-desktop/internal/quality"
	"spacezoom-desktop/internal/viewport"
)

// Source is one image slot as reported by the image element
type Source struct {
	URL     string `json:"url"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Input is everything a frame is computed from
type Input struct {
	State   viewport.State
	Base    Source
	Overlay Source

	// SwipePreview overrides the committed swipe percentage while a
	// divider drag is in flight
	SwipePreview *float64

	// Preload is the URL of a tier that is requested but not yet displayed
	Preload string
}

// Layer is the declarative style of one stacked image element
type Layer struct {
	Src      string  `json:"src"`
	Opacity  float64 `json:"opacity"`
	ClipPath string  `json:"clipPath,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Divider is the swipe handle drawn over both layers
type Divider struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// Lens is the spyglass ring drawn outside the zoom transform, in
// viewport-local pixels
type Lens struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Frame is the full set of rendering instructions for one paint
type Frame struct {
	Transform string         `json:"transform"`
	Zoom      float64        `json:"zoom"`
	Pan       geometry.Point `json:"pan"`
	Mode      viewport.Mode  `json:"mode,omitempty"`

	Base    Layer    `json:"base"`
	Overlay *Layer   `json:"overlay,omitempty"`
	Divider *Divider `json:"divider,omitempty"`
	Lens    *Lens    `json:"lens,omitempty"`

	Loading    bool         `json:"loading"`
	Hint       bool         `json:"hint"`
	Grid       bool         `json:"grid"`
	Tier       quality.Tier `json:"tier"`
	TierLabel  string       `json:"tierLabel"`
	Preload    string       `json:"preload,omitempty"`
	CanZoomIn  bool         `json:"canZoomIn"`
	CanZoomOut bool         `json:"canZoomOut"`
}

// Compose computes the frame for the given input. It has no side effects.
func Compose(in Input) Frame {
	st := in.State
	loading := in.Base.Loading || in.Overlay.Loading

	f := Frame{
		Transform:  Transform(st.Zoom, st.Pan),
		Zoom:       st.Zoom,
		Pan:        st.Pan,
		Base:       Layer{Src: in.Base.URL, Opacity: 1, Error: in.Base.Error},
		Loading:    loading,
		Hint:       !loading && st.HintVisible(),
		Grid:       st.ShowGrid(),
		Tier:       st.Tier(),
		TierLabel:  st.Tier().Label(),
		Preload:    in.Preload,
		CanZoomIn:  st.CanZoomIn(),
		CanZoomOut: st.CanZoomOut(),
	}
	if !st.Config().Compare {
		return f
	}

	f.Mode = st.Mode
	overlay := Layer{Src: in.Overlay.URL, Opacity: 1, Error: in.Overlay.Error}
	switch st.Mode {
	case viewport.Swipe:
		pct := st.SwipePercent
		if in.SwipePreview != nil {
			pct = geometry.Clamp(*in.SwipePreview, 0, 100)
		}
		overlay.ClipPath = SwipeClip(pct)
		f.Divider = &Divider{Percent: pct, Label: PercentLabel(pct)}
	case viewport.Opacity:
		overlay.Opacity = st.OpacityBlend / 100
	case viewport.Spyglass:
		overlay.ClipPath = SpyglassClip(st)
		if st.Cursor != nil {
			f.Lens = &Lens{X: st.Cursor.X, Y: st.Cursor.Y, Radius: st.SpyglassRadius}
		}
	}
	f.Overlay = &overlay
	return f
}

// Transform renders the outer zoom/pan transform shared by both layers
func Transform(zoom float64, pan geometry.Point) string {
	return fmt.Sprintf("translate(%spx, %spx) scale(%s)", num(pan.X), num(pan.Y), num(zoom))
}

// SwipeClip reveals the overlay right of pct percent of the viewport width
func SwipeClip(pct float64) string {
	return "inset(0 0 0 " + num(pct) + "%)"
}

// PercentLabel is the divider label, rounded to a whole percent
func PercentLabel(pct float64) string {
	return strconv.Itoa(int(math.Round(pct))) + "%"
}

// Circle is a spyglass clip circle in unscaled image space
type Circle struct {
	Radius float64
	Center geometry.Point
	Empty  bool
}

// SpyglassCircle maps the cursor and lens radius into the coordinate space
// of content drawn under the zoom transform, so the lens keeps its on-screen
// size. Empty is set when no cursor is known.
func SpyglassCircle(st viewport.State) Circle {
	if st.Cursor == nil {
		return Circle{Empty: true}
	}
	z := st.Zoom
	if !(z >= viewport.MinZoom) {
		z = viewport.MinZoom
	}
	return Circle{
		Radius: st.SpyglassRadius / z,
		Center: geometry.ToImage(*st.Cursor, z, st.Pan),
	}
}

// SpyglassClip renders SpyglassCircle as a CSS clip-path
func SpyglassClip(st viewport.State) string {
	c := SpyglassCircle(st)
	if c.Empty {
		return "circle(0px at 50% 50%)"
	}
	return fmt.Sprintf("circle(%spx at %spx %spx)", num(c.Radius), num(c.Center.X), num(c.Center.Y))
}

// num formats a CSS length with at most three decimals
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
