package viewport

import (
	"fmt"
	"math"

	"spacezoom-desktop/internal/geometry"
	"spacezoom-desktop/internal/quality"
)

// Mode is the active comparison mode
type Mode string

const (
	Swipe    Mode = "swipe"
	Opacity  Mode = "opacity"
	Spyglass Mode = "spyglass"
)

// ParseMode converts a mode name to Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Swipe, Opacity, Spyglass:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode: %s (must be swipe, opacity, or spyglass)", s)
	}
}

// GridOverride records a manual grid toggle that wins over the zoom threshold
type GridOverride int

const (
	GridAuto GridOverride = iota
	GridOn
	GridOff
)

// State is a snapshot of the viewport parameters
type State struct {
	Zoom           float64         `json:"zoom"`
	Pan            geometry.Point  `json:"pan"`
	Mode           Mode            `json:"mode"`
	SwipePercent   float64         `json:"swipePercent"`
	OpacityBlend   float64         `json:"opacityBlend"`
	SpyglassRadius float64         `json:"spyglassRadius"`
	Cursor         *geometry.Point `json:"cursor,omitempty"` // viewport-local, spyglass only
	Grid           GridOverride    `json:"grid"`

	// autoGrid latches the zoom-driven grid between the show and hide zooms
	autoGrid bool
	cfg      Config
}

// Config returns the configuration the state was created with
func (s State) Config() Config {
	return s.cfg
}

// PanEnabled reports whether drag gestures pan the content
func (s State) PanEnabled() bool {
	return s.Zoom > MinZoom
}

// CanZoomIn reports whether ZoomIn would change the zoom
func (s State) CanZoomIn() bool {
	return s.Zoom < s.cfg.ZoomCap
}

// CanZoomOut reports whether ZoomOut would change the zoom
func (s State) CanZoomOut() bool {
	return s.Zoom > MinZoom
}

// AtRest reports whether the view is at the rest scale with no pan
func (s State) AtRest() bool {
	return s.Zoom == MinZoom && s.Pan.IsZero()
}

// HintVisible reports whether the usage hint is shown; only at rest
func (s State) HintVisible() bool {
	return s.AtRest()
}

// ShowGrid reports whether the reference grid overlay is visible
func (s State) ShowGrid() bool {
	switch s.Grid {
	case GridOn:
		return true
	case GridOff:
		return false
	}
	return s.cfg.GridThreshold > 0 && s.autoGrid
}

// Tier returns the quality tier for the current zoom
func (s State) Tier() quality.Tier {
	return quality.TierFor(s.Zoom)
}

// Viewport owns and mutates the viewport state of one viewer instance.
// It is not safe for concurrent use.
type Viewport struct {
	s State
}

// New creates a viewport at rest scale
func New(cfg Config) *Viewport {
	cfg = cfg.normalized()
	return &Viewport{s: State{
		Zoom:           MinZoom,
		Mode:           cfg.InitialMode,
		SwipePercent:   cfg.InitialSwipePercent,
		OpacityBlend:   cfg.InitialOpacityBlend,
		SpyglassRadius: cfg.InitialSpyglassRadius,
		cfg:            cfg,
	}}
}

// State returns a copy of the current state
func (v *Viewport) State() State {
	s := v.s
	if s.Cursor != nil {
		c := *s.Cursor
		s.Cursor = &c
	}
	return s
}

// ZoomIn raises the zoom by one step up to the cap
func (v *Viewport) ZoomIn() bool {
	return v.setZoom(math.Min(v.s.Zoom+ZoomStep, v.s.cfg.ZoomCap))
}

// ZoomOut lowers the zoom by one step down to 1. Reaching 1 resets the pan.
func (v *Viewport) ZoomOut() bool {
	return v.setZoom(math.Max(v.s.Zoom-ZoomStep, MinZoom))
}

// SetZoom sets a continuous zoom value, as produced by pinch gestures
func (v *Viewport) SetZoom(z float64) bool {
	if math.IsNaN(z) {
		return false
	}
	return v.setZoom(geometry.Clamp(z, MinZoom, v.s.cfg.ZoomCap))
}

func (v *Viewport) setZoom(z float64) bool {
	changed := z != v.s.Zoom
	v.s.Zoom = z
	if t := v.s.cfg.GridThreshold; t > 0 {
		if z >= t {
			v.s.autoGrid = true
		} else if z <= v.s.cfg.GridHideZoom {
			v.s.autoGrid = false
		}
	}
	if z == MinZoom && !v.s.Pan.IsZero() {
		v.s.Pan = geometry.Point{}
		changed = true
	}
	return changed
}

// Reset returns to rest scale and clears mode overlays
func (v *Viewport) Reset() bool {
	before := v.s
	v.s.Zoom = MinZoom
	v.s.Pan = geometry.Point{}
	v.s.Cursor = nil
	v.s.Grid = GridAuto
	v.s.autoGrid = false
	return before.Zoom != v.s.Zoom || !before.Pan.IsZero() ||
		before.Cursor != nil || before.Grid != GridAuto
}

// SetPan sets the pan offset. The offset is not clamped to the image bounds.
func (v *Viewport) SetPan(p geometry.Point) bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return false
	}
	changed := p != v.s.Pan
	v.s.Pan = p
	return changed
}

// SetMode switches the comparison mode. Leaving spyglass drops the cursor.
func (v *Viewport) SetMode(m Mode) bool {
	if _, err := ParseMode(string(m)); err != nil || m == v.s.Mode {
		return false
	}
	if v.s.Mode == Spyglass {
		v.s.Cursor = nil
	}
	v.s.Mode = m
	return true
}

// SetSwipePercent sets the swipe divider position, clamped to [0, 100]
func (v *Viewport) SetSwipePercent(p float64) bool {
	p = clampOr(p, 0, 100, v.s.cfg.InitialSwipePercent)
	changed := p != v.s.SwipePercent
	v.s.SwipePercent = p
	return changed
}

// SetOpacityBlend sets the overlay blend, clamped to [0, 100]
func (v *Viewport) SetOpacityBlend(p float64) bool {
	p = clampOr(p, 0, 100, v.s.cfg.InitialOpacityBlend)
	changed := p != v.s.OpacityBlend
	v.s.OpacityBlend = p
	return changed
}

// SetSpyglassRadius sets the lens radius in pixels, clamped to [60, 260]
func (v *Viewport) SetSpyglassRadius(r float64) bool {
	r = clampOr(r, MinSpyglassRadius, MaxSpyglassRadius, v.s.cfg.InitialSpyglassRadius)
	changed := r != v.s.SpyglassRadius
	v.s.SpyglassRadius = r
	return changed
}

// MoveCursor sets the spyglass cursor in viewport-local pixels.
// Ignored outside spyglass mode.
func (v *Viewport) MoveCursor(p geometry.Point) bool {
	if v.s.Mode != Spyglass {
		return false
	}
	if v.s.Cursor != nil && *v.s.Cursor == p {
		return false
	}
	v.s.Cursor = &p
	return true
}

// ClearCursor forgets the spyglass cursor
func (v *Viewport) ClearCursor() bool {
	if v.s.Cursor == nil {
		return false
	}
	v.s.Cursor = nil
	return true
}

// ToggleGrid flips the visible grid state and pins it until Reset
func (v *Viewport) ToggleGrid() bool {
	if v.s.ShowGrid() {
		v.s.Grid = GridOff
	} else {
		v.s.Grid = GridOn
	}
	return true
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return geometry.Clamp(v, lo, hi)
}
