package viewport

import "math"

// Parameter ranges shared by every viewer variant
const (
	MinZoom  = 1.0
	ZoomStep = 0.5

	MinSpyglassRadius = 60.0
	MaxSpyglassRadius = 260.0

	DefaultSwipePercent   = 50.0
	DefaultOpacityBlend   = 60.0
	DefaultSpyglassRadius = 140.0

	// CompareZoomCap is the zoom cap of the two-snapshot compare viewer
	CompareZoomCap = 8.0
	// GalleryZoomCap is the zoom cap of the gallery and celestial viewers
	GalleryZoomCap = 5.0
)

// Config parametrises a viewer variant
type Config struct {
	ZoomCap float64 `json:"zoomCap"`

	// Compare enables the two-layer comparison modes
	Compare bool `json:"compare"`

	// Pinch enables two-finger zoom
	Pinch bool `json:"pinch"`

	// GridThreshold is the zoom at which the reference grid appears; 0 disables it
	GridThreshold float64 `json:"gridThreshold"`
	// GridHideZoom is the zoom at or below which an automatically shown grid hides again
	GridHideZoom float64 `json:"gridHideZoom"`

	InitialMode           Mode    `json:"initialMode"`
	InitialSwipePercent   float64 `json:"initialSwipePercent"`
	InitialOpacityBlend   float64 `json:"initialOpacityBlend"`
	InitialSpyglassRadius float64 `json:"initialSpyglassRadius"`
}

// CompareConfig returns the configuration of the compare viewer
func CompareConfig() Config {
	return Config{
		ZoomCap:               CompareZoomCap,
		Compare:               true,
		InitialMode:           Swipe,
		InitialSwipePercent:   DefaultSwipePercent,
		InitialOpacityBlend:   DefaultOpacityBlend,
		InitialSpyglassRadius: DefaultSpyglassRadius,
	}
}

// GalleryConfig returns the configuration of the space gallery viewer
func GalleryConfig() Config {
	cfg := CompareConfig()
	cfg.ZoomCap = GalleryZoomCap
	cfg.Compare = false
	cfg.Pinch = true
	return cfg
}

// CelestialConfig returns the configuration of the celestial-body viewer.
// The grid shows up when zooming in from 2.5 and stays until zooming out
// from 2, so it is visible at 3 and above and hidden again at 1.5.
func CelestialConfig() Config {
	cfg := GalleryConfig()
	cfg.GridThreshold = 3
	cfg.GridHideZoom = 1.5
	return cfg
}

// HalfStepCap rounds a zoom cap down onto the ZoomStep grid from MinZoom,
// so stepping zoom never lands between steps
func HalfStepCap(c float64) float64 {
	steps := math.Floor((c-MinZoom)/ZoomStep + 1e-9)
	return MinZoom + steps*ZoomStep
}

// normalized fills unset or invalid fields with defaults
func (c Config) normalized() Config {
	if !(c.ZoomCap >= MinZoom) || math.IsInf(c.ZoomCap, 1) {
		c.ZoomCap = CompareZoomCap
	}
	c.ZoomCap = HalfStepCap(c.ZoomCap)
	if c.GridThreshold > 0 && !(c.GridHideZoom < c.GridThreshold) {
		c.GridHideZoom = c.GridThreshold - ZoomStep
	}
	if _, err := ParseMode(string(c.InitialMode)); err != nil {
		c.InitialMode = Swipe
	}
	c.InitialSwipePercent = clampOr(c.InitialSwipePercent, 0, 100, DefaultSwipePercent)
	c.InitialOpacityBlend = clampOr(c.InitialOpacityBlend, 0, 100, DefaultOpacityBlend)
	if c.InitialSpyglassRadius == 0 {
		c.InitialSpyglassRadius = DefaultSpyglassRadius
	}
	c.InitialSpyglassRadius = clampOr(c.InitialSpyglassRadius, MinSpyglassRadius, MaxSpyglassRadius, DefaultSpyglassRadius)
	return c
}
