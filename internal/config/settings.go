package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"spacezoom-desktop/internal/cache"
	"spacezoom-desktop/internal/imagery"
	"spacezoom-desktop/internal/viewport"
)

// Viewer variants
const (
	VariantGallery   = "gallery"
	VariantCelestial = "celestial"
	VariantCompare   = "compare"
)

// UserSettings represents persistent user preferences
type UserSettings struct {
	// Install identity (analytics distinct ID)
	InstallID        string `json:"installId"`
	AnalyticsEnabled bool   `json:"analyticsEnabled"`

	// Cache settings
	CacheMaxSizeMB int `json:"cacheMaxSizeMB"`
	CacheTTLDays   int `json:"cacheTTLDays"`

	// Viewer settings. Compare viewers always open in swipe mode.
	CompareZoomCap        float64 `json:"compareZoomCap"`
	GalleryZoomCap        float64 `json:"galleryZoomCap"`
	DefaultSwipePercent   float64 `json:"defaultSwipePercent"`
	DefaultOpacityBlend   float64 `json:"defaultOpacityBlend"`
	DefaultSpyglassRadius float64 `json:"defaultSpyglassRadius"`

	// Snapshot comparison settings
	SnapshotSize  int    `json:"snapshotSize"`
	DefaultLayer  string `json:"defaultLayer"`
	DefaultRegion string `json:"defaultRegion"`

	// NASA API key for APOD; empty uses DEMO_KEY
	NASAAPIKey string `json:"nasaApiKey,omitempty"`
}

// DefaultSettings returns default user settings
func DefaultSettings() *UserSettings {
	return &UserSettings{
		InstallID:             uuid.NewString(),
		AnalyticsEnabled:      true,
		CacheMaxSizeMB:        500,
		CacheTTLDays:          30,
		CompareZoomCap:        viewport.CompareZoomCap,
		GalleryZoomCap:        viewport.GalleryZoomCap,
		DefaultSwipePercent:   viewport.DefaultSwipePercent,
		DefaultOpacityBlend:   viewport.DefaultOpacityBlend,
		DefaultSpyglassRadius: viewport.DefaultSpyglassRadius,
		SnapshotSize:          imagery.DefaultSnapshotSize,
		DefaultLayer:          imagery.Layers()[0].ID,
		DefaultRegion:         imagery.Regions()[0].ID,
	}
}

// GetSettingsPath returns the OS-specific settings file path
func GetSettingsPath() string {
	homeDir, _ := os.UserHomeDir()

	// ~/.spacezoom/desktop/settings/
	baseDir := filepath.Join(homeDir, ".spacezoom", "desktop", "settings")
	os.MkdirAll(baseDir, 0755)

	return filepath.Join(baseDir, "settings.json")
}

// LoadSettings loads user settings from disk. A missing file yields
// defaults; missing fields are merged from defaults.
func LoadSettings() (*UserSettings, error) {
	settingsPath := GetSettingsPath()

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	// Decode over defaults so absent booleans keep their default
	settings := DefaultSettings()
	settings.InstallID = ""
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	settings.mergeDefaults()

	return settings, nil
}

// mergeDefaults fills zero or invalid fields from defaults
func (s *UserSettings) mergeDefaults() {
	defaults := DefaultSettings()
	if s.InstallID == "" {
		s.InstallID = defaults.InstallID
	}
	if s.CacheMaxSizeMB <= 0 {
		s.CacheMaxSizeMB = defaults.CacheMaxSizeMB
	}
	if s.CacheTTLDays <= 0 {
		s.CacheTTLDays = defaults.CacheTTLDays
	}
	if !validZoomCap(s.CompareZoomCap) {
		s.CompareZoomCap = defaults.CompareZoomCap
	}
	if !validZoomCap(s.GalleryZoomCap) {
		s.GalleryZoomCap = defaults.GalleryZoomCap
	}
	if !inRange(s.DefaultSwipePercent, 0, 100) {
		s.DefaultSwipePercent = defaults.DefaultSwipePercent
	}
	if !inRange(s.DefaultOpacityBlend, 0, 100) {
		s.DefaultOpacityBlend = defaults.DefaultOpacityBlend
	}
	if !inRange(s.DefaultSpyglassRadius, viewport.MinSpyglassRadius, viewport.MaxSpyglassRadius) {
		s.DefaultSpyglassRadius = defaults.DefaultSpyglassRadius
	}
	if s.SnapshotSize <= 0 || s.SnapshotSize > imagery.MaxSnapshotSize {
		s.SnapshotSize = defaults.SnapshotSize
	}
	if !imagery.IsKnownLayer(s.DefaultLayer) {
		s.DefaultLayer = defaults.DefaultLayer
	}
	if _, ok := imagery.FindRegion(s.DefaultRegion); !ok {
		s.DefaultRegion = defaults.DefaultRegion
	}
}

// SaveSettings saves user settings to disk
func SaveSettings(settings *UserSettings) error {
	settingsPath := GetSettingsPath()

	dir := filepath.Dir(settingsPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(settingsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// ValidateSettings checks settings submitted from the frontend
func ValidateSettings(s *UserSettings) error {
	if s.CacheMaxSizeMB <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if s.CacheTTLDays <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if !validZoomCap(s.CompareZoomCap) || !validZoomCap(s.GalleryZoomCap) {
		return fmt.Errorf("zoom caps must be between %.0f and %.0f in steps of %.1f",
			viewport.MinZoom, maxZoomCap, viewport.ZoomStep)
	}
	if !inRange(s.DefaultSwipePercent, 0, 100) || !inRange(s.DefaultOpacityBlend, 0, 100) {
		return fmt.Errorf("swipe and blend defaults must be between 0 and 100")
	}
	if !inRange(s.DefaultSpyglassRadius, viewport.MinSpyglassRadius, viewport.MaxSpyglassRadius) {
		return fmt.Errorf("spyglass radius must be between %.0f and %.0f",
			viewport.MinSpyglassRadius, viewport.MaxSpyglassRadius)
	}
	if s.SnapshotSize <= 0 || s.SnapshotSize > imagery.MaxSnapshotSize {
		return fmt.Errorf("snapshot size must be between 1 and %d", imagery.MaxSnapshotSize)
	}
	if !imagery.IsKnownLayer(s.DefaultLayer) {
		return fmt.Errorf("unknown layer: %s", s.DefaultLayer)
	}
	if _, ok := imagery.FindRegion(s.DefaultRegion); !ok {
		return fmt.Errorf("unknown region: %s", s.DefaultRegion)
	}
	return nil
}

// maxZoomCap bounds user-configured zoom caps
const maxZoomCap = 32.0

// validZoomCap accepts caps reachable by whole zoom steps from rest
func validZoomCap(v float64) bool {
	return inRange(v, viewport.MinZoom, maxZoomCap) && viewport.HalfStepCap(v) == v
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

// CacheConfig returns the image cache configuration
func (s *UserSettings) CacheConfig() *cache.Config {
	cfg := cache.DefaultConfig()
	cfg.MaxSizeMB = s.CacheMaxSizeMB
	cfg.TTLDays = s.CacheTTLDays
	return cfg
}

// ViewportConfig returns the viewer configuration of a variant with the
// user's defaults applied
func (s *UserSettings) ViewportConfig(variant string) (viewport.Config, error) {
	var cfg viewport.Config
	switch variant {
	case VariantGallery:
		cfg = viewport.GalleryConfig()
		cfg.ZoomCap = s.GalleryZoomCap
	case VariantCelestial:
		cfg = viewport.CelestialConfig()
		cfg.ZoomCap = s.GalleryZoomCap
	case VariantCompare:
		cfg = viewport.CompareConfig()
		cfg.ZoomCap = s.CompareZoomCap
	default:
		return viewport.Config{}, fmt.Errorf("unknown viewer variant: %s", variant)
	}
	cfg.InitialSwipePercent = s.DefaultSwipePercent
	cfg.InitialOpacityBlend = s.DefaultOpacityBlend
	cfg.InitialSpyglassRadius = s.DefaultSpyglassRadius
	return cfg, nil
}

// DefaultSnapshotRequest returns the snapshot comparison request seeded
// from the user's defaults
func (s *UserSettings) DefaultSnapshotRequest(base imagery.SnapshotRequest) imagery.SnapshotRequest {
	base.LeftLayer = s.DefaultLayer
	base.RightLayer = s.DefaultLayer
	base.Region = s.DefaultRegion
	base.Width = s.SnapshotSize
	base.Height = s.SnapshotSize
	return base
}
