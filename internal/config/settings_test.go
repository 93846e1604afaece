package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spacezoom-desktop/internal/viewport"
)

func TestLoadSettings_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.CompareZoomCap != viewport.CompareZoomCap || s.GalleryZoomCap != viewport.GalleryZoomCap {
		t.Fatalf("zoom caps %v/%v", s.CompareZoomCap, s.GalleryZoomCap)
	}
	if s.InstallID == "" || !s.AnalyticsEnabled {
		t.Fatalf("got %+v", s)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s := DefaultSettings()
	s.DefaultSpyglassRadius = 200
	s.AnalyticsEnabled = false
	if err := SaveSettings(s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if !strings.HasPrefix(GetSettingsPath(), filepath.Join(home, ".spacezoom")) {
		t.Fatalf("settings path %s", GetSettingsPath())
	}

	got, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if *got != *s {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}

func TestLoadSettings_MergesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	partial := `{"installId":"abc","compareZoomCap":12,"galleryZoomCap":4.2,"defaultLayer":"nope","cacheTTLDays":0}`
	if err := os.WriteFile(GetSettingsPath(), []byte(partial), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	d := DefaultSettings()
	if s.InstallID != "abc" || s.CompareZoomCap != 12 {
		t.Fatalf("stored values lost: %+v", s)
	}
	if s.DefaultLayer != d.DefaultLayer || s.CacheTTLDays != d.CacheTTLDays {
		t.Fatalf("defaults not merged: %+v", s)
	}
	if !s.AnalyticsEnabled {
		t.Fatalf("absent fields not defaulted: %+v", s)
	}
	if s.GalleryZoomCap != d.GalleryZoomCap {
		t.Fatalf("off-step zoom cap kept: %v", s.GalleryZoomCap)
	}
}

func TestLoadSettings_Corrupt(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	os.WriteFile(GetSettingsPath(), []byte("{"), 0644)
	if _, err := LoadSettings(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*UserSettings)
		ok     bool
	}{
		{"defaults", func(*UserSettings) {}, true},
		{"cache size", func(s *UserSettings) { s.CacheMaxSizeMB = 0 }, false},
		{"zoom cap below 1", func(s *UserSettings) { s.GalleryZoomCap = 0.5 }, false},
		{"zoom cap between steps", func(s *UserSettings) { s.CompareZoomCap = 4.2 }, false},
		{"zoom cap on a half step", func(s *UserSettings) { s.CompareZoomCap = 6.5 }, true},
		{"blend", func(s *UserSettings) { s.DefaultOpacityBlend = 140 }, false},
		{"radius", func(s *UserSettings) { s.DefaultSpyglassRadius = 10 }, false},
		{"snapshot size", func(s *UserSettings) { s.SnapshotSize = 10000 }, false},
		{"region", func(s *UserSettings) { s.DefaultRegion = "atlantis" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)
			if err := ValidateSettings(s); (err == nil) != tt.ok {
				t.Fatalf("got err %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestViewportConfig(t *testing.T) {
	s := DefaultSettings()
	s.CompareZoomCap = 10
	s.DefaultOpacityBlend = 30

	cfg, err := s.ViewportConfig(VariantCompare)
	if err != nil {
		t.Fatalf("ViewportConfig: %v", err)
	}
	if cfg.ZoomCap != 10 || !cfg.Compare || cfg.InitialMode != viewport.Swipe || cfg.InitialOpacityBlend != 30 {
		t.Fatalf("got %+v", cfg)
	}

	cfg, _ = s.ViewportConfig(VariantCelestial)
	if cfg.ZoomCap != s.GalleryZoomCap || cfg.Compare || cfg.GridThreshold == 0 {
		t.Fatalf("celestial config %+v", cfg)
	}

	if _, err := s.ViewportConfig("stereo"); err == nil {
		t.Fatal("expected an error for an unknown variant")
	}
}
