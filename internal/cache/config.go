package cache

import (
	"os"
	"path/filepath"
	goruntime "runtime"
)

// Config represents cache configuration
type Config struct {
	MaxSizeMB  int `json:"maxSizeMB"`
	TTLDays    int `json:"ttlDays"`
	HotEntries int `json:"hotEntries"` // images kept decoded-ready in memory
}

// DefaultConfig returns default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MaxSizeMB:  500, // 500 MB default, original renditions are large
		TTLDays:    30,
		HotEntries: 32,
	}
}

// normalized fills unset fields with defaults
func (c *Config) normalized() Config {
	d := DefaultConfig()
	if c == nil {
		return *d
	}
	out := *c
	if out.MaxSizeMB <= 0 {
		out.MaxSizeMB = d.MaxSizeMB
	}
	if out.TTLDays < 0 {
		out.TTLDays = 0
	}
	if out.HotEntries <= 0 {
		out.HotEntries = d.HotEntries
	}
	return out
}

// GetCacheDir returns the OS-specific image cache directory
func GetCacheDir() string {
	homeDir, _ := os.UserHomeDir()

	switch goruntime.GOOS {
	case "darwin": // macOS
		return filepath.Join(homeDir, "Library", "Caches", "spacezoom-desktop", "images")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		return filepath.Join(appData, "spacezoom-desktop", "cache", "images")
	default: // Linux and others
		cacheHome := os.Getenv("XDG_CACHE_HOME")
		if cacheHome == "" {
			cacheHome = filepath.Join(homeDir, ".cache")
		}
		return filepath.Join(cacheHome, "spacezoom-desktop", "images")
	}
}
