package main

import (
	"spacezoom-desktop/internal/cache"
)

// Cache Management Functions (Wails-exported)

// CacheStats represents cache statistics for frontend
type CacheStats struct {
	cache.Stats
	SizeMB  float64 `json:"sizeMB"`
	MaxMB   float64 `json:"maxMB"`
	HitRate float64 `json:"hitRate"`
}

// GetCacheStats returns current cache statistics
func (a *App) GetCacheStats() CacheStats {
	if a.imageCache == nil {
		return CacheStats{}
	}

	s := a.imageCache.Stats()
	stats := CacheStats{
		Stats:  s,
		SizeMB: float64(s.SizeBytes) / 1024 / 1024,
		MaxMB:  float64(s.MaxBytes) / 1024 / 1024,
	}
	if total := s.Hits + s.Misses; total > 0 {
		stats.HitRate = float64(s.Hits) / float64(total)
	}
	return stats
}

// ClearCache removes all cached images
func (a *App) ClearCache() error {
	if a.imageCache != nil {
		return a.imageCache.Clear()
	}
	return nil
}

// GetImageServerURL returns the local image server URL, empty if it is not running
func (a *App) GetImageServerURL() string {
	if a.imageServer == nil {
		return ""
	}
	return a.imageServer.GetServerURL()
}
