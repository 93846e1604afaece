package main

import (
	"spacezoom-desktop/internal/ratelimit"
)

// Rate Limit Status Functions (Wails-exported)

// GetRateLimitStatus returns the current rate limit state for a provider
func (a *App) GetRateLimitStatus(provider string) *ratelimit.RateLimitEvent {
	if a.rateLimiter != nil {
		return a.rateLimiter.GetCurrentState(provider)
	}
	return nil
}

// IsRateLimited checks if a provider is currently rate limited
func (a *App) IsRateLimited(provider string) bool {
	if a.rateLimiter != nil {
		return a.rateLimiter.IsRateLimited(provider)
	}
	return false
}

// GetRemainingQuota returns the last request quota a provider reported, -1 if unknown
func (a *App) GetRemainingQuota(provider string) int {
	if a.rateLimiter != nil {
		return a.rateLimiter.Remaining(provider)
	}
	return -1
}
