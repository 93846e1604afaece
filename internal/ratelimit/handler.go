package ratelimit

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"spacezoom-desktop/internal/common"
)

// ErrRateLimited is wrapped by errors for responses that hit a rate limit
var ErrRateLimited = errors.New("rate limited")

// DefaultCooldown is assumed when a limited response carries no Retry-After
const DefaultCooldown = time.Hour

// RateLimitEvent represents a rate limit occurrence
type RateLimitEvent struct {
	Timestamp  time.Time `json:"timestamp" ts_type:"string"`
	Provider   string    `json:"provider"`   // "nasa_images", "apod", "worldview", ...
	StatusCode int       `json:"statusCode"` // HTTP status code (429, 403, ...)
	Remaining  int       `json:"remaining"`  // X-RateLimit-Remaining, -1 if absent
	ResetAt    time.Time `json:"resetAt" ts_type:"string"`
	Message    string    `json:"message"` // User-friendly message
}

// Handler detects rate limiting on upstream responses and reports it to
// the UI. It never retries; callers fail the request and the user decides
// when to try again.
type Handler struct {
	mu          sync.RWMutex
	rateLimited map[string]*RateLimitEvent // provider -> current rate limit state
	remaining   map[string]int             // provider -> last X-RateLimit-Remaining
	onRateLimit func(event RateLimitEvent) // Callback for UI notification
	onRecovered func(provider string)      // Callback when rate limit clears
	now         func() time.Time
}

// NewHandler creates a new rate limit handler
func NewHandler() *Handler {
	return &Handler{
		rateLimited: make(map[string]*RateLimitEvent),
		remaining:   make(map[string]int),
		now:         time.Now,
	}
}

// SetOnRateLimit sets the callback for rate limit events
func (h *Handler) SetOnRateLimit(callback func(event RateLimitEvent)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRateLimit = callback
}

// SetOnRecovered sets the callback for recovery from rate limit
func (h *Handler) SetOnRecovered(callback func(provider string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRecovered = callback
}

// IsRateLimited checks if a provider is currently rate limited
func (h *Handler) IsRateLimited(provider string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, limited := h.rateLimited[provider]
	return limited
}

// Remaining returns the last quota reported by a provider, -1 if unknown
func (h *Handler) Remaining(provider string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n, ok := h.remaining[provider]; ok {
		return n
	}
	return -1
}

// CheckResponse analyzes an HTTP response for rate limit indicators and
// reports whether the provider is rate limited
func (h *Handler) CheckResponse(provider string, resp *http.Response) bool {
	remaining := headerInt(resp.Header, "X-RateLimit-Remaining")

	// api.nasa.gov answers 429 once the key's hourly quota is spent; 403
	// with an exhausted quota header means the same thing
	limited := resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && remaining == 0)

	h.mu.Lock()
	if remaining >= 0 {
		h.remaining[provider] = remaining
	}
	if !limited {
		_, was := h.rateLimited[provider]
		delete(h.rateLimited, provider)
		recovered := h.onRecovered
		h.mu.Unlock()
		if was {
			log.Printf("[RateLimit] %s rate limit cleared", provider)
			if recovered != nil {
				go recovered(provider)
			}
		}
		return false
	}

	now := h.now()
	resetAt := now.Add(retryAfter(resp.Header, now))
	event := RateLimitEvent{
		Timestamp:  now,
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Remaining:  remaining,
		ResetAt:    resetAt,
		Message:    buildMessage(provider, resp.StatusCode, resetAt.Sub(now)),
	}
	h.rateLimited[provider] = &event
	notify := h.onRateLimit
	h.mu.Unlock()

	log.Printf("[RateLimit] %s rate limited (HTTP %d) until %s",
		provider, resp.StatusCode, resetAt.Format(time.RFC3339))
	if notify != nil {
		go notify(event)
	}
	return true
}

// GetCurrentState returns the current rate limit state for a provider
func (h *Handler) GetCurrentState(provider string) *RateLimitEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event, exists := h.rateLimited[provider]; exists {
		// Return a copy
		eventCopy := *event
		return &eventCopy
	}
	return nil
}

// Clear forgets the rate limit state of a provider, e.g. after the API key changed
func (h *Handler) Clear(provider string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rateLimited, provider)
	delete(h.remaining, provider)
}

func headerInt(h http.Header, name string) int {
	v := h.Get(name)
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// retryAfter parses Retry-After as seconds or an HTTP date
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return DefaultCooldown
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return DefaultCooldown
}

// buildMessage creates a user-friendly message
func buildMessage(provider string, statusCode int, wait time.Duration) string {
	name, ok := common.DisplayNames[provider]
	if !ok {
		name = provider
	}
	minutes := int(wait.Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	msg := fmt.Sprintf("%s rate limit reached (HTTP %d). Try again in about %d minutes.",
		name, statusCode, minutes)
	if provider == common.ProviderAPOD || provider == common.ProviderNASAImages {
		msg += " A personal api.nasa.gov key in Settings raises the limit."
	}
	return msg
}
