package imageserver

import (
	"net/url"
	"sync"

	"spacezoom-desktop/internal/quality"
)

// Registry maps (provider, image ID) to the upstream URLs of each tier
type Registry struct {
	mu      sync.RWMutex
	entries map[string]quality.Sources
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]quality.Sources)}
}

func registryKey(provider, id string) string {
	return provider + "/" + id
}

// Register records the upstream sources of an image
func (r *Registry) Register(provider, id string, sources quality.Sources) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[registryKey(provider, id)] = sources
}

// Lookup returns the upstream sources of an image
func (r *Registry) Lookup(provider, id string) (quality.Sources, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[registryKey(provider, id)]
	return s, ok
}

// Len returns the number of registered images
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ImageURL returns the proxy URL of one tier
func ImageURL(base, provider, id string, tier quality.Tier) string {
	return base + "/image/" + url.PathEscape(provider) + "/" + url.PathEscape(id) + "/" + string(tier)
}

// Register records upstream sources and returns the proxy sources the
// viewer should request. A tier whose upstream URL repeats the tier below
// it is left empty so it resolves to the same proxy URL and never triggers
// a second download. Without a running proxy the upstream sources are
// returned unchanged.
func (s *Server) Register(provider, id string, upstream quality.Sources) quality.Sources {
	s.registry.Register(provider, id, upstream)
	if s.serverURL == "" {
		return upstream
	}
	return proxySources(s.serverURL, provider, id, upstream)
}

func proxySources(base, provider, id string, upstream quality.Sources) quality.Sources {
	var out quality.Sources
	prev := ""
	for _, t := range quality.Tiers {
		u := upstream.Exact(t)
		if u == "" || u == prev {
			continue
		}
		prev = u
		switch t {
		case quality.Low:
			out.Low = ImageURL(base, provider, id, t)
		case quality.Medium:
			out.Medium = ImageURL(base, provider, id, t)
		case quality.High:
			out.High = ImageURL(base, provider, id, t)
		}
	}
	return out
}
