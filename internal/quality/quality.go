package quality

import "fmt"

// Tier is a discrete image resolution class selected by zoom level
type Tier string

const (
	Low    Tier = "low"
	Medium Tier = "medium"
	High   Tier = "high"
)

// Zoom thresholds for tier selection (inclusive upper bounds)
const (
	LowMaxZoom    = 1.5
	MediumMaxZoom = 3.0
)

// Tiers lists all tiers from smallest to largest asset
var Tiers = []Tier{Low, Medium, High}

// TierFor maps a continuous zoom value to its quality tier
func TierFor(zoom float64) Tier {
	switch {
	case zoom <= LowMaxZoom:
		return Low
	case zoom <= MediumMaxZoom:
		return Medium
	default:
		return High
	}
}

// ParseTier converts a tier name to Tier
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case Low, Medium, High:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("invalid tier: %s (must be low, medium, or high)", s)
	}
}

// Label returns the display label used in the viewer status line
func (t Tier) Label() string {
	switch t {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	}
	return ""
}

func (t Tier) rank() int {
	for i, tt := range Tiers {
		if tt == t {
			return i
		}
	}
	return -1
}

// Sources holds the per-tier URLs for a single image
type Sources struct {
	Low    string `json:"low"`
	Medium string `json:"medium"`
	High   string `json:"high"`
}

// Single returns Sources where every tier resolves to the same URL
func Single(url string) Sources {
	return Sources{Low: url, Medium: url, High: url}
}

// Exact returns the URL set for tier t without fallback
func (s Sources) Exact(t Tier) string {
	switch t {
	case Low:
		return s.Low
	case Medium:
		return s.Medium
	case High:
		return s.High
	}
	return ""
}

// URL returns the source for tier t. Missing tiers fall back to the nearest
// lower tier, then to the nearest higher one.
func (s Sources) URL(t Tier) string {
	r := t.rank()
	if r < 0 {
		r = 0
	}
	for i := r; i >= 0; i-- {
		if u := s.Exact(Tiers[i]); u != "" {
			return u
		}
	}
	for i := r + 1; i < len(Tiers); i++ {
		if u := s.Exact(Tiers[i]); u != "" {
			return u
		}
	}
	return ""
}

// Empty reports whether no tier has a URL
func (s Sources) Empty() bool {
	return s.Low == "" && s.Medium == "" && s.High == ""
}
