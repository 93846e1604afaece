package imagery

import "fmt"

// Side identifies one half of a comparison pair
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// ParseSide converts a side name to Side
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Left, Right:
		return Side(s), nil
	default:
		return "", fmt.Errorf("invalid side: %s (must be left or right)", s)
	}
}

// Pair is the two image sources of a comparison and their load status.
// URLs are supplied by a provider; only the image element's load and error
// reports change the status fields.
type Pair struct {
	LeftURL      string `json:"leftUrl"`
	RightURL     string `json:"rightUrl"`
	LoadingLeft  bool   `json:"loadingLeft"`
	LoadingRight bool   `json:"loadingRight"`
	ErrorLeft    string `json:"errorLeft,omitempty"`
	ErrorRight   string `json:"errorRight,omitempty"`
}

// NewPair creates a pair waiting for both images to load
func NewPair(left, right string) Pair {
	return Pair{
		LeftURL:      left,
		RightURL:     right,
		LoadingLeft:  left != "",
		LoadingRight: right != "",
	}
}

// FailedPair creates a pair where no URL could be produced
func FailedPair(msg string) Pair {
	return Pair{ErrorLeft: msg, ErrorRight: msg}
}

// URL returns the source of one side
func (p Pair) URL(side Side) string {
	if side == Right {
		return p.RightURL
	}
	return p.LeftURL
}

// Loading reports whether either side is still loading
func (p Pair) Loading() bool {
	return p.LoadingLeft || p.LoadingRight
}

// Loaded marks a side as loaded. Reports for a source the side no longer
// shows are ignored.
func (p *Pair) Loaded(side Side, src string) bool {
	if src != "" && src != p.URL(side) {
		return false
	}
	switch side {
	case Left:
		p.LoadingLeft, p.ErrorLeft = false, ""
	case Right:
		p.LoadingRight, p.ErrorRight = false, ""
	default:
		return false
	}
	return true
}

// Failed marks a side as failed with msg
func (p *Pair) Failed(side Side, src, msg string) bool {
	if src != "" && src != p.URL(side) {
		return false
	}
	if msg == "" {
		msg = "Couldn't load image"
	}
	switch side {
	case Left:
		p.LoadingLeft, p.ErrorLeft = false, msg
	case Right:
		p.LoadingRight, p.ErrorRight = false, msg
	default:
		return false
	}
	return true
}
