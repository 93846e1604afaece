package gesture

import (
	"fmt"

	"spacezoom-desktop/internal/geometry"
)

// Kind classifies a raw input event from the host surface
type Kind string

const (
	PointerDown  Kind = "pointerdown"
	PointerMove  Kind = "pointermove"
	PointerUp    Kind = "pointerup"
	PointerLeave Kind = "pointerleave"
	TouchStart   Kind = "touchstart"
	TouchMove    Kind = "touchmove"
	TouchEnd     Kind = "touchend"
	KeyDown      Kind = "keydown"
)

// Event is a raw pointer, touch or keyboard event forwarded by the frontend.
// For touch events Touches holds the contacts still on the surface.
type Event struct {
	Kind      Kind             `json:"kind"`
	Client    geometry.Point   `json:"client"`
	Touches   []geometry.Point `json:"touches,omitempty"`
	Key       string           `json:"key,omitempty"`
	PointerID int              `json:"pointerId,omitempty"`
}

// Validate checks that the event kind is known
func (e Event) Validate() error {
	switch e.Kind {
	case PointerDown, PointerMove, PointerUp, PointerLeave,
		TouchStart, TouchMove, TouchEnd, KeyDown:
		return nil
	}
	return fmt.Errorf("unknown input event kind: %q", e.Kind)
}

// Keys handled by the swipe divider
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyHome       = "Home"
	KeyEnd        = "End"

	// KeyboardStep is the divider movement per arrow key press, in percent
	KeyboardStep = 2.0
)
