package viewer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"spacezoom-desktop/internal/compositor"
	"spacezoom-desktop/internal/geometry"
	"spacezoom-desktop/internal/gesture"
	"spacezoom-desktop/internal/imagery"
	"spacezoom-desktop/internal/quality"
	"spacezoom-desktop/internal/viewport"
)

// ErrNotCompare is returned for pair operations on a single-image viewer
var ErrNotCompare = errors.New("viewer has no comparison pair")

// DefaultLoadError is shown when an image element reports an error
// without a message
const DefaultLoadError = "Couldn't load image"

// Viewer is one open viewer instance: its viewport, gesture session, image
// sources and pending frame. All methods are safe for concurrent use.
type Viewer struct {
	id      string
	variant string
	compare bool

	mu        sync.Mutex
	vp        *viewport.Viewport
	gestures  *gesture.Interpreter
	scheduler compositor.Scheduler

	// single-image variants
	selector *quality.Selector
	loadErr  string

	// compare variant
	pair imagery.Pair
}

// New creates a viewer of the given variant. The first frame is scheduled
// immediately.
func New(id, variant string, cfg viewport.Config) *Viewer {
	v := &Viewer{
		id:       id,
		variant:  variant,
		compare:  cfg.Compare,
		vp:       viewport.New(cfg),
		gestures: gesture.New(cfg),
		selector: quality.NewSelector(),
	}
	v.scheduleLocked()
	return v
}

// ID returns the viewer ID
func (v *Viewer) ID() string {
	return v.id
}

// Variant returns the viewer variant name
func (v *Viewer) Variant() string {
	return v.variant
}

// Compare reports whether this is a two-image comparison viewer
func (v *Viewer) Compare() bool {
	return v.compare
}

// State returns a copy of the viewport state
func (v *Viewer) State() viewport.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vp.State()
}

// SetBounds records the measured viewport rectangle
func (v *Viewer) SetBounds(r geometry.Rect) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gestures.SetBounds(r)
}

// HandleInput feeds one raw input event through the gesture interpreter.
// It returns true when the event changed what is drawn.
func (v *Viewer) HandleInput(ev gesture.Event) (bool, error) {
	if err := ev.Validate(); err != nil {
		return false, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	res := v.gestures.Handle(ev, v.vp.State())
	changed := v.applyLocked(res.Actions...)
	if res.Preview != nil && !changed {
		// divider drags only repaint until they commit
		v.scheduleLocked()
		changed = true
	}
	return changed, nil
}

// Dispatch applies viewport actions from toolbar controls
func (v *Viewer) Dispatch(actions ...viewport.Action) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, a := range actions {
		if _, ok := a.(viewport.ResetAction); ok {
			v.gestures.Cancel()
		}
	}
	return v.applyLocked(actions...)
}

// applyLocked dispatches actions, keeps the quality tier in step with the
// zoom and schedules a frame on change
func (v *Viewer) applyLocked(actions ...viewport.Action) bool {
	if !v.vp.DispatchAll(actions) {
		return false
	}
	if !v.compare {
		v.selector.Update(v.vp.State().Zoom)
	}
	v.scheduleLocked()
	return true
}

// SelectImage shows a new image in a single-image viewer. The view returns
// to rest and the tier for the rest zoom is requested.
func (v *Viewer) SelectImage(imageID string, sources quality.Sources) error {
	if v.compare {
		return fmt.Errorf("compare viewer %s cannot show a single image", v.id)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	v.gestures.Cancel()
	v.vp.Reset()
	v.loadErr = ""
	v.selector.Select(imageID, sources, v.vp.State().Zoom)
	if sources.Empty() {
		v.loadErr = DefaultLoadError
	}
	log.Printf("[Viewer] %s showing %s", v.id, imageID)
	v.scheduleLocked()
	return nil
}

// ImageID returns the image shown by a single-image viewer
func (v *Viewer) ImageID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selector.ImageID()
}

// SetPair replaces the comparison pair. The viewport keeps its parameters.
func (v *Viewer) SetPair(p imagery.Pair) error {
	if !v.compare {
		return ErrNotCompare
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pair = p
	v.scheduleLocked()
	return nil
}

// Pair returns the comparison pair
func (v *Viewer) Pair() imagery.Pair {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pair
}

// ImageLoaded records a successful load reported by an image element.
// Reports for sources no longer requested are ignored.
func (v *Viewer) ImageLoaded(side imagery.Side, src string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	var ok bool
	if v.compare {
		ok = v.pair.Loaded(side, src)
	} else if ok = v.selector.LoadedURL(src); ok {
		v.loadErr = ""
	}
	if ok {
		v.scheduleLocked()
	}
	return ok
}

// ImageFailed records a load error reported by an image element. A
// single-image viewer keeps showing its current tier; the error is only
// surfaced when nothing is on screen.
func (v *Viewer) ImageFailed(side imagery.Side, src, msg string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if msg == "" {
		msg = DefaultLoadError
	}
	var ok bool
	if v.compare {
		ok = v.pair.Failed(side, src, msg)
	} else if ok = v.selector.FailedURL(src); ok {
		if _, _, shown := v.selector.Displayed(); !shown {
			v.loadErr = msg
		}
	}
	if ok {
		log.Printf("[Viewer] %s failed to load %s: %s", v.id, src, msg)
		v.scheduleLocked()
	}
	return ok
}

// Frame composes the current frame
func (v *Viewer) Frame() compositor.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.composeLocked()
}

// Flush returns the pending frame, if any, for the frame loop
func (v *Viewer) Flush() (compositor.Frame, bool) {
	return v.scheduler.Flush()
}

// Coalesced returns how many scheduled frames were replaced before painting
func (v *Viewer) Coalesced() int {
	return v.scheduler.Coalesced()
}

func (v *Viewer) scheduleLocked() {
	v.scheduler.Schedule(v.composeLocked())
}

func (v *Viewer) composeLocked() compositor.Frame {
	in := compositor.Input{State: v.vp.State()}
	if pct, ok := v.gestures.SwipePreview(); ok {
		in.SwipePreview = &pct
	}

	if v.compare {
		in.Base = compositor.Source{URL: v.pair.LeftURL, Loading: v.pair.LoadingLeft, Error: v.pair.ErrorLeft}
		in.Overlay = compositor.Source{URL: v.pair.RightURL, Loading: v.pair.LoadingRight, Error: v.pair.ErrorRight}
		return compositor.Compose(in)
	}

	_, shown, hasShown := v.selector.Displayed()
	_, pending, hasPending := v.selector.Pending()
	switch {
	case hasShown:
		in.Base = compositor.Source{URL: shown}
		if hasPending {
			in.Preload = pending
		}
	case hasPending:
		in.Base = compositor.Source{URL: pending, Loading: true}
	}
	in.Base.Error = v.loadErr
	return compositor.Compose(in)
}
