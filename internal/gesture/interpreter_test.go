package gesture

import (
	"testing"

	"spacezoom-desktop/internal/geometry"
	"spacezoom-desktop/internal/viewport"
)

var testBounds = geometry.Rect{Left: 100, Top: 50, Width: 800, Height: 600}

// rig wires an interpreter to a viewport the way a viewer does
type rig struct {
	in *Interpreter
	vp *viewport.Viewport
}

func newRig(cfg viewport.Config, bounds geometry.Rect) *rig {
	in := New(cfg)
	in.SetBounds(bounds)
	return &rig{in: in, vp: viewport.New(cfg)}
}

func (r *rig) send(ev Event) Result {
	res := r.in.Handle(ev, r.vp.State())
	r.vp.DispatchAll(res.Actions)
	return res
}

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func TestPinchZoom(t *testing.T) {
	tests := []struct {
		name  string
		zoom0 float64
		dist0 float64
		dist  float64
		want  float64
	}{
		{"shrink below rest", 2, 100, 10, 1},
		{"unchanged", 2, 100, 100, 2},
		{"spread past cap", 2, 100, 1000, 5},
		{"double", 1.5, 100, 200, 3},
		{"zero start distance", 3, 0, 250, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PinchZoom(tt.zoom0, tt.dist0, tt.dist, 5); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPinch_ThroughInterpreter(t *testing.T) {
	r := newRig(viewport.GalleryConfig(), testBounds)
	r.send(Event{Kind: TouchStart, Touches: []geometry.Point{pt(300, 300), pt(400, 300)}})
	if r.in.Active() != "pinch" {
		t.Fatalf("active: got %s, want pinch", r.in.Active())
	}
	r.send(Event{Kind: TouchMove, Touches: []geometry.Point{pt(250, 300), pt(500, 300)}})
	if z := r.vp.State().Zoom; z != 2.5 {
		t.Fatalf("zoom: got %v, want 2.5", z)
	}
	r.send(Event{Kind: TouchMove, Touches: []geometry.Point{pt(0, 300), pt(5000, 300)}})
	if z := r.vp.State().Zoom; z != 5 {
		t.Fatalf("zoom: got %v, want cap 5", z)
	}
}

func TestPinch_CoincidentStartAnchorsOnFirstSpread(t *testing.T) {
	r := newRig(viewport.GalleryConfig(), testBounds)
	r.send(Event{Kind: TouchStart, Touches: []geometry.Point{pt(300, 300), pt(300, 300)}})
	res := r.send(Event{Kind: TouchMove, Touches: []geometry.Point{pt(300, 300), pt(340, 300)}})
	if len(res.Actions) != 0 {
		t.Fatalf("expected no zoom on re-anchor, got %v", res.Actions)
	}
	r.send(Event{Kind: TouchMove, Touches: []geometry.Point{pt(300, 300), pt(380, 300)}})
	if z := r.vp.State().Zoom; z != 2 {
		t.Fatalf("zoom: got %v, want 2", z)
	}
}

func TestPinch_DisabledForCompare(t *testing.T) {
	r := newRig(viewport.CompareConfig(), testBounds)
	r.send(Event{Kind: TouchStart, Touches: []geometry.Point{pt(300, 300), pt(400, 300)}})
	if r.in.Active() == "pinch" {
		t.Fatal("compare viewer started a pinch")
	}
}

func TestPinch_RemainingContactPans(t *testing.T) {
	r := newRig(viewport.GalleryConfig(), testBounds)
	r.send(Event{Kind: TouchStart, Touches: []geometry.Point{pt(300, 300), pt(400, 300)}})
	r.send(Event{Kind: TouchMove, Touches: []geometry.Point{pt(250, 300), pt(450, 300)}})
	r.send(Event{Kind: TouchEnd, Touches: []geometry.Point{pt(450, 300)}})
	if r.in.Active() != "pan" {
		t.Fatalf("active: got %s, want pan", r.in.Active())
	}
	r.send(Event{Kind: TouchMove, Touches: []geometry.Point{pt(470, 310)}})
	if p := r.vp.State().Pan; p != pt(20, 10) {
		t.Fatalf("pan: got %+v, want {20 10}", p)
	}
	r.send(Event{Kind: TouchEnd})
	if r.in.Active() != "idle" {
		t.Fatalf("active: got %s, want idle", r.in.Active())
	}
}

func TestPan_AnchorHasNoDrift(t *testing.T) {
	r := newRig(viewport.GalleryConfig(), testBounds)
	r.vp.ZoomIn()
	r.vp.SetPan(pt(30, -40))

	r.send(Event{Kind: PointerDown, Client: pt(500, 400)})
	for i := 0; i < 10; i++ {
		r.send(Event{Kind: PointerMove, Client: pt(500+float64(i), 400+float64(2*i))})
	}
	r.send(Event{Kind: PointerMove, Client: pt(500, 400)})
	if p := r.vp.State().Pan; p != pt(30, -40) {
		t.Fatalf("returning to the anchor drifted: %+v", p)
	}
	r.send(Event{Kind: PointerMove, Client: pt(560, 380)})
	if p := r.vp.State().Pan; p != pt(90, -60) {
		t.Fatalf("pan: got %+v, want {90 -60}", p)
	}
}

func TestPan_IgnoredAtRest(t *testing.T) {
	r := newRig(viewport.GalleryConfig(), testBounds)
	r.send(Event{Kind: PointerDown, Client: pt(500, 400)})
	r.send(Event{Kind: PointerMove, Client: pt(600, 450)})
	if !r.vp.State().Pan.IsZero() {
		t.Fatalf("panned at rest: %+v", r.vp.State().Pan)
	}
}

func TestSwipe_PreviewThenCommit(t *testing.T) {
	r := newRig(viewport.CompareConfig(), testBounds)
	res := r.send(Event{Kind: PointerDown, Client: pt(300, 200)})
	if res.Preview == nil || *res.Preview != 25 {
		t.Fatalf("down preview: got %v, want 25", res.Preview)
	}
	res = r.send(Event{Kind: PointerMove, Client: pt(396, 200)})
	if res.Preview == nil || *res.Preview != 37 {
		t.Fatalf("move preview: got %v, want 37", res.Preview)
	}
	if got := r.vp.State().SwipePercent; got != 50 {
		t.Fatalf("preview committed early: %v", got)
	}
	if pct, ok := r.in.SwipePreview(); !ok || pct != 37 {
		t.Fatalf("SwipePreview: got %v %v", pct, ok)
	}
	r.send(Event{Kind: PointerUp, Client: pt(396, 200)})
	if got := r.vp.State().SwipePercent; got != 37 {
		t.Fatalf("committed: got %v, want 37", got)
	}
	if _, ok := r.in.SwipePreview(); ok {
		t.Fatal("preview outlived the gesture")
	}
}

func TestSwipe_LeaveCommits(t *testing.T) {
	r := newRig(viewport.CompareConfig(), testBounds)
	r.send(Event{Kind: PointerDown, Client: pt(300, 200)})
	r.send(Event{Kind: PointerMove, Client: pt(2000, 200)})
	r.send(Event{Kind: PointerLeave})
	if got := r.vp.State().SwipePercent; got != 100 {
		t.Fatalf("got %v, want 100", got)
	}
}

func TestSwipe_ZoomedDragPans(t *testing.T) {
	r := newRig(viewport.CompareConfig(), testBounds)
	r.vp.ZoomIn()
	res := r.send(Event{Kind: PointerDown, Client: pt(300, 200)})
	if res.Preview != nil {
		t.Fatal("zoomed drag should pan, not swipe")
	}
	r.send(Event{Kind: PointerMove, Client: pt(320, 200)})
	r.send(Event{Kind: PointerUp})
	if p := r.vp.State().Pan; p != pt(20, 0) {
		t.Fatalf("pan: got %+v", p)
	}
	if got := r.vp.State().SwipePercent; got != 50 {
		t.Fatalf("swipe changed while panning: %v", got)
	}
}

func TestSwipe_UnmeasuredDefaultsToCentre(t *testing.T) {
	r := newRig(viewport.CompareConfig(), geometry.Rect{})
	res := r.send(Event{Kind: PointerDown, Client: pt(10, 10)})
	if res.Preview == nil || *res.Preview != geometry.DefaultPercent {
		t.Fatalf("got %v, want %v", res.Preview, geometry.DefaultPercent)
	}
}

func TestKeyboard(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		key   string
		want  float64
	}{
		{"right", 37, KeyArrowRight, 39},
		{"left", 37, KeyArrowLeft, 35},
		{"right clamps", 99, KeyArrowRight, 100},
		{"left clamps", 1, KeyArrowLeft, 0},
		{"home", 63, KeyHome, 0},
		{"end", 12, KeyEnd, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(viewport.CompareConfig(), testBounds)
			r.vp.SetSwipePercent(tt.start)
			r.send(Event{Kind: KeyDown, Key: tt.key})
			if got := r.vp.State().SwipePercent; got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyboard_IgnoredOutsideSwipe(t *testing.T) {
	r := newRig(viewport.CompareConfig(), testBounds)
	r.vp.SetMode(viewport.Opacity)
	if res := r.send(Event{Kind: KeyDown, Key: KeyEnd}); len(res.Actions) != 0 {
		t.Fatalf("got actions %v", res.Actions)
	}
	g := newRig(viewport.GalleryConfig(), testBounds)
	if res := g.send(Event{Kind: KeyDown, Key: KeyArrowRight}); len(res.Actions) != 0 {
		t.Fatalf("gallery handled a divider key: %v", res.Actions)
	}
	r.vp.SetMode(viewport.Swipe)
	if res := r.send(Event{Kind: KeyDown, Key: "Enter"}); len(res.Actions) != 0 {
		t.Fatalf("unknown key produced actions %v", res.Actions)
	}
}

func TestSpyglass_TracksAndClearsOnLeave(t *testing.T) {
	r := newRig(viewport.CompareConfig(), testBounds)
	r.vp.SetMode(viewport.Spyglass)

	r.send(Event{Kind: PointerMove, Client: pt(300, 200)})
	c := r.vp.State().Cursor
	if c == nil || *c != pt(200, 150) {
		t.Fatalf("cursor: got %v, want {200 150}", c)
	}
	r.send(Event{Kind: PointerMove, Client: pt(5000, -30)})
	if c := r.vp.State().Cursor; c == nil || *c != pt(800, 0) {
		t.Fatalf("cursor not clamped to the viewport: %v", c)
	}
	r.send(Event{Kind: PointerLeave})
	if r.vp.State().Cursor != nil {
		t.Fatal("leave did not clear the cursor")
	}
}

func TestSpyglass_UnmeasuredClearsCursor(t *testing.T) {
	r := newRig(viewport.CompareConfig(), testBounds)
	r.vp.SetMode(viewport.Spyglass)
	r.send(Event{Kind: PointerMove, Client: pt(300, 200)})

	r.in.SetBounds(geometry.Rect{})
	res := r.send(Event{Kind: PointerMove, Client: pt(310, 200)})
	if len(res.Actions) != 1 {
		t.Fatalf("got %d actions", len(res.Actions))
	}
	if _, ok := res.Actions[0].(viewport.ClearCursorAction); !ok {
		t.Fatalf("got %T, want ClearCursorAction", res.Actions[0])
	}
	if r.vp.State().Cursor != nil {
		t.Fatal("cursor kept with an unmeasured viewport")
	}
}

func TestSpyglass_PanAndTrackTogether(t *testing.T) {
	r := newRig(viewport.CompareConfig(), testBounds)
	r.vp.SetMode(viewport.Spyglass)
	r.vp.ZoomIn()

	r.send(Event{Kind: PointerDown, Client: pt(300, 200)})
	if r.in.Active() != "pan" {
		t.Fatalf("active: got %s, want pan", r.in.Active())
	}
	r.send(Event{Kind: PointerMove, Client: pt(310, 220)})
	s := r.vp.State()
	if s.Pan != pt(10, 20) {
		t.Fatalf("pan: got %+v", s.Pan)
	}
	if s.Cursor == nil || *s.Cursor != pt(210, 170) {
		t.Fatalf("cursor: got %v", s.Cursor)
	}
}

func TestGallery_NoCompareModes(t *testing.T) {
	r := newRig(viewport.GalleryConfig(), testBounds)
	res := r.send(Event{Kind: PointerDown, Client: pt(300, 200)})
	if res.Preview != nil || len(res.Actions) != 0 {
		t.Fatalf("gallery at rest reacted to a drag: %+v", res)
	}
}

func TestEvent_Validate(t *testing.T) {
	if err := (Event{Kind: PointerMove}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Event{Kind: "wheel"}).Validate(); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
