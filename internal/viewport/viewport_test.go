package viewport

import (
	"math"
	"math/rand"
	"testing"

	"spacezoom-desktop/internal/geometry"
	"spacezoom-desktop/internal/quality"
)

func TestNew_Defaults(t *testing.T) {
	v := New(CompareConfig())
	s := v.State()
	if s.Zoom != 1 || !s.Pan.IsZero() {
		t.Fatalf("got zoom %v pan %+v, want rest", s.Zoom, s.Pan)
	}
	if s.Mode != Swipe {
		t.Fatalf("mode: got %s, want swipe", s.Mode)
	}
	if s.SwipePercent != 50 || s.OpacityBlend != 60 || s.SpyglassRadius != 140 {
		t.Fatalf("params: got %v/%v/%v", s.SwipePercent, s.OpacityBlend, s.SpyglassRadius)
	}
	if s.Cursor != nil {
		t.Fatal("cursor should start nil")
	}
}

func TestZoomSequences_StayOnHalfSteps(t *testing.T) {
	for _, cfg := range []Config{CompareConfig(), GalleryConfig()} {
		v := New(cfg)
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 500; i++ {
			if rng.Intn(2) == 0 {
				v.ZoomIn()
			} else {
				v.ZoomOut()
			}
			z := v.State().Zoom
			if z < 1 || z > cfg.ZoomCap {
				t.Fatalf("zoom %v outside [1, %v]", z, cfg.ZoomCap)
			}
			steps := (z - 1) / 0.5
			if steps != math.Trunc(steps) {
				t.Fatalf("zoom %v is not a half step from 1", z)
			}
		}
	}
}

func TestZoomSequences_OffStepCap(t *testing.T) {
	v := New(Config{ZoomCap: 4.2})
	for i := 0; i < 10; i++ {
		v.ZoomIn()
		if z := v.State().Zoom; math.Mod((z-1)/ZoomStep, 1) != 0 {
			t.Fatalf("zoom %v is not a half step from 1", z)
		}
	}
	if z := v.State().Zoom; z != 4 {
		t.Fatalf("got %v, want 4", z)
	}
}

func TestZoomIn_Caps(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want float64
	}{
		{"compare", CompareConfig(), 8},
		{"gallery", GalleryConfig(), 5},
		{"celestial", CelestialConfig(), 5},
		{"off-step cap rounds down", Config{ZoomCap: 4.2}, 4},
		{"cap just under a step", Config{ZoomCap: 2.99}, 2.5},
		{"cap below rest", Config{ZoomCap: 0.3}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.cfg)
			for i := 0; i < 30; i++ {
				v.ZoomIn()
			}
			if got := v.State().Zoom; got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if v.State().CanZoomIn() {
				t.Fatal("CanZoomIn should be false at the cap")
			}
		})
	}
}

func TestZoomOut_ToOneResetsPan(t *testing.T) {
	v := New(GalleryConfig())
	v.ZoomIn()
	v.ZoomIn()
	v.SetPan(geometry.Point{X: 120, Y: -35})

	v.ZoomOut()
	if p := v.State().Pan; p.X != 120 || p.Y != -35 {
		t.Fatalf("pan changed above rest scale: %+v", p)
	}
	v.ZoomOut()
	s := v.State()
	if s.Zoom != 1 {
		t.Fatalf("zoom: got %v, want 1", s.Zoom)
	}
	if !s.Pan.IsZero() {
		t.Fatalf("pan: got %+v, want {0 0}", s.Pan)
	}
	if !s.AtRest() {
		t.Fatal("expected rest state")
	}
}

func TestReset(t *testing.T) {
	v := New(CelestialConfig())
	v.SetMode(Spyglass)
	for i := 0; i < 4; i++ {
		v.ZoomIn()
	}
	v.SetPan(geometry.Point{X: 10, Y: 10})
	v.MoveCursor(geometry.Point{X: 5, Y: 5})
	v.ToggleGrid()

	if !v.Reset() {
		t.Fatal("Reset reported no change")
	}
	s := v.State()
	if s.Zoom != 1 || !s.Pan.IsZero() || s.Cursor != nil || s.Grid != GridAuto {
		t.Fatalf("not reset: %+v", s)
	}
	if s.Mode != Spyglass {
		t.Fatal("Reset must not change the mode")
	}
}

func TestSetPan_Unclamped(t *testing.T) {
	v := New(CompareConfig())
	v.SetPan(geometry.Point{X: -99999, Y: 99999})
	if p := v.State().Pan; p.X != -99999 || p.Y != 99999 {
		t.Fatalf("got %+v", p)
	}
}

func TestSetSwipePercent_Clamps(t *testing.T) {
	v := New(CompareConfig())
	inputs := map[float64]float64{
		-10:   0,
		0:     0,
		37:    37,
		100:   100,
		101:   100,
		1e9:   100,
		-1e-9: 0,
	}
	for in, want := range inputs {
		v.SetSwipePercent(in)
		if got := v.State().SwipePercent; got != want {
			t.Errorf("SetSwipePercent(%v) = %v, want %v", in, got, want)
		}
	}
	v.SetSwipePercent(math.NaN())
	if got := v.State().SwipePercent; got != DefaultSwipePercent {
		t.Errorf("NaN: got %v, want %v", got, DefaultSwipePercent)
	}
}

func TestSetOpacityAndRadius_Clamp(t *testing.T) {
	v := New(CompareConfig())
	v.SetOpacityBlend(150)
	if got := v.State().OpacityBlend; got != 100 {
		t.Errorf("blend: got %v, want 100", got)
	}
	v.SetSpyglassRadius(10)
	if got := v.State().SpyglassRadius; got != 60 {
		t.Errorf("radius low: got %v, want 60", got)
	}
	v.SetSpyglassRadius(400)
	if got := v.State().SpyglassRadius; got != 260 {
		t.Errorf("radius high: got %v, want 260", got)
	}
	// independent of one another
	if got := v.State().SwipePercent; got != 50 {
		t.Errorf("swipe changed: %v", got)
	}
}

func TestSetMode_LeavingSpyglassClearsCursor(t *testing.T) {
	v := New(CompareConfig())
	if v.MoveCursor(geometry.Point{X: 1, Y: 1}) {
		t.Fatal("cursor accepted outside spyglass mode")
	}
	v.SetMode(Spyglass)
	v.MoveCursor(geometry.Point{X: 40, Y: 50})
	if v.State().Cursor == nil {
		t.Fatal("cursor not recorded")
	}
	v.SetMode(Opacity)
	if v.State().Cursor != nil {
		t.Fatal("cursor should be cleared when leaving spyglass")
	}
	if v.SetMode("zoom") {
		t.Fatal("invalid mode accepted")
	}
	if v.State().Mode != Opacity {
		t.Fatal("invalid mode changed state")
	}
}

func TestSetZoom_PinchClamp(t *testing.T) {
	v := New(GalleryConfig())
	v.SetZoom(12)
	if z := v.State().Zoom; z != 5 {
		t.Fatalf("got %v, want 5", z)
	}
	v.SetPan(geometry.Point{X: 3, Y: 3})
	v.SetZoom(0.2)
	s := v.State()
	if s.Zoom != 1 || !s.Pan.IsZero() {
		t.Fatalf("got zoom %v pan %+v, want rest", s.Zoom, s.Pan)
	}
}

func TestShowGrid(t *testing.T) {
	v := New(CelestialConfig())
	if v.State().ShowGrid() {
		t.Fatal("grid visible at rest")
	}
	v.ZoomIn() // 1.5
	v.ZoomIn() // 2
	v.ZoomIn() // 2.5
	if v.State().ShowGrid() {
		t.Fatal("grid visible at 2.5")
	}
	v.ZoomIn() // 3
	if !v.State().ShowGrid() {
		t.Fatal("grid hidden at 3")
	}
	v.ZoomOut() // 2.5
	v.ZoomOut() // 2
	if !v.State().ShowGrid() {
		t.Fatal("grid hidden on the way down before 1.5")
	}
	v.ZoomOut() // 1.5
	if v.State().ShowGrid() {
		t.Fatal("grid still visible at 1.5")
	}
	v.ZoomIn() // 2
	v.ZoomIn() // 2.5
	if v.State().ShowGrid() {
		t.Fatal("grid reappeared below 3")
	}
	v.ZoomIn() // 3
	v.ToggleGrid()
	if v.State().ShowGrid() {
		t.Fatal("manual toggle did not hide the grid")
	}
	v.Reset()
	v.ToggleGrid()
	if !v.State().ShowGrid() {
		t.Fatal("manual toggle did not show the grid at rest")
	}

	c := New(CompareConfig())
	for i := 0; i < 10; i++ {
		c.ZoomIn()
	}
	if c.State().ShowGrid() {
		t.Fatal("compare viewer has no grid threshold")
	}
}

func TestState_Tier(t *testing.T) {
	v := New(GalleryConfig())
	if v.State().Tier() != quality.Low {
		t.Fatal("expected low at rest")
	}
	v.ZoomIn()
	v.ZoomIn()
	if v.State().Tier() != quality.Medium {
		t.Fatal("expected medium at 2")
	}
	v.ZoomIn()
	v.ZoomIn()
	if v.State().Tier() != quality.High {
		t.Fatal("expected high at 3.5")
	}
}

func TestDispatch(t *testing.T) {
	v := New(CompareConfig())
	changed := v.DispatchAll([]Action{
		ZoomInAction{},
		SetModeAction{Mode: Spyglass},
		MoveCursorAction{Cursor: geometry.Point{X: 200, Y: 150}},
		SetSpyglassRadiusAction{Radius: 140},
	})
	if !changed {
		t.Fatal("expected change")
	}
	s := v.State()
	if s.Zoom != 1.5 || s.Mode != Spyglass || s.Cursor == nil || s.Cursor.X != 200 {
		t.Fatalf("unexpected state %+v", s)
	}
	if v.Dispatch(SetSpyglassRadiusAction{Radius: 140}) {
		t.Fatal("unchanged radius reported as change")
	}
}

func TestState_CopyIsolatesCursor(t *testing.T) {
	v := New(CompareConfig())
	v.SetMode(Spyglass)
	v.MoveCursor(geometry.Point{X: 1, Y: 2})
	s := v.State()
	s.Cursor.X = 99
	if v.State().Cursor.X != 1 {
		t.Fatal("State copy shares cursor storage")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []string{"swipe", "opacity", "spyglass"} {
		if _, err := ParseMode(m); err != nil {
			t.Errorf("ParseMode(%q): %v", m, err)
		}
	}
	if _, err := ParseMode("blend"); err == nil {
		t.Error("expected error")
	}
}
