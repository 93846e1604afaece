package geometry

import (
	"math"
	"testing"
)

func TestPercentX(t *testing.T) {
	m := NewMapper(Rect{Left: 100, Top: 20, Width: 400, Height: 300})

	tests := []struct {
		name    string
		clientX float64
		want    float64
	}{
		{"left edge", 100, 0},
		{"middle", 300, 50},
		{"right edge", 500, 100},
		{"before left", 20, 0},
		{"past right", 900, 100},
		{"quarter", 200, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.PercentX(tt.clientX); got != tt.want {
				t.Fatalf("PercentX(%v) = %v, want %v", tt.clientX, got, tt.want)
			}
		})
	}
}

func TestPercentX_Unmeasured(t *testing.T) {
	m := NewMapper(Rect{})
	if got := m.PercentX(250); got != DefaultPercent {
		t.Fatalf("got %v, want %v", got, DefaultPercent)
	}
	m.SetBounds(Rect{Left: 0, Width: 100, Height: 0})
	if got := m.PercentX(25); got != DefaultPercent {
		t.Fatalf("zero height: got %v, want %v", got, DefaultPercent)
	}
}

func TestLocal_ClampsToViewport(t *testing.T) {
	m := NewMapper(Rect{Left: 10, Top: 10, Width: 200, Height: 100})

	p, ok := m.Local(Point{X: 500, Y: -40})
	if !ok {
		t.Fatal("expected measured viewport")
	}
	if p.X != 200 || p.Y != 0 {
		t.Fatalf("got %+v, want {200 0}", p)
	}

	p, _ = m.Local(Point{X: 60, Y: 35})
	if p.X != 50 || p.Y != 25 {
		t.Fatalf("got %+v, want {50 25}", p)
	}
}

func TestLocal_Unmeasured(t *testing.T) {
	m := NewMapper(Rect{})
	if _, ok := m.Local(Point{X: 1, Y: 1}); ok {
		t.Fatal("expected ok=false for unmeasured viewport")
	}
	if _, ok := m.Normalized(Point{X: 1, Y: 1}); ok {
		t.Fatal("expected ok=false for unmeasured viewport")
	}
}

func TestNormalized(t *testing.T) {
	m := NewMapper(Rect{Left: 0, Top: 0, Width: 400, Height: 200})
	p, ok := m.Normalized(Point{X: 100, Y: 150})
	if !ok {
		t.Fatal("expected ok")
	}
	if p.X != 0.25 || p.Y != 0.75 {
		t.Fatalf("got %+v, want {0.25 0.75}", p)
	}
}

func TestToImage_RoundTrip(t *testing.T) {
	pan := Point{X: 40, Y: -20}
	img := ToImage(Point{X: 200, Y: 150}, 2, pan)
	if img.X != 80 || img.Y != 85 {
		t.Fatalf("got %+v, want {80 85}", img)
	}
	back := ToViewport(img, 2, pan)
	if back.X != 200 || back.Y != 150 {
		t.Fatalf("round trip got %+v", back)
	}
}

func TestToImage_GuardsZoom(t *testing.T) {
	got := ToImage(Point{X: 10, Y: 10}, math.NaN(), Point{})
	if got.X != 10 || got.Y != 10 {
		t.Fatalf("got %+v, want identity", got)
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Point{X: 0, Y: 0}, Point{X: 3, Y: 4}); d != 5 {
		t.Fatalf("got %v, want 5", d)
	}
}
