package compositor

import (
	"sync"
	"testing"
)

func TestScheduler_LastValueWins(t *testing.T) {
	var s Scheduler
	if !s.Schedule(Frame{Zoom: 1}) {
		t.Fatal("first schedule should request a paint")
	}
	if s.Schedule(Frame{Zoom: 1.5}) {
		t.Fatal("second schedule should not request another paint")
	}
	s.Schedule(Frame{Zoom: 2})

	f, ok := s.Flush()
	if !ok || f.Zoom != 2 {
		t.Fatalf("got %v %v, want zoom 2", f.Zoom, ok)
	}
	if _, ok := s.Flush(); ok {
		t.Fatal("frame painted twice")
	}
	if got := s.Coalesced(); got != 2 {
		t.Fatalf("coalesced: got %d, want 2", got)
	}
}

func TestScheduler_RequestsAgainAfterFlush(t *testing.T) {
	var s Scheduler
	s.Schedule(Frame{})
	s.Flush()
	if s.Pending() {
		t.Fatal("pending after flush")
	}
	if !s.Schedule(Frame{Zoom: 3}) {
		t.Fatal("schedule after flush should request a paint")
	}
}

func TestScheduler_Concurrent(t *testing.T) {
	var s Scheduler
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(z float64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Schedule(Frame{Zoom: z})
				s.Flush()
			}
		}(float64(i))
	}
	wg.Wait()
	s.Flush()
	if s.Pending() {
		t.Fatal("frame left pending")
	}
}
