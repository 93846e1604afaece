package compositor

import "sync"

// Scheduler holds at most one pending frame between paint ticks.
// Frames scheduled before the next Flush overwrite each other, so only
// the most recent one is painted and the final frame of a gesture is
// never dropped.
type Scheduler struct {
	mu      sync.Mutex
	pending *Frame
	dropped int
}

// Schedule stores f as the pending frame. It returns true when no frame was
// pending, meaning the caller should request a paint tick.
func (s *Scheduler) Schedule(f Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := s.pending == nil
	if !first {
		s.dropped++
	}
	s.pending = &f
	return first
}

// Flush takes the pending frame, if any
func (s *Scheduler) Flush() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return Frame{}, false
	}
	f := *s.pending
	s.pending = nil
	return f, true
}

// Pending reports whether a frame is waiting for the next tick
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Coalesced returns how many frames were overwritten before being painted
func (s *Scheduler) Coalesced() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
