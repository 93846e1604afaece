package quality

// Key identifies a displayed image element. The frontend keys the <img>
// element on it, so a new element only replaces the old one after load.
type Key struct {
	ImageID string `json:"imageId"`
	Tier    Tier   `json:"tier"`
}

// Selector swaps the requested image URL when the zoom crosses a tier
// boundary. The displayed source stays in place until the requested one
// reports a successful load.
type Selector struct {
	imageID   string
	sources   Sources
	displayed *Key
	pending   *Key
	failed    map[Key]bool
}

// NewSelector creates an empty selector
func NewSelector() *Selector {
	return &Selector{}
}

// Select switches to a new image. Nothing is displayed for the new image
// until its first tier loads.
func (s *Selector) Select(imageID string, sources Sources, zoom float64) {
	s.imageID = imageID
	s.sources = sources
	s.displayed = nil
	s.pending = nil
	s.failed = nil
	s.Update(zoom)
}

// Clear forgets the current image
func (s *Selector) Clear() {
	*s = Selector{}
}

// ImageID returns the selected image id
func (s *Selector) ImageID() string {
	return s.imageID
}

// Update recomputes the wanted tier for zoom. It returns true when a new
// source must be requested.
func (s *Selector) Update(zoom float64) bool {
	if s.imageID == "" || s.sources.Empty() {
		return false
	}
	want := Key{ImageID: s.imageID, Tier: TierFor(zoom)}

	if s.displayed != nil && s.sameSource(*s.displayed, want) {
		// back on the displayed tier, abandon any in-flight request
		s.pending = nil
		return false
	}
	if s.pending != nil && *s.pending == want {
		return false
	}
	if s.failed[want] {
		// no retry; keep whatever is on screen
		s.pending = nil
		return false
	}
	s.pending = &want
	return true
}

func (s *Selector) sameSource(a, b Key) bool {
	return a.ImageID == b.ImageID && s.sources.URL(a.Tier) == s.sources.URL(b.Tier)
}

// Displayed returns the key and URL currently shown
func (s *Selector) Displayed() (Key, string, bool) {
	if s.displayed == nil {
		return Key{}, "", false
	}
	return *s.displayed, s.sources.URL(s.displayed.Tier), true
}

// Pending returns the key and URL requested but not yet loaded
func (s *Selector) Pending() (Key, string, bool) {
	if s.pending == nil {
		return Key{}, "", false
	}
	return *s.pending, s.sources.URL(s.pending.Tier), true
}

// Loading reports whether nothing is displayed yet for the current image
func (s *Selector) Loading() bool {
	return s.displayed == nil && s.pending != nil
}

// Loaded promotes the pending source to displayed. Stale keys are ignored.
func (s *Selector) Loaded(k Key) bool {
	if s.pending == nil || *s.pending != k {
		return false
	}
	s.displayed = s.pending
	s.pending = nil
	return true
}

// LoadedURL is Loaded for callers that only know the src attribute
func (s *Selector) LoadedURL(url string) bool {
	if s.pending == nil || url == "" || s.sources.URL(s.pending.Tier) != url {
		return false
	}
	return s.Loaded(*s.pending)
}

// Failed drops the pending request and keeps the displayed source
func (s *Selector) Failed(k Key) bool {
	if s.pending == nil || *s.pending != k {
		return false
	}
	if s.failed == nil {
		s.failed = make(map[Key]bool)
	}
	s.failed[k] = true
	s.pending = nil
	return true
}

// FailedURL is Failed for callers that only know the src attribute
func (s *Selector) FailedURL(url string) bool {
	if s.pending == nil || url == "" || s.sources.URL(s.pending.Tier) != url {
		return false
	}
	return s.Failed(*s.pending)
}
