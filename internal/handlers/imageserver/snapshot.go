package imageserver

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"spacezoom-desktop/internal/common"
	"spacezoom-desktop/internal/imagery"
)

// snapshotTier is the cache tier of Worldview snapshots, which have one rendition
const snapshotTier = "orig"

// SnapshotURL returns the proxy URL of a Worldview snapshot. Without a
// running proxy it returns the upstream URL.
func (s *Server) SnapshotURL(snap imagery.Snapshot) (string, error) {
	if err := snap.Validate(); err != nil {
		return "", err
	}
	if s.serverURL == "" {
		return s.snapshotBase + "?" + snap.Query().Encode(), nil
	}
	q := url.Values{}
	q.Set("time", snap.Time)
	q.Set("bbox", snap.BBox)
	q.Set("layers", snap.Layers)
	q.Set("width", strconv.Itoa(snap.Width))
	q.Set("height", strconv.Itoa(snap.Height))
	q.Set("format", snap.Format)
	return s.serverURL + "/snapshot?" + q.Encode(), nil
}

// handleSnapshot proxies a Worldview GetSnapshot request with caching
// URL format: /snapshot?time=YYYY-MM-DD&bbox=minLon,minLat,maxLon,maxLat&layers=...&width=&height=
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap := imagery.Snapshot{
		Time:   q.Get("time"),
		BBox:   q.Get("bbox"),
		Layers: q.Get("layers"),
		Format: q.Get("format"),
	}
	var err error
	if v := q.Get("width"); v != "" {
		if snap.Width, err = strconv.Atoi(v); err != nil {
			http.Error(w, "Invalid width", http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("height"); v != "" {
		if snap.Height, err = strconv.Atoi(v); err != nil {
			http.Error(w, "Invalid height", http.StatusBadRequest)
			return
		}
	}
	if err := snap.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := fmt.Sprintf("%s|%s|%s|%dx%d|%s", snap.Time, snap.Layers, snap.BBox, snap.Width, snap.Height, snap.Format)
	if data, contentType, found := s.imageCache.Get(common.ProviderWorldview, id, snapshotTier); found {
		writeImage(w, data, contentType, "HIT", "")
		return
	}

	upstream := s.snapshotBase + "?" + snap.Query().Encode()
	data, contentType, err := s.fetch(r.Context(), common.ProviderWorldview, upstream)
	if err != nil {
		log.Printf("[ImageServer] Snapshot failed (%s %s): %v", snap.Time, snap.Layers, err)
		http.Error(w, err.Error(), upstreamStatus(err))
		return
	}
	if err := s.imageCache.Set(common.ProviderWorldview, id, snapshotTier, contentType, data); err != nil {
		log.Printf("[ImageServer] Failed to cache snapshot: %v", err)
	}
	writeImage(w, data, contentType, "MISS", "")
}
