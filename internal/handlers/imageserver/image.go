package imageserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	_ "golang.org/x/image/tiff" // Register TIFF and WebP decoders for upstream validation
	_ "golang.org/x/image/webp"

	"spacezoom-desktop/internal/common"
	"spacezoom-desktop/internal/imagery"
	"spacezoom-desktop/internal/quality"
	"spacezoom-desktop/internal/ratelimit"
)

// maxImageBytes caps a single upstream download
const maxImageBytes = 64 << 20

// handleImage serves one tier of a registered image
// URL format: /image/{provider}/{id}/{tier}
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid image id", http.StatusBadRequest)
		return
	}
	tier, err := quality.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !common.IsProvider(provider) {
		http.Error(w, fmt.Sprintf("unknown provider: %s", provider), http.StatusNotFound)
		return
	}

	upstream, ok := s.registry.Lookup(provider, id)
	if !ok {
		http.Error(w, fmt.Sprintf("image not registered: %s/%s", provider, id), http.StatusNotFound)
		return
	}

	var lastErr error
	for _, t := range fallbackTiers(upstream, tier) {
		if data, contentType, found := s.imageCache.Get(provider, id, string(t)); found {
			writeImage(w, data, contentType, "HIT", t)
			return
		}

		data, contentType, err := s.fetch(r.Context(), provider, upstream.Exact(t))
		if err != nil {
			log.Printf("[ImageServer] Failed to fetch %s/%s/%s: %v", provider, id, t, err)
			lastErr = err
			continue
		}
		if err := s.imageCache.Set(provider, id, string(t), contentType, data); err != nil {
			log.Printf("[ImageServer] Failed to cache %s/%s/%s: %v", provider, id, t, err)
		}
		writeImage(w, data, contentType, "MISS", t)
		return
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no source for tier %s", tier)
	}
	http.Error(w, lastErr.Error(), upstreamStatus(lastErr))
}

// upstreamStatus maps a fetch error to the proxy response status
func upstreamStatus(err error) int {
	if errors.Is(err, ratelimit.ErrRateLimited) {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

// fallbackTiers lists the tiers to try for a request: the requested tier,
// then each lower tier, skipping tiers without an upstream URL. A request
// for a tier below every available one falls forward to the lowest present.
func fallbackTiers(upstream quality.Sources, want quality.Tier) []quality.Tier {
	var out []quality.Tier
	seen := map[string]bool{}
	start := 0
	for i, t := range quality.Tiers {
		if t == want {
			start = i
		}
	}
	for i := start; i >= 0; i-- {
		t := quality.Tiers[i]
		u := upstream.Exact(t)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		for _, t := range quality.Tiers[start+1:] {
			if upstream.Exact(t) != "" {
				return []quality.Tier{t}
			}
		}
	}
	return out
}

func writeImage(w http.ResponseWriter, data []byte, contentType, status string, t quality.Tier) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000") // 1 year cache
	w.Header().Set("X-Cache-Status", status)
	w.Header().Set("X-Image-Tier", string(t))
	w.Write(data)
}

// fetch downloads an upstream image, bounded by the fetch semaphore, and
// checks that the body decodes as an image
func (s *Server) fetch(ctx context.Context, provider, rawURL string) ([]byte, string, error) {
	if err := s.fetchSem.Acquire(ctx, 1); err != nil {
		return nil, "", err
	}
	defer s.fetchSem.Release(1)

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", imagery.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if s.limiter != nil && s.limiter.CheckResponse(provider, resp) {
		return nil, "", fmt.Errorf("%w (HTTP %d)", ratelimit.ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("upstream returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d MB", maxImageBytes>>20)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("upstream returned non-image content: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/" + format
	}
	return data, contentType, nil
}
