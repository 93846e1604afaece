package imageserver

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"spacezoom-desktop/internal/quality"
)

// PrefetchItem is one registered image to warm in the cache
type PrefetchItem struct {
	Provider string
	ID       string
}

// PrefetchResult summarises a prefetch run
type PrefetchResult struct {
	Total   int `json:"total"`
	Cached  int `json:"cached"` // already on disk
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"`
}

type prefetchOutcome int

const (
	prefetchCached prefetchOutcome = iota
	prefetchFetched
	prefetchFailed
)

// Prefetch downloads one tier of each registered image into the cache
// using a worker pool, so gallery thumbnails are served as cache hits.
// Items that are not registered count as failed.
func (s *Server) Prefetch(
	ctx context.Context,
	items []PrefetchItem,
	tier quality.Tier,
	workers int,
	onProgress func(current, total int),
) (PrefetchResult, error) {
	total := len(items)
	result := PrefetchResult{Total: total}
	if total == 0 {
		return result, nil
	}

	var done int64
	itemChan := make(chan PrefetchItem, total)
	outcomes := make(chan prefetchOutcome, total)

	workerCount := workers
	if workerCount < 1 {
		workerCount = 1
	}
	if total < workerCount {
		workerCount = total
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemChan {
				outcomes <- s.prefetchOne(ctx, item, tier)
				n := atomic.AddInt64(&done, 1)
				if onProgress != nil {
					onProgress(int(n), total)
				}
			}
		}()
	}

	for _, item := range items {
		itemChan <- item
	}
	close(itemChan)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		switch o {
		case prefetchCached:
			result.Cached++
		case prefetchFetched:
			result.Fetched++
		default:
			result.Failed++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("prefetch interrupted: %w", err)
	}
	log.Printf("[ImageServer] Prefetched %d images (%d cached, %d fetched, %d failed)",
		total, result.Cached, result.Fetched, result.Failed)
	return result, nil
}

func (s *Server) prefetchOne(ctx context.Context, item PrefetchItem, tier quality.Tier) prefetchOutcome {
	if ctx.Err() != nil {
		return prefetchFailed
	}
	upstream, ok := s.registry.Lookup(item.Provider, item.ID)
	if !ok {
		return prefetchFailed
	}
	tiers := fallbackTiers(upstream, tier)
	if len(tiers) == 0 {
		return prefetchFailed
	}
	t := tiers[0]
	if _, _, found := s.imageCache.Get(item.Provider, item.ID, string(t)); found {
		return prefetchCached
	}
	data, contentType, err := s.fetch(ctx, item.Provider, upstream.Exact(t))
	if err != nil {
		log.Printf("[ImageServer] Prefetch %s/%s failed: %v", item.Provider, item.ID, err)
		return prefetchFailed
	}
	if err := s.imageCache.Set(item.Provider, item.ID, string(t), contentType, data); err != nil {
		log.Printf("[ImageServer] Failed to cache %s/%s: %v", item.Provider, item.ID, err)
	}
	return prefetchFetched
}
