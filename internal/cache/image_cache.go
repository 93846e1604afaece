package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const indexFile = "cache_index.json"

// ImageCache is a persistent disk cache for proxied images, keyed by
// provider, image ID and quality tier, with an in-memory LRU in front.
// Layout: {baseDir}/{provider}/{xxhash(key)}{ext}, index in {baseDir}/cache_index.json
type ImageCache struct {
	baseDir   string
	maxSize   int64 // Maximum cache size in bytes
	currSize  int64 // Current cache size (atomic)
	ttl       time.Duration
	mu        sync.RWMutex
	metadata  map[string]*ImageMetadata
	hot       *lru.Cache[string, []byte]
	evictChan chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	saveMu    sync.Mutex
	saveLater func(f func())

	hits   atomic.Int64
	misses atomic.Int64
}

// ImageMetadata stores information about a cached image
type ImageMetadata struct {
	Key         string    `json:"key"`
	Provider    string    `json:"provider"`
	ImageID     string    `json:"imageId"`
	Tier        string    `json:"tier"`
	ContentType string    `json:"contentType"`
	File        string    `json:"file"` // relative to the cache directory
	Size        int64     `json:"size"`
	AccessTime  time.Time `json:"accessTime"`
	CreateTime  time.Time `json:"createTime"`
}

// Stats is a snapshot of cache usage
type Stats struct {
	Entries    int    `json:"entries"`
	SizeBytes  int64  `json:"sizeBytes"`
	MaxBytes   int64  `json:"maxBytes"`
	HotEntries int    `json:"hotEntries"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
	Path       string `json:"path"`
}

// NewImageCache opens or creates the cache in baseDir
func NewImageCache(baseDir string, cfg *Config) (*ImageCache, error) {
	conf := cfg.normalized()
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	hot, err := lru.New[string, []byte](conf.HotEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	c := &ImageCache{
		baseDir:   baseDir,
		maxSize:   int64(conf.MaxSizeMB) * 1024 * 1024,
		ttl:       time.Duration(conf.TTLDays) * 24 * time.Hour,
		metadata:  make(map[string]*ImageMetadata),
		hot:       hot,
		evictChan: make(chan struct{}, 1),
		done:      make(chan struct{}),
		saveLater: debounce.New(2 * time.Second),
	}

	if err := c.loadMetadata(); err != nil {
		// File names are hashes, so an index cannot be rebuilt from disk
		if !os.IsNotExist(err) {
			log.Printf("[ImageCache] Index unreadable, starting empty: %v", err)
		}
		if err := c.reset(); err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
	}

	go c.maintenanceWorker()

	return c, nil
}

// BuildKey creates a cache key for one rendition of an image
func BuildKey(provider, imageID, tier string) string {
	return provider + ":" + imageID + ":" + tier
}

// Get retrieves an image rendition
func (c *ImageCache) Get(provider, imageID, tier string) ([]byte, string, bool) {
	key := BuildKey(provider, imageID, tier)

	c.mu.RLock()
	meta, exists := c.metadata[key]
	c.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		return nil, "", false
	}

	if c.ttl > 0 && time.Since(meta.CreateTime) > c.ttl {
		c.evict(key)
		c.misses.Add(1)
		return nil, "", false
	}

	data, ok := c.hot.Get(key)
	if !ok {
		var err error
		data, err = os.ReadFile(filepath.Join(c.baseDir, meta.File))
		if err != nil {
			// File missing - remove from metadata
			c.evict(key)
			c.misses.Add(1)
			return nil, "", false
		}
		c.hot.Add(key, data)
	}

	c.mu.Lock()
	meta.AccessTime = time.Now()
	contentType := meta.ContentType
	c.mu.Unlock()
	c.scheduleSave()

	c.hits.Add(1)
	return data, contentType, true
}

// Set stores an image rendition
func (c *ImageCache) Set(provider, imageID, tier, contentType string, data []byte) error {
	key := BuildKey(provider, imageID, tier)
	size := int64(len(data))

	now := time.Now()
	meta := &ImageMetadata{
		Key:         key,
		Provider:    provider,
		ImageID:     imageID,
		Tier:        tier,
		ContentType: contentType,
		File:        fileName(provider, key, contentType),
		Size:        size,
		AccessTime:  now,
		CreateTime:  now,
	}

	filePath := filepath.Join(c.baseDir, meta.File)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	c.mu.Lock()
	if old, exists := c.metadata[key]; exists {
		atomic.AddInt64(&c.currSize, -old.Size)
		if old.File != meta.File {
			os.Remove(filepath.Join(c.baseDir, old.File))
		}
	}
	c.metadata[key] = meta
	c.mu.Unlock()

	c.hot.Add(key, data)
	atomic.AddInt64(&c.currSize, size)

	if atomic.LoadInt64(&c.currSize) > c.maxSize {
		select {
		case c.evictChan <- struct{}{}:
		default:
		}
	}

	c.scheduleSave()

	return nil
}

// scheduleSave coalesces index writes after bursts of Set calls
func (c *ImageCache) scheduleSave() {
	c.saveLater(func() {
		select {
		case <-c.done:
			return
		default:
		}
		if err := c.saveMetadata(); err != nil {
			log.Printf("[ImageCache] Failed to save index: %v", err)
		}
	})
}

// fileName derives a filesystem-safe name from the cache key
func fileName(provider, key, contentType string) string {
	h := xxhash.Sum64String(key)
	var b [8]byte
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return filepath.Join(sanitize(provider), hex.EncodeToString(b[:])+extFor(contentType))
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "_"
	}
	return s
}

func extFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/jpeg"):
		return ".jpg"
	case strings.HasPrefix(contentType, "image/png"):
		return ".png"
	case strings.HasPrefix(contentType, "image/webp"):
		return ".webp"
	case strings.HasPrefix(contentType, "image/gif"):
		return ".gif"
	case strings.HasPrefix(contentType, "image/tiff"):
		return ".tif"
	}
	return ".bin"
}

// evict removes one entry
func (c *ImageCache) evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked(key)
}

func (c *ImageCache) evictLocked(key string) {
	meta, ok := c.metadata[key]
	if !ok {
		return
	}
	os.Remove(filepath.Join(c.baseDir, meta.File))
	delete(c.metadata, key)
	c.hot.Remove(key)
	atomic.AddInt64(&c.currSize, -meta.Size)
}

// maintenanceWorker runs periodic cache maintenance until Close
func (c *ImageCache) maintenanceWorker() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-c.evictChan:
			c.evictLeastRecent()
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

// evictLeastRecent removes least recently used images when the cache is full
func (c *ImageCache) evictLeastRecent() {
	c.mu.Lock()

	currSize := atomic.LoadInt64(&c.currSize)
	if currSize <= c.maxSize {
		c.mu.Unlock()
		return
	}

	// Target size: 80% of max to avoid thrashing
	targetSize := c.maxSize * 8 / 10

	entries := make([]*ImageMetadata, 0, len(c.metadata))
	for _, meta := range c.metadata {
		entries = append(entries, meta)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AccessTime.Before(entries[j].AccessTime)
	})

	evicted := 0
	for _, e := range entries {
		if currSize <= targetSize {
			break
		}
		currSize -= e.Size
		c.evictLocked(e.Key)
		evicted++
	}
	c.mu.Unlock()

	log.Printf("[ImageCache] Evicted %d images to stay under %d MB", evicted, c.maxSize/(1024*1024))
	c.saveMetadata()
}

// evictExpired removes images older than the TTL
func (c *ImageCache) evictExpired() {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	now := time.Now()
	evicted := 0
	for key, meta := range c.metadata {
		if now.Sub(meta.CreateTime) > c.ttl {
			c.evictLocked(key)
			evicted++
		}
	}
	c.mu.Unlock()

	if evicted > 0 {
		c.saveMetadata()
	}
}

// loadMetadata loads the metadata index from disk
func (c *ImageCache) loadMetadata() error {
	data, err := os.ReadFile(filepath.Join(c.baseDir, indexFile))
	if err != nil {
		return err
	}

	var metadata map[string]*ImageMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return fmt.Errorf("failed to parse metadata: %w", err)
	}
	if metadata == nil {
		metadata = make(map[string]*ImageMetadata)
	}

	var totalSize int64
	for _, meta := range metadata {
		totalSize += meta.Size
	}

	c.mu.Lock()
	c.metadata = metadata
	c.mu.Unlock()
	atomic.StoreInt64(&c.currSize, totalSize)

	return nil
}

// saveMetadata writes the metadata index to disk
func (c *ImageCache) saveMetadata() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.RLock()
	data, err := json.MarshalIndent(c.metadata, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	// Write to temp file first, then rename (atomic operation)
	metaPath := filepath.Join(c.baseDir, indexFile)
	tempPath := metaPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Rename(tempPath, metaPath); err != nil {
		return fmt.Errorf("failed to rename metadata file: %w", err)
	}
	return nil
}

// reset removes every cached file and writes an empty index
func (c *ImageCache) reset() error {
	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		return fmt.Errorf("failed to scan cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			os.RemoveAll(filepath.Join(c.baseDir, e.Name()))
		}
	}

	c.mu.Lock()
	c.metadata = make(map[string]*ImageMetadata)
	c.mu.Unlock()
	c.hot.Purge()
	atomic.StoreInt64(&c.currSize, 0)

	return c.saveMetadata()
}

// Stats returns cache statistics
func (c *ImageCache) Stats() Stats {
	c.mu.RLock()
	entries := len(c.metadata)
	c.mu.RUnlock()

	return Stats{
		Entries:    entries,
		SizeBytes:  atomic.LoadInt64(&c.currSize),
		MaxBytes:   c.maxSize,
		HotEntries: c.hot.Len(),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Path:       c.baseDir,
	}
}

// Clear removes all cached images
func (c *ImageCache) Clear() error {
	return c.reset()
}

// Flush writes the index to disk
func (c *ImageCache) Flush() error {
	return c.saveMetadata()
}

// Close stops background maintenance and persists the index
func (c *ImageCache) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.saveMetadata()
}

// GetCachePath returns the base directory of the cache
func (c *ImageCache) GetCachePath() string {
	return c.baseDir
}
