package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"spacezoom-desktop/internal/cache"
	"spacezoom-desktop/internal/common"
	"spacezoom-desktop/internal/compositor"
	"spacezoom-desktop/internal/config"
	"spacezoom-desktop/internal/geometry"
	"spacezoom-desktop/internal/gesture"
	"spacezoom-desktop/internal/handlers/imageserver"
	"spacezoom-desktop/internal/imagery"
	"spacezoom-desktop/internal/quality"
	"spacezoom-desktop/internal/ratelimit"
	"spacezoom-desktop/internal/viewer"
	"spacezoom-desktop/internal/viewport"
)

// Linker flags
var (
	PostHogKey  string
	PostHogHost string
	AppVersion  string = "0.0.0-dev"
)

// FrameInterval is the paint tick of the frame loop (~60 Hz)
const FrameInterval = 16 * time.Millisecond

// ErrUnknownViewer is returned for bindings called with a closed or unknown viewer ID
var ErrUnknownViewer = errors.New("unknown viewer")

// FrameEvent is the payload of the viewer-frame event
type FrameEvent struct {
	ViewerID string           `json:"viewerId"`
	Frame    compositor.Frame `json:"frame"`
}

// registeredImage is an image the viewers can select by ID
type registeredImage struct {
	provider string
	sources  quality.Sources
}

// App struct
type App struct {
	ctx         context.Context
	cancel      context.CancelFunc
	settings    *config.UserSettings
	mu          sync.Mutex
	devMode     bool // Enable verbose logging in dev mode only
	phClient    posthog.Client
	imageCache  *cache.ImageCache
	imageServer *imageserver.Server
	nasa        *imagery.Client
	rateLimiter *ratelimit.Handler

	viewersMu sync.RWMutex
	viewers   map[string]*viewer.Viewer

	// images found through search or APOD, keyed by image ID
	found map[string]registeredImage

	// emit sends a frontend event
	emit func(name string, data ...interface{})
}

// NewApp creates a new App application struct
func NewApp() *App {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Printf("Failed to load settings, using defaults: %v", err)
		settings = config.DefaultSettings()
	}
	log.Printf("Settings loaded from: %s", config.GetSettingsPath())

	cacheDir := cache.GetCacheDir()
	imageCache, err := cache.NewImageCache(cacheDir, settings.CacheConfig())
	if err != nil {
		log.Printf("Failed to initialize image cache: %v", err)
		imageCache = nil // Continue without cache
	} else {
		log.Printf("Image cache initialized at %s (max %d MB)", cacheDir, settings.CacheMaxSizeMB)
	}

	var phClient posthog.Client
	if PostHogKey != "" && settings.AnalyticsEnabled {
		phConfig := posthog.Config{
			Endpoint: PostHogHost,
		}
		client, err := posthog.NewWithConfig(PostHogKey, phConfig)
		if err != nil {
			log.Printf("Failed to initialize PostHog: %v", err)
		} else {
			phClient = client
		}
	}

	a := newApp(settings, imageCache)
	a.phClient = phClient
	return a
}

// newApp wires an App around loaded settings and an optional cache
func newApp(settings *config.UserSettings, imageCache *cache.ImageCache) *App {
	a := &App{
		settings:    settings,
		imageCache:  imageCache,
		nasa:        imagery.NewClient(settings.NASAAPIKey),
		rateLimiter: ratelimit.NewHandler(),
		viewers:     make(map[string]*viewer.Viewer),
		found:       make(map[string]registeredImage),
	}
	a.nasa.SetRateLimiter(a.rateLimiter)
	a.emit = func(name string, data ...interface{}) {
		if a.ctx != nil {
			wailsRuntime.EventsEmit(a.ctx, name, data...)
		}
	}
	return a
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	a.rateLimiter.SetOnRateLimit(func(event ratelimit.RateLimitEvent) {
		wailsRuntime.LogError(ctx, event.Message)
		a.emit("rate-limit", event)
	})
	a.rateLimiter.SetOnRecovered(func(provider string) {
		a.emit("rate-limit-recovered", provider)
	})

	if a.imageCache != nil {
		if err := a.startImageServer(); err != nil {
			wailsRuntime.LogError(ctx, fmt.Sprintf("Failed to start image server: %v", err))
		} else {
			wailsRuntime.LogInfo(ctx, "Image server started at "+a.imageServer.GetServerURL())
			go a.warmCatalog(ctx)
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	go a.runFrameLoop(loopCtx)

	a.TrackEvent("app_started", map[string]interface{}{
		"version": a.GetAppVersion(),
		"os":      goruntime.GOOS,
		"arch":    goruntime.GOARCH,
	})
}

// startImageServer builds and starts the local image proxy over the cache.
// Images register with it only once it is running.
func (a *App) startImageServer() error {
	if a.imageServer != nil {
		return nil
	}
	server := imageserver.NewServer(a.imageCache, a.devMode)
	server.SetRateLimiter(a.rateLimiter)
	if err := server.Start(); err != nil {
		return err
	}
	a.imageServer = server
	return nil
}

// PrefetchWorkers is the worker count of the startup thumbnail prefetch
const PrefetchWorkers = 3

// warmCatalog registers the curated images and caches their low tier so
// gallery thumbnails and the first paint of each viewer are cache hits
func (a *App) warmCatalog(ctx context.Context) {
	var items []imageserver.PrefetchItem
	for _, g := range imagery.Gallery() {
		a.register(common.ProviderGallery, g.ID, g.Sources)
		items = append(items, imageserver.PrefetchItem{Provider: common.ProviderGallery, ID: g.ID})
	}
	for _, b := range imagery.CelestialBodies() {
		a.register(common.ProviderCelestial, b.ID, b.Sources())
		items = append(items, imageserver.PrefetchItem{Provider: common.ProviderCelestial, ID: b.ID})
	}

	res, err := a.imageServer.Prefetch(ctx, items, quality.Low, PrefetchWorkers, func(current, total int) {
		a.emit("prefetch-progress", map[string]interface{}{
			"current": current,
			"total":   total,
		})
	})
	if err != nil {
		log.Printf("Catalog prefetch stopped: %v", err)
		return
	}
	a.emitLog(fmt.Sprintf("Catalog prefetch: %d cached, %d fetched, %d failed", res.Cached, res.Fetched, res.Failed))
}

// TrackEvent sends an event to PostHog
func (a *App) TrackEvent(event string, props map[string]interface{}) {
	if a.phClient != nil {
		a.mu.Lock()
		distinctID := a.settings.InstallID
		a.mu.Unlock()
		a.phClient.Enqueue(posthog.Capture{
			DistinctId: distinctID,
			Event:      event,
			Properties: props,
		})
	}
}

// Shutdown cleans up resources
func (a *App) Shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	if a.imageServer != nil {
		if err := a.imageServer.Shutdown(ctx); err != nil {
			log.Printf("Image server shutdown: %v", err)
		}
	}
	if a.imageCache != nil {
		a.imageCache.Close()
	}
	a.mu.Lock()
	settings := *a.settings
	a.mu.Unlock()
	if err := config.SaveSettings(&settings); err != nil {
		log.Printf("Failed to save settings on shutdown: %v", err)
	}
	if a.phClient != nil {
		a.phClient.Close()
	}
}

// GetAppVersion returns the current application version
func (a *App) GetAppVersion() string {
	return AppVersion
}

// emitLog sends a log message to the frontend (only in dev mode)
func (a *App) emitLog(message string) {
	if a.devMode {
		a.emit("log", message)
	}
}

// runFrameLoop emits the latest pending frame of every viewer once per tick
func (a *App) runFrameLoop(ctx context.Context) {
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.flushFrames()
		}
	}
}

func (a *App) flushFrames() {
	a.viewersMu.RLock()
	viewers := make([]*viewer.Viewer, 0, len(a.viewers))
	for _, v := range a.viewers {
		viewers = append(viewers, v)
	}
	a.viewersMu.RUnlock()

	for _, v := range viewers {
		if f, ok := v.Flush(); ok {
			a.emit("viewer-frame", FrameEvent{ViewerID: v.ID(), Frame: f})
		}
	}
}

func (a *App) viewer(id string) (*viewer.Viewer, error) {
	a.viewersMu.RLock()
	defer a.viewersMu.RUnlock()
	v, ok := a.viewers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownViewer, id)
	}
	return v, nil
}

// ===================
// Viewer lifecycle
// ===================

// OpenViewer creates a viewer of the given variant ("gallery", "celestial"
// or "compare") and returns its ID. Gallery and celestial viewers open on
// their first image; compare viewers open on today's default snapshots.
func (a *App) OpenViewer(variant string) (string, error) {
	a.mu.Lock()
	cfg, err := a.settings.ViewportConfig(variant)
	a.mu.Unlock()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	v := viewer.New(id, variant, cfg)
	a.viewersMu.Lock()
	a.viewers[id] = v
	a.viewersMu.Unlock()

	switch variant {
	case config.VariantGallery:
		err = a.SelectGalleryImage(id, imagery.Gallery()[0].ID)
	case config.VariantCelestial:
		err = a.SelectCelestialBody(id, imagery.DefaultCelestialBody().ID)
	case config.VariantCompare:
		err = a.LoadComparePair(id, a.GetDefaultSnapshotRequest())
	}
	if err != nil {
		log.Printf("[Viewer] %s opened without an image: %v", id, err)
	}

	a.emitLog(fmt.Sprintf("Opened %s viewer %s", variant, id))
	a.TrackEvent("viewer_opened", map[string]interface{}{"variant": variant})
	return id, nil
}

// CloseViewer discards a viewer
func (a *App) CloseViewer(id string) error {
	a.viewersMu.Lock()
	defer a.viewersMu.Unlock()
	if _, ok := a.viewers[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownViewer, id)
	}
	delete(a.viewers, id)
	return nil
}

// SetViewerBounds records the viewer's on-screen rectangle, measured by the frontend
func (a *App) SetViewerBounds(id string, bounds geometry.Rect) error {
	v, err := a.viewer(id)
	if err != nil {
		return err
	}
	v.SetBounds(bounds)
	return nil
}

// HandleInput forwards a raw pointer, touch or keyboard event
func (a *App) HandleInput(id string, ev gesture.Event) (bool, error) {
	v, err := a.viewer(id)
	if err != nil {
		return false, err
	}
	return v.HandleInput(ev)
}

// GetFrame returns the current frame of a viewer
func (a *App) GetFrame(id string) (compositor.Frame, error) {
	v, err := a.viewer(id)
	if err != nil {
		return compositor.Frame{}, err
	}
	return v.Frame(), nil
}

// ===================
// Viewer controls
// ===================

func (a *App) dispatch(id string, actions ...viewport.Action) error {
	v, err := a.viewer(id)
	if err != nil {
		return err
	}
	v.Dispatch(actions...)
	return nil
}

// ZoomIn raises the zoom by one step
func (a *App) ZoomIn(id string) error {
	return a.dispatch(id, viewport.ZoomInAction{})
}

// ZoomOut lowers the zoom by one step
func (a *App) ZoomOut(id string) error {
	return a.dispatch(id, viewport.ZoomOutAction{})
}

// ResetView returns the viewer to rest scale
func (a *App) ResetView(id string) error {
	return a.dispatch(id, viewport.ResetAction{})
}

// ToggleGrid flips the reference grid
func (a *App) ToggleGrid(id string) error {
	return a.dispatch(id, viewport.ToggleGridAction{})
}

// compareDispatch applies comparison controls, which only compare viewers have
func (a *App) compareDispatch(id string, actions ...viewport.Action) (bool, error) {
	v, err := a.viewer(id)
	if err != nil {
		return false, err
	}
	if !v.Compare() {
		return false, viewer.ErrNotCompare
	}
	return v.Dispatch(actions...), nil
}

// SetMode switches the comparison mode ("swipe", "opacity", "spyglass").
// The mode lives with the viewer; new viewers open in swipe mode.
func (a *App) SetMode(id, mode string) error {
	m, err := viewport.ParseMode(mode)
	if err != nil {
		return err
	}
	changed, err := a.compareDispatch(id, viewport.SetModeAction{Mode: m})
	if err != nil {
		return err
	}
	if changed {
		a.TrackEvent("compare_mode_changed", map[string]interface{}{"mode": mode})
	}
	return nil
}

// SetSwipePercent moves the swipe divider
func (a *App) SetSwipePercent(id string, percent float64) error {
	_, err := a.compareDispatch(id, viewport.SetSwipePercentAction{Percent: percent})
	return err
}

// SetOpacityBlend sets the overlay opacity in percent
func (a *App) SetOpacityBlend(id string, percent float64) error {
	_, err := a.compareDispatch(id, viewport.SetOpacityBlendAction{Percent: percent})
	return err
}

// SetSpyglassRadius sets the spyglass lens radius in pixels
func (a *App) SetSpyglassRadius(id string, radius float64) error {
	_, err := a.compareDispatch(id, viewport.SetSpyglassRadiusAction{Radius: radius})
	return err
}

// ===================
// Image selection
// ===================

// register routes an image's sources through the local image server
func (a *App) register(provider, id string, sources quality.Sources) quality.Sources {
	if a.imageServer == nil {
		return sources
	}
	return a.imageServer.Register(provider, id, sources)
}

// SelectGalleryImage shows a curated, searched or APOD image in a gallery viewer
func (a *App) SelectGalleryImage(id, imageID string) error {
	v, err := a.viewer(id)
	if err != nil {
		return err
	}

	var img registeredImage
	if g, ok := imagery.FindGalleryImage(imageID); ok {
		img = registeredImage{provider: common.ProviderGallery, sources: g.Sources}
	} else {
		a.mu.Lock()
		img, ok = a.found[imageID]
		a.mu.Unlock()
		if !ok {
			return fmt.Errorf("unknown image: %s", imageID)
		}
	}
	return v.SelectImage(imageID, a.register(img.provider, imageID, img.sources))
}

// SelectCelestialBody shows a planetary map in a celestial viewer
func (a *App) SelectCelestialBody(id, bodyID string) error {
	v, err := a.viewer(id)
	if err != nil {
		return err
	}
	body, ok := imagery.FindCelestialBody(bodyID)
	if !ok {
		return fmt.Errorf("unknown celestial body: %s", bodyID)
	}
	return v.SelectImage(body.ID, a.register(common.ProviderCelestial, body.ID, body.Sources()))
}

// LoadComparePair requests a new snapshot pair for a compare viewer. An
// invalid request leaves the viewer showing the error on both sides.
func (a *App) LoadComparePair(id string, req imagery.SnapshotRequest) error {
	v, err := a.viewer(id)
	if err != nil {
		return err
	}
	if !v.Compare() {
		return viewer.ErrNotCompare
	}

	left, right, err := req.Snapshots()
	if err != nil {
		v.SetPair(imagery.FailedPair(err.Error()))
		return err
	}
	leftURL, rightURL, err := a.snapshotURLs(left, right)
	if err != nil {
		v.SetPair(imagery.FailedPair(err.Error()))
		return err
	}
	a.emitLog(fmt.Sprintf("Comparing %s (%s) with %s (%s)", left.Time, left.Layers, right.Time, right.Layers))
	return v.SetPair(imagery.NewPair(leftURL, rightURL))
}

func (a *App) snapshotURLs(left, right imagery.Snapshot) (string, string, error) {
	if a.imageServer == nil {
		l, err := left.URL()
		if err != nil {
			return "", "", err
		}
		r, err := right.URL()
		return l, r, err
	}
	l, err := a.imageServer.SnapshotURL(left)
	if err != nil {
		return "", "", err
	}
	r, err := a.imageServer.SnapshotURL(right)
	return l, r, err
}

// GetDefaultSnapshotRequest returns today-versus-yesterday over the
// configured layer and region
func (a *App) GetDefaultSnapshotRequest() imagery.SnapshotRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings.DefaultSnapshotRequest(imagery.DefaultSnapshotRequest(time.Now()))
}

// ImageLoaded is called by an image element's load handler. side is
// "left" or "right" for compare viewers and ignored otherwise.
func (a *App) ImageLoaded(id, side, src string) error {
	v, err := a.viewer(id)
	if err != nil {
		return err
	}
	s, err := parseSide(v, side)
	if err != nil {
		return err
	}
	v.ImageLoaded(s, src)
	return nil
}

// ImageFailed is called by an image element's error handler
func (a *App) ImageFailed(id, side, src, msg string) error {
	v, err := a.viewer(id)
	if err != nil {
		return err
	}
	s, err := parseSide(v, side)
	if err != nil {
		return err
	}
	if v.ImageFailed(s, src, msg) {
		a.TrackEvent("image_failed", map[string]interface{}{
			"variant": v.Variant(),
			"side":    string(s),
		})
	}
	return nil
}

func parseSide(v *viewer.Viewer, side string) (imagery.Side, error) {
	if !v.Compare() && side == "" {
		return imagery.Left, nil
	}
	return imagery.ParseSide(side)
}
