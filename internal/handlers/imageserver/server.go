package imageserver

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"spacezoom-desktop/internal/cache"
	"spacezoom-desktop/internal/imagery"
	"spacezoom-desktop/internal/ratelimit"
)

// DefaultMaxFetches bounds concurrent upstream downloads
const DefaultMaxFetches = 4

// Server is the local image proxy. The frontend loads every image through
// it so renditions are cached on disk and each tier is only fetched when a
// viewer asks for it.
type Server struct {
	imageCache   *cache.ImageCache
	registry     *Registry
	httpClient   *http.Client
	fetchSem     *semaphore.Weighted
	limiter      *ratelimit.Handler
	snapshotBase string
	serverURL    string
	httpServer   *http.Server
	devMode      bool
}

// NewServer creates a new image proxy instance
func NewServer(imageCache *cache.ImageCache, devMode bool) *Server {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	return &Server{
		imageCache: imageCache,
		registry:   NewRegistry(),
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
		fetchSem:     semaphore.NewWeighted(DefaultMaxFetches),
		snapshotBase: imagery.WorldviewSnapshotURL,
		devMode:      devMode,
	}
}

// Registry returns the upstream URL registry
func (s *Server) Registry() *Registry {
	return s.registry
}

// SetSnapshotEndpoint overrides the Worldview snapshot URL
func (s *Server) SetSnapshotEndpoint(u string) {
	s.snapshotBase = u
}

// SetRateLimiter reports every upstream response to h
func (s *Server) SetRateLimiter(h *ratelimit.Handler) {
	s.limiter = h
}

// SetMaxFetches changes the upstream concurrency limit. Call before Start.
func (s *Server) SetMaxFetches(n int64) {
	if n < 1 {
		n = 1
	}
	s.fetchSem = semaphore.NewWeighted(n)
}

// GetServerURL returns the proxy base URL, empty until Start
func (s *Server) GetServerURL() string {
	return s.serverURL
}

// corsMiddleware adds CORS headers to allow requests from Wails frontend
// On macOS/Linux, Wails uses wails://wails origin which requires CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the proxy routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	if s.devMode {
		r.Use(middleware.Logger)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/image/{provider}/{id}/{tier}", s.handleImage)
	r.Get("/snapshot", s.handleSnapshot)
	return r
}

// Start starts the proxy on a random loopback port
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start image server: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	s.serverURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	log.Printf("[ImageServer] Started on %s", s.serverURL)

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[ImageServer] Stopped: %v", err)
		}
	}()

	return nil
}

// Shutdown stops the proxy
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
