package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/figsync/internal/core/ports/driven"
	"github.com/custodia-labs/figsync/internal/core/ports/driving"
	"github.com/custodia-labs/figsync/internal/logger"
)

// shutdownTimeout bounds how long Stop waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server serves the HTTP boundary.
type Server struct {
	sync   driving.SyncService
	assets driving.AssetService
	blobs  driven.BlobStore

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer creates a server. blobs may be nil, in which case
// /cache is not routed; remote backends serve their own objects.
func NewServer(syncService driving.SyncService, assets driving.AssetService, blobs driven.BlobStore) *Server {
	return &Server{
		sync:    syncService,
		assets:  assets,
		blobs:   blobs,
		errChan: make(chan error, 1),
	}
}

// cacheRoutePrefix is where local blob stores are published.
const cacheRoutePrefix = "/cache/"

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /figma/cache-assets", s.handleCacheAssets)
	mux.HandleFunc("GET /figma/job-status", s.handleJobStatus)
	mux.HandleFunc("GET /figma/assets", s.handleAssets)
	mux.HandleFunc("GET /figma/templates", s.handleTemplates)
	mux.HandleFunc("GET /figma/pages", s.handlePages)
	mux.HandleFunc("GET /figma/file-version", s.handleFileVersion)
	mux.HandleFunc("GET /figma/asset-url", s.handleAssetURL)
	if s.blobs != nil {
		mux.HandleFunc("GET "+cacheRoutePrefix+"{key...}", s.handleCache)
	}
	return withLogging(mux)
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("HTTP API listening on %s", listener.Addr())
	return nil
}

// Run serves on addr until ctx is cancelled or the server fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.Start(addr); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-s.errChan:
		_ = s.Stop()
		return err
	}
}

// Stop shuts down the server, waiting for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Debug("%s %s %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Millisecond))
	})
}
