// Package api serves anchorleak operations over HTTP and websocket.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/anchorleak/core/plugins"
	"github.com/FocuswithJustin/anchorleak/internal/config"
	"github.com/FocuswithJustin/anchorleak/internal/logging"
	"github.com/FocuswithJustin/anchorleak/internal/metrics"
)

// Version is reported by /health. Release builds set it with -ldflags.
var Version = "dev"

// shutdownTimeout bounds graceful shutdown in ListenAndServe.
const shutdownTimeout = 5 * time.Second

// Server hosts a registry over HTTP.
type Server struct {
	cfg           config.ServerConfig
	defaultCorpus string
	registry      *plugins.Registry
	metrics       *metrics.Metrics
	upgrader      websocket.Upgrader
	started       time.Time

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer creates a server for registry. m may be nil, in which case
// runs are not measured and /metrics is not served.
func NewServer(cfg *config.Config, registry *plugins.Registry, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:           cfg.Server,
		defaultCorpus: cfg.Extract.DefaultCorpus,
		registry:      registry,
		metrics:       m,
		started:       time.Now(),
		conns:         make(map[*websocket.Conn]struct{}),
	}
	if m != nil {
		s.registry = registry.WithObserver(m)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()
	handler = securityHeaders(handler)
	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	return logging.CombinedMiddleware(handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /operations", s.handleListOperations)
	mux.HandleFunc("GET /operations/{id}", s.handleDescribeOperation)
	mux.HandleFunc("POST /operations/{id}", s.handleRunOperation)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return mux
}

// ListenAndServe serves on the configured port until ctx is cancelled,
// then shuts down gracefully and closes open websocket sessions.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeConns)

	if len(s.cfg.AllowedOrigins) > 0 {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "restricted",
			"allowed_origins_count", len(s.cfg.AllowedOrigins))
	} else {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "permissive",
			"note", "allowing all origins (*)")
	}
	logging.ServerStartup("rest_api", addr,
		"operations", s.registry.Len(),
		"metrics", s.metrics != nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) trackConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrackConn(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
