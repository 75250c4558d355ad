package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// maxBodyBytes bounds a notification body.
const maxBodyBytes = 4 << 20

// defaultHistoryLimit is the number of runs /v1/status returns by default.
const defaultHistoryLimit = 20

// Server serves the notification and admin endpoints.
type Server struct {
	queue   driving.NotificationQueue
	engine  driving.SyncEngine
	handler http.Handler
	server  *http.Server
}

// NewServer creates a server listening on addr once Run is called.
func NewServer(queue driving.NotificationQueue, engine driving.SyncEngine, addr string) (*Server, error) {
	if queue == nil {
		return nil, errors.New("httpapi: notification queue is required")
	}
	if engine == nil {
		return nil, errors.New("httpapi: sync engine is required")
	}

	s := &Server{queue: queue, engine: engine}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/notifications", s.handleNotification)
	mux.HandleFunc("POST /v1/reindex", s.handleReindex)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/health", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handler = withLogging(withRecovery(mux))
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	logger.Info("HTTP intake listening on %s", listener.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP intake: %w", err)
		}
		logger.Info("HTTP intake stopped")
		return nil
	}
}
