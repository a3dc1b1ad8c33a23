package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/pkg/coordinator"
	"github.com/driftfs/driftfs/pkg/metadata"
	"github.com/driftfs/driftfs/pkg/metrics"
)

// shutdownGrace bounds how long in-flight requests may run once the
// server's context is cancelled.
const shutdownGrace = 5 * time.Second

// Server is the HTTP front of the name server.
//
// Endpoints:
//   - GET/POST /command/: the legacy command surface
//   - GET/POST /connect/: storage node registration
//   - GET /health, /health/ready, /health/nodes: probes
//
// Cancelling the context passed to Start drains connections before
// returning.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer builds the server in a stopped state; call Start to begin
// serving. Config defaults are filled in here as well, so a Server built
// straight from a zero Config (as tests do) still listens properly. m may
// be nil to skip metrics collection.
func NewServer(config Config, coord *coordinator.Coordinator, store metadata.Store, m metrics.APIMetrics) *Server {
	config.applyDefaults()

	return &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", config.Port),
			Handler: NewRouter(coord, store, m),
			// ReadTimeout is usually zero so uploads are never cut off; the
			// header timeout still fences off stalled connections.
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
		},
		config: config,
	}
}

// Start serves HTTP until the context is cancelled or the listener
// fails. Cancellation drains in-flight requests for up to shutdownGrace;
// Start returns nil once the drain completes.
func (s *Server) Start(ctx context.Context) error {
	failed := make(chan error, 1)
	go func() {
		base := fmt.Sprintf("http://localhost:%d", s.config.Port)
		logger.Info("API server listening", "port", s.config.Port)
		logger.Debug("API endpoints available",
			"command", base+"/command/",
			"connect", base+"/connect/",
			"health", base+"/health",
		)

		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("API server shutdown signal received")
	// The run context is already cancelled; drain on a fresh one so
	// in-flight requests still get their grace period.
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return s.Stop(drainCtx)
}

// Stop drains connections and closes the listener. It is safe to call
// more than once and concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")
		if err = s.server.Shutdown(ctx); err != nil {
			logger.Error("API server shutdown error", "error", err)
			err = fmt.Errorf("API server shutdown error: %w", err)
			return
		}
		logger.Info("API server stopped gracefully")
	})
	return err
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	return s.config.Port
}
