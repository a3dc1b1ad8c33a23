package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driftfs/driftfs/internal/logger"
)

// DefaultPort is where the metrics endpoint listens.
const DefaultPort = 9090

// DefaultPath is the scrape path.
const DefaultPath = "/metrics"

// Config controls the metrics endpoint.
type Config struct {
	// Enabled turns the registry and the scrape endpoint on.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port for the scrape endpoint, DefaultPort when zero.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// Path for the scrape endpoint, DefaultPath when empty.
	Path string `mapstructure:"path" yaml:"path"`
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
}

// Server exposes the process registry over HTTP for scraping. Construct
// it only after InitRegistry.
type Server struct {
	srv *http.Server
}

// NewServer builds the scrape endpoint from config.
func NewServer(cfg Config) *Server {
	cfg.ApplyDefaults()

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves until Stop is called. It blocks.
func (s *Server) Start() error {
	logger.Info("metrics endpoint listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}

// Stop shuts the endpoint down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
