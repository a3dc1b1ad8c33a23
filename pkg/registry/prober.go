package registry

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/driftfs/driftfs/internal/logger"
)

// DefaultHealthPort is where nodes serve their health endpoints.
const DefaultHealthPort = 80

// DefaultRequestTimeout bounds one health probe.
const DefaultRequestTimeout = 2 * time.Second

// Prober answers liveness and capacity questions about one node.
// The HTTP implementation talks to the node's health endpoints; tests
// substitute fakes.
type Prober interface {
	// Ping reports whether the node answers its health endpoint.
	Ping(ctx context.Context, host string) bool

	// SpaceAvailable returns the node's advertised free bytes, zero when
	// the node is unreachable or answers garbage.
	SpaceAvailable(ctx context.Context, host string) uint64
}

// ProberConfig controls the HTTP prober.
type ProberConfig struct {
	// Port is the node health port, DefaultHealthPort when zero.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// RequestTimeout bounds each probe request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// ApplyDefaults fills zero values with defaults.
func (c *ProberConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultHealthPort
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// HTTPProber probes nodes over their plain HTTP health endpoints:
// GET /ping for liveness and GET /info/space for capacity, the latter
// answering a decimal byte count.
type HTTPProber struct {
	client *http.Client
	port   int
}

// NewHTTPProber builds a prober, filling config defaults.
func NewHTTPProber(cfg ProberConfig) *HTTPProber {
	cfg.ApplyDefaults()
	return &HTTPProber{
		client: &http.Client{Timeout: cfg.RequestTimeout},
		port:   cfg.Port,
	}
}

// Ping reports whether the node answers GET /ping with 200.
func (p *HTTPProber) Ping(ctx context.Context, host string) bool {
	resp, err := p.get(ctx, host, "/ping")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// SpaceAvailable parses the node's free-bytes report.
func (p *HTTPProber) SpaceAvailable(ctx context.Context, host string) uint64 {
	resp, err := p.get(ctx, host, "/info/space")
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0
	}
	space, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		logger.Warn("unparseable space report from node", logger.Node(host), logger.Err(err))
		return 0
	}
	return space
}

func (p *HTTPProber) get(ctx context.Context, host, path string) (*http.Response, error) {
	url := fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(p.port)), path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return p.client.Do(req)
}
