// Package prometheus implements the metrics interfaces on the process
// Prometheus registry. Constructors return nil when metrics are disabled
// so callers can pass the result straight through.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/driftfs/driftfs/pkg/metrics"
)

// apiMetrics is the Prometheus implementation of metrics.APIMetrics.
type apiMetrics struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	inflight         prometheus.Gauge
	commands         *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	bytesTransferred *prometheus.CounterVec
}

// NewAPIMetrics creates a new Prometheus-backed APIMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewAPIMetrics() metrics.APIMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &apiMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftfs_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "driftfs_http_request_duration_milliseconds",
				Help: "HTTP request latency in milliseconds",
				Buckets: []float64{
					1,     // 1ms - metadata-only commands
					5,     // 5ms
					10,    // 10ms
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms - small transfers
					1000,  // 1s
					5000,  // 5s
					30000, // 30s - large transfers
				},
			},
			[]string{"method", "path"},
		),
		inflight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "driftfs_http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
		commands: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftfs_commands_total",
				Help: "Total number of namespace commands by tag and status",
			},
			[]string{"command", "status"}, // status: "ok", "error"
		),
		commandDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "driftfs_command_duration_milliseconds",
				Help: "Namespace command latency in milliseconds",
				Buckets: []float64{
					1,     // 1ms - metadata-only commands
					10,    // 10ms
					50,    // 50ms
					250,   // 250ms - single fan-out
					1000,  // 1s
					5000,  // 5s
					30000, // 30s - large transfers
				},
			},
			[]string{"command"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftfs_payload_bytes_total",
				Help: "Payload bytes moved through the command surface by direction",
			},
			[]string{"direction"}, // "upload", "download"
		),
	}
}

func (m *apiMetrics) RecordRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds() * 1000)
}

func (m *apiMetrics) RecordRequestStart() {
	if m == nil {
		return
	}

	m.inflight.Inc()
}

func (m *apiMetrics) RecordRequestEnd() {
	if m == nil {
		return
	}

	m.inflight.Dec()
}

func (m *apiMetrics) RecordCommand(command string, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	status := "ok"
	if !success {
		status = "error"
	}
	m.commands.WithLabelValues(command, status).Inc()
	m.commandDuration.WithLabelValues(command).Observe(duration.Seconds() * 1000)
}

func (m *apiMetrics) RecordBytesTransferred(direction string, bytes uint64) {
	if m == nil {
		return
	}

	m.bytesTransferred.WithLabelValues(direction).Add(float64(bytes))
}
