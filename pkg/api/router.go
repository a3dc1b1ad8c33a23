package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/pkg/coordinator"
	"github.com/driftfs/driftfs/pkg/metadata"
	"github.com/driftfs/driftfs/pkg/metrics"
)

// NewRouter wires the command surface, node registration and the health
// endpoints onto a chi router.
//
// There is deliberately no global timeout middleware: read and write
// commands stream file bodies of unbounded size.
func NewRouter(coord *coordinator.Coordinator, store metadata.Store, m metrics.APIMetrics) http.Handler {
	r := chi.NewRouter()

	// RequestID and RealIP run first; the logger reads both.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(metricsMiddleware(m))
	}

	command := newCommandHandler(coord, m)
	connect := &connectHandler{coordinator: coord}
	health := newHealthHandler(coord, store)

	// Both legacy endpoints are addressed with the trailing slash; chi
	// treats that as a distinct pattern, so it is spelled out here.
	r.Get("/command/", command.Handle)
	r.Post("/command/", command.Handle)
	r.Get("/connect/", connect.Handle)
	r.Post("/connect/", connect.Handle)

	// Probe endpoints, also used by `driftfs status`.
	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Liveness)
		r.Get("/ready", health.Readiness)
		r.Get("/nodes", health.Nodes)
	})

	// A bare GET / lands on the health summary.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger writes a debug line when a request arrives and an info
// line with status, size and duration when it completes. Health probes
// fire every few seconds, so their completion lines stay at debug.
//
// It also seeds the request log context, so every *Ctx log line further
// down carries the request ID and client IP without repeating them.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		clientIP := r.RemoteAddr
		if host, _, err := net.SplitHostPort(clientIP); err == nil {
			clientIP = host
		}
		lc := logger.NewLogContext(clientIP)
		lc.RequestID = requestID
		r = r.WithContext(logger.WithContext(r.Context(), lc))

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// ww captures the status and byte count for the completion line.
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logFn := logger.Info
		if isHealthPath(r.URL.Path) {
			logFn = logger.Debug
		}
		logFn("API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}

func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// metricsMiddleware records one observation per request plus an
// in-flight gauge around the handler.
func metricsMiddleware(m metrics.APIMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.RecordRequestStart()
			defer m.RecordRequestEnd()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			m.RecordRequest(r.Method, r.URL.Path, ww.Status(), time.Since(start))
		})
	}
}
