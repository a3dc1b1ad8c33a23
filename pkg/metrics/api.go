package metrics

import "time"

// APIMetrics provides observability for the HTTP command surface.
//
// This interface is optional - pass nil to disable metrics collection
// with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewAPIMetrics()
//	server := api.NewServer(cfg, coord, m)
//
//	// Without metrics (pass nil for zero overhead)
//	server := api.NewServer(cfg, coord, nil)
type APIMetrics interface {
	// RecordRequest records a completed HTTP request.
	//
	// Parameters:
	//   - method: HTTP method (e.g., "GET", "POST")
	//   - path: Route pattern (e.g., "/command/", "/connect/")
	//   - status: HTTP status code sent
	//   - duration: Time taken to serve the request
	RecordRequest(method string, path string, status int, duration time.Duration)

	// RecordRequestStart increments the in-flight request gauge.
	RecordRequestStart()

	// RecordRequestEnd decrements the in-flight request gauge.
	RecordRequestEnd()

	// RecordCommand records a completed namespace command by its
	// operation tag ("create", "readdir", ...) and outcome.
	RecordCommand(command string, duration time.Duration, success bool)

	// RecordBytesTransferred counts payload bytes moved through the
	// command surface; direction is "upload" or "download".
	RecordBytesTransferred(direction string, bytes uint64)
}
