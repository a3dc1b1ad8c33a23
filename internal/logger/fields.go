package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so the name server's
// logs stay queryable in aggregation.
const (
	// Tracing
	KeyTraceID   = "trace_id"   // OpenTelemetry trace ID
	KeyRequestID = "request_id" // HTTP request ID

	// Command surface
	KeyCommand = "command" // command tag: create, read, makedir, ...
	KeyStatus  = "status"  // HTTP status code

	// Namespace
	KeyPath     = "path"     // directory path
	KeyFilename = "filename" // file or directory name
	KeyNewPath  = "new_path" // destination path for copy/move
	KeySize     = "size"     // file size in bytes

	// Storage nodes
	KeyNode    = "node"    // storage node host
	KeyServers = "servers" // replica host list
	KeyOp      = "op"      // storage node client operation

	// Client identification
	KeyClientIP = "client_ip"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyStore      = "store" // metadata store backend: memory, badger, postgres
)

// Field constructors for type safety.

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// Command returns a slog.Attr for the command tag
func Command(tag string) slog.Attr {
	return slog.String(KeyCommand, tag)
}

// Path returns a slog.Attr for a directory path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Filename returns a slog.Attr for a file or directory name
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// NewPath returns a slog.Attr for the destination path of copy/move
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// Size returns a slog.Attr for a file size in bytes
func Size(s int64) slog.Attr {
	return slog.Int64(KeySize, s)
}

// Node returns a slog.Attr for a storage node host
func Node(host string) slog.Attr {
	return slog.String(KeyNode, host)
}

// Servers returns a slog.Attr for a replica host list
func Servers(hosts []string) slog.Attr {
	return slog.Any(KeyServers, hosts)
}

// ClientIP returns a slog.Attr for the client address
func ClientIP(ip string) slog.Attr {
	return slog.String(KeyClientIP, ip)
}

// DurationMs returns a slog.Attr for operation duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error message
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Store returns a slog.Attr for the metadata store backend name
func Store(name string) slog.Attr {
	return slog.String(KeyStore, name)
}
