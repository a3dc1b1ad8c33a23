package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for command and storage operations.
// Generic file keys use the "fs." prefix, storage node keys "node.",
// metadata store keys "store.".
const (
	// Client attributes
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// Command attributes
	AttrCommand = "command.name"
	AttrArity   = "command.arity"

	// File attributes
	AttrPath         = "fs.path"
	AttrFilename     = "fs.filename"
	AttrSize         = "fs.size"
	AttrBytesRead    = "fs.bytes_read"
	AttrBytesWritten = "fs.bytes_written"

	// Storage node attributes
	AttrNodeHost  = "node.host"
	AttrNodeCount = "node.count"
	AttrReplicas  = "node.replicas"

	// Metadata store attributes
	AttrStoreType = "store.type"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Command returns an attribute for the command tag being served
func Command(name string) attribute.KeyValue {
	return attribute.String(AttrCommand, name)
}

// Arity returns an attribute for the number of command arguments
func Arity(n int) attribute.KeyValue {
	return attribute.Int(AttrArity, n)
}

// Path returns an attribute for a directory path
func Path(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// Filename returns an attribute for a file name
func Filename(name string) attribute.KeyValue {
	return attribute.String(AttrFilename, name)
}

// Size returns an attribute for a file size in bytes
func Size(size int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, size)
}

// BytesRead returns an attribute for bytes served to a client
func BytesRead(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytesRead, n)
}

// BytesWritten returns an attribute for bytes taken in from a client
func BytesWritten(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytesWritten, n)
}

// NodeHost returns an attribute for a storage node host
func NodeHost(host string) attribute.KeyValue {
	return attribute.String(AttrNodeHost, host)
}

// NodeCount returns an attribute for a count of storage nodes
func NodeCount(n int) attribute.KeyValue {
	return attribute.Int(AttrNodeCount, n)
}

// Replicas returns an attribute for the size of a replica set
func Replicas(n int) attribute.KeyValue {
	return attribute.Int(AttrReplicas, n)
}

// StoreType returns an attribute for the metadata store backend
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// StartCommandSpan starts a span for one dispatched command.
// The span covers the whole command including any payload streaming.
func StartCommandSpan(ctx context.Context, command string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Command(command),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "command."+command, trace.WithAttributes(allAttrs...))
}

// StartNodeSpan starts a span for one storage node visit: a dial, the
// operation and the session close.
func StartNodeSpan(ctx context.Context, operation, host string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		NodeHost(host),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "node."+operation, trace.WithAttributes(allAttrs...))
}

// StartMetadataSpan starts a span for a metadata store operation.
func StartMetadataSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "metadata."+operation, trace.WithAttributes(attrs...))
}
