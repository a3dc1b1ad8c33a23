// Package payload carries file contents between the HTTP layer, the
// coordinator, and storage node clients.
//
// Replication sends one payload to several nodes in turn, and fallback
// reads may try several nodes before one delivers, so both directions
// need streams that can be reset to the beginning. The two interfaces
// here capture exactly that capability; Spool is the standard
// implementation for payloads that do not fit in memory.
package payload

import "io"

// Source supplies payload bytes for an upload. Rewind seeks back to the
// start so the same bytes can be sent to the next replica.
type Source interface {
	io.Reader

	// Rewind resets the stream to the beginning of the payload.
	Rewind() error
}

// Sink receives payload bytes from a download. Rewind seeks back to the
// start; a consumer holding the concrete value, typically a Spool, reads
// the downloaded bytes back after rewinding.
type Sink interface {
	io.Writer

	// Rewind resets the stream to the beginning of the payload.
	Rewind() error
}
