package storagenode

import "fmt"

// TransportError reports a failed interaction with one storage node. The
// coordinator treats every node failure uniformly, so all errors leaving
// this package carry the host and operation that failed.
type TransportError struct {
	Host string
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("storage node %s: %s: %v", e.Host, e.Op, e.Err)
}

// Unwrap exposes the underlying protocol error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if the error came from a storage node
// interaction.
func IsTransportError(err error) bool {
	_, ok := err.(*TransportError)
	return ok
}
