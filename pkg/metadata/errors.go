package metadata

import (
	"errors"
	"fmt"
)

// ErrorCode classifies store failures so callers can branch on what went
// wrong without parsing messages.
type ErrorCode int

const (
	// ErrNotFound marks lookups whose target node is absent.
	ErrNotFound ErrorCode = iota + 1

	// ErrAlreadyExists marks inserts that collide with a sibling of the
	// same name.
	ErrAlreadyExists

	// ErrInvalidPath marks paths that cannot name a node at all, such as
	// an empty name or one containing a slash.
	ErrInvalidPath

	// ErrIOError marks failures of the backing store itself.
	ErrIOError
)

var errorCodeNames = map[ErrorCode]string{
	ErrNotFound:      "NotFound",
	ErrAlreadyExists: "AlreadyExists",
	ErrInvalidPath:   "InvalidPath",
	ErrIOError:       "IOError",
}

func (e ErrorCode) String() string {
	if name, ok := errorCodeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", e)
}

// StoreError is the error type every metadata store returns. Code drives
// programmatic handling, Message and Path are for people reading logs.
type StoreError struct {
	Code    ErrorCode
	Message string
	Path    string
	cause   error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	return msg
}

// Unwrap exposes the underlying store failure, if any, so errors.Is can
// reach driver errors through a StoreError.
func (e *StoreError) Unwrap() error {
	return e.cause
}

// NewNoSuchDirectoryError reports a directory path that failed to resolve.
// The path is always the full original path of the failed operation, not
// the segment that missed.
func NewNoSuchDirectoryError(path string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: "no such directory", Path: path}
}

// NewNoSuchFileError reports a missing file entry.
func NewNoSuchFileError(path string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: "no such file", Path: path}
}

// NewInvalidPathError reports a path that cannot name a new node.
func NewInvalidPathError(path, message string) *StoreError {
	return &StoreError{Code: ErrInvalidPath, Message: message, Path: path}
}

// NewAlreadyExistsError reports a duplicate (parent, name) insertion.
func NewAlreadyExistsError(name string) *StoreError {
	return &StoreError{Code: ErrAlreadyExists, Message: "already exists", Path: name}
}

// NewNotFoundError reports a missing store record by kind, for failures
// that have an ID but no path to point at.
func NewNotFoundError(what string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: what + " not found"}
}

// NewIOError wraps a backing store failure under op, keeping the original
// error reachable through Unwrap.
func NewIOError(op string, err error) *StoreError {
	return &StoreError{Code: ErrIOError, Message: op, cause: err}
}

// codeOf pulls the ErrorCode out of err, looking through wrapping. The
// second return is false when no StoreError is in the chain.
func codeOf(err error) (ErrorCode, bool) {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code, true
	}
	return 0, false
}

// IsNotFoundError reports whether err says the target node is absent.
func IsNotFoundError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrNotFound
}

// IsAlreadyExistsError reports whether err is a duplicate (parent, name)
// insertion.
func IsAlreadyExistsError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrAlreadyExists
}

// IsInvalidPathError reports whether err rejects the path itself.
func IsInvalidPathError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrInvalidPath
}
