package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Storage implementations.
var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey indicates the key is empty or contains path traversal.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrAccessDenied indicates the backend rejected the credentials.
	ErrAccessDenied = errors.New("access denied")
)

// StorageError wraps a storage failure with the operation and key involved.
type StorageError struct {
	Op  string // Operation that failed (Store, Retrieve, Delete, ...)
	Key string // Object key involved
	Err error  // Underlying error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err indicates a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
