package localstore

import (
	apperrors "github.com/jrsteele09/go-session-guard/internal/errors"
)

// ErrNotFound is returned by a Medium when a key holds no value.
var ErrNotFound = apperrors.ErrNotFound

// Medium is the durable key-value persistence underneath a Store. Implementations
// must be safe to call when the key is absent: Get returns ErrNotFound and Delete
// returns nil.
type Medium interface {
	// Get returns the value stored under key
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(key, value string) error

	// Delete removes key
	Delete(key string) error
}
