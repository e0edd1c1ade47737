package storage

import "errors"

var (
	// ErrNotFound is returned by Backend.Get for a missing key.
	ErrNotFound = errors.New("storage: key not found")
	// ErrInvalidKey is returned for empty keys or keys a backend cannot map.
	ErrInvalidKey = errors.New("storage: invalid key")
)
