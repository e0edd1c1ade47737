package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/samber/oops"
)

// Well-known keys of the persisted layout.
const (
	KeyAuthToken = "auth_token"
	KeyUsers     = "mock_users"
	KeyTokens    = "mock_tokens"
)

// Backend stores blobs by key.
type Backend interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value under key into dst. It reports false, with a nil
// error, when the key is absent.
func GetJSON(ctx context.Context, b Backend, key string, dst any) (bool, error) {
	raw, err := b.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, oops.Code("STORAGE_DECODE_FAILED").With("key", key).Wrap(err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, b Backend, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return oops.Code("STORAGE_ENCODE_FAILED").With("key", key).Wrap(err)
	}
	return b.Set(ctx, key, raw)
}
