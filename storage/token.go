package storage

import (
	"context"
	"log/slog"
)

// TokenStorage persists the client's session token under KeyAuthToken.
// Backend failures are logged and reported as "no token".
type TokenStorage struct {
	backend Backend
	logger  *slog.Logger
}

// NewTokenStorage returns a token store over b. A nil logger selects
// slog.Default().
func NewTokenStorage(b Backend, logger *slog.Logger) *TokenStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStorage{backend: b, logger: logger}
}

// Get returns the stored token, or "" when none is stored or the read fails.
func (s *TokenStorage) Get(ctx context.Context) string {
	var token string
	if _, err := GetJSON(ctx, s.backend, KeyAuthToken, &token); err != nil {
		s.logger.Warn("failed to get token from storage", "error", err)
		return ""
	}
	return token
}

// Set stores token.
func (s *TokenStorage) Set(ctx context.Context, token string) {
	if err := SetJSON(ctx, s.backend, KeyAuthToken, token); err != nil {
		s.logger.Warn("failed to save token to storage", "error", err)
	}
}

// Has reports whether a non-empty token is stored.
func (s *TokenStorage) Has(ctx context.Context) bool {
	return s.Get(ctx) != ""
}

// Clear removes the stored token.
func (s *TokenStorage) Clear(ctx context.Context) {
	if err := s.backend.Delete(ctx, KeyAuthToken); err != nil {
		s.logger.Warn("failed to remove token from storage", "error", err)
	}
}
