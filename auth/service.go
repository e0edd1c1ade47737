package auth

import (
	"context"

	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/storage"
)

// Service pairs an auth client with the persisted session token.
type Service struct {
	client authapi.Client
	tokens *storage.TokenStorage
}

// NewService returns a service over client and tokens.
func NewService(client authapi.Client, tokens *storage.TokenStorage) *Service {
	return &Service{client: client, tokens: tokens}
}

// Login authenticates. The returned token is not persisted; see Persist.
func (s *Service) Login(ctx context.Context, req authapi.LoginRequest) (authapi.AuthResponse, error) {
	return s.client.Login(ctx, req)
}

// Register creates an account. The returned token is not persisted.
func (s *Service) Register(ctx context.Context, req authapi.RegisterRequest) (authapi.AuthResponse, error) {
	return s.client.Register(ctx, req)
}

// Me resolves the user bound to the persisted token.
func (s *Service) Me(ctx context.Context) (authapi.User, error) {
	token := s.tokens.Get(ctx)
	if token == "" {
		return authapi.User{}, authapi.ErrNoToken
	}
	return s.client.Me(ctx, token)
}

func (s *Service) ResetPassword(ctx context.Context, req authapi.ResetPasswordRequest) (authapi.ResetPasswordResponse, error) {
	return s.client.ResetPassword(ctx, req)
}

// Persist stores token as the session token.
func (s *Service) Persist(ctx context.Context, token string) {
	s.tokens.Set(ctx, token)
}

// Discard unlinks a token that was issued but never persisted.
func (s *Service) Discard(ctx context.Context, token string) {
	s.revoke(ctx, token)
}

// Logout clears the persisted token and unlinks it. No network call is made.
func (s *Service) Logout(ctx context.Context) {
	token := s.tokens.Get(ctx)
	s.tokens.Clear(ctx)
	if token != "" {
		s.revoke(ctx, token)
	}
}

// HasToken reports whether a session token is persisted.
func (s *Service) HasToken(ctx context.Context) bool {
	return s.tokens.Has(ctx)
}

// Token returns the persisted session token or "".
func (s *Service) Token(ctx context.Context) string {
	return s.tokens.Get(ctx)
}

func (s *Service) revoke(ctx context.Context, token string) {
	if r, ok := s.client.(authapi.Revoker); ok {
		r.Revoke(ctx, token)
	}
}
