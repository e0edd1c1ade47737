package authapi

import (
	"context"
	"time"

	"github.com/MalcoreHardcore698/authdemo/mockstore"
)

// Default simulated latencies of the mock backend.
const (
	DefaultMockLatency   = 500 * time.Millisecond
	DefaultMockMeLatency = 200 * time.Millisecond
)

// MockOptions configures NewMockClient. Zero latencies mean no delay.
type MockOptions struct {
	Latency   time.Duration
	MeLatency time.Duration
}

// MockClient answers auth requests from a mock store.
type MockClient struct {
	store *mockstore.Store
	opts  MockOptions
}

// NewMockClient returns a client over store.
func NewMockClient(store *mockstore.Store, opts MockOptions) *MockClient {
	return &MockClient{store: store, opts: opts}
}

func (m *MockClient) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	if err := sleep(ctx, m.opts.Latency); err != nil {
		return AuthResponse{}, err
	}
	user, err := m.store.AuthenticateUser(ctx, req)
	if err != nil {
		return AuthResponse{}, err
	}
	token, err := m.store.CreateToken(ctx, user.ID)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{User: user, Token: token}, nil
}

func (m *MockClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	if err := sleep(ctx, m.opts.Latency); err != nil {
		return AuthResponse{}, err
	}
	user, err := m.store.CreateUser(ctx, req)
	if err != nil {
		return AuthResponse{}, err
	}
	token, err := m.store.CreateToken(ctx, user.ID)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{User: user, Token: token}, nil
}

func (m *MockClient) Me(ctx context.Context, token string) (User, error) {
	if err := sleep(ctx, m.opts.MeLatency); err != nil {
		return User{}, err
	}
	if token == "" {
		return User{}, ErrNoToken
	}
	id, ok := m.store.GetUserIDByToken(ctx, token)
	if !ok {
		return User{}, ErrInvalidToken
	}
	user, ok := m.store.FindUserByID(ctx, id)
	if !ok {
		return User{}, mockstore.ErrUserNotFound
	}
	return user, nil
}

func (m *MockClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (ResetPasswordResponse, error) {
	if err := sleep(ctx, m.opts.Latency); err != nil {
		return ResetPasswordResponse{}, err
	}
	msg, err := m.store.ResetPassword(ctx, req.Email)
	if err != nil {
		return ResetPasswordResponse{}, err
	}
	return ResetPasswordResponse{Message: msg, Success: true}, nil
}

// Revoke unlinks token in the store.
func (m *MockClient) Revoke(ctx context.Context, token string) {
	m.store.RemoveTokenUserLink(ctx, token)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
