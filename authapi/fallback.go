package authapi

import (
	"context"
	"log/slog"
)

// FallbackHook observes every switch from the primary to the fallback stage.
type FallbackHook func(op string, primaryErr error)

// FallbackOption configures a FallbackClient.
type FallbackOption func(*FallbackClient)

// WithFallbackLogger sets the logger used to record primary failures.
func WithFallbackLogger(l *slog.Logger) FallbackOption {
	return func(f *FallbackClient) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithFallbackHook registers a hook called before every fallback attempt.
func WithFallbackHook(h FallbackHook) FallbackOption {
	return func(f *FallbackClient) { f.hook = h }
}

// FallbackClient is a two-stage client: every request goes to the primary
// first and, if it fails for any reason, to the fallback. A nil fallback
// disables the second stage; a nil primary sends everything to the
// fallback.
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *slog.Logger
	hook     FallbackHook
}

// NewFallbackClient combines two clients. At least one must be non-nil.
func NewFallbackClient(primary, fallback Client, opts ...FallbackOption) *FallbackClient {
	if primary == nil && fallback == nil {
		panic("authapi: fallback client needs at least one stage")
	}
	f := &FallbackClient{primary: primary, fallback: fallback, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FallbackClient) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	return attempt(ctx, f, "login", func(c Client) (AuthResponse, error) { return c.Login(ctx, req) })
}

func (f *FallbackClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	return attempt(ctx, f, "register", func(c Client) (AuthResponse, error) { return c.Register(ctx, req) })
}

func (f *FallbackClient) Me(ctx context.Context, token string) (User, error) {
	return attempt(ctx, f, "me", func(c Client) (User, error) { return c.Me(ctx, token) })
}

func (f *FallbackClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (ResetPasswordResponse, error) {
	return attempt(ctx, f, "reset_password", func(c Client) (ResetPasswordResponse, error) { return c.ResetPassword(ctx, req) })
}

// Revoke forwards to whichever stages can unlink tokens locally. It never
// makes a network call.
func (f *FallbackClient) Revoke(ctx context.Context, token string) {
	for _, c := range []Client{f.primary, f.fallback} {
		if r, ok := c.(Revoker); ok {
			r.Revoke(ctx, token)
		}
	}
}

func attempt[T any](ctx context.Context, f *FallbackClient, op string, call func(Client) (T, error)) (T, error) {
	if f.primary == nil {
		return call(f.fallback)
	}
	out, err := call(f.primary)
	if err == nil || f.fallback == nil {
		return out, err
	}

	f.logger.DebugContext(ctx, "primary auth transport failed, using fallback", "op", op, "error", err)
	if f.hook != nil {
		f.hook(op, err)
	}
	return call(f.fallback)
}
