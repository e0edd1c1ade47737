package authdemo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/MalcoreHardcore698/authdemo/auth"
	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/internal/audit"
	"github.com/MalcoreHardcore698/authdemo/internal/rate"
	"github.com/MalcoreHardcore698/authdemo/jwt"
	"github.com/MalcoreHardcore698/authdemo/mockstore"
	"github.com/MalcoreHardcore698/authdemo/server"
	"github.com/MalcoreHardcore698/authdemo/storage"
)

// Engine owns one auth session and everything behind it. Methods are safe
// for concurrent use.
type Engine struct {
	config  Config
	logger  *slog.Logger
	metrics *Metrics

	redis     redis.UniversalClient
	ownsRedis bool

	backend    storage.Backend
	store      *mockstore.Store
	client     authapi.Client
	tokens     *storage.TokenStorage
	service    *auth.Service
	controller *auth.Controller

	audit       *audit.Dispatcher
	auditCloser io.Closer

	closeOnce sync.Once
	closed    atomic.Bool
}

// Config returns the validated configuration the engine was built with.
func (e *Engine) Config() Config { return e.config }

// Controller returns the session controller.
func (e *Engine) Controller() *auth.Controller { return e.controller }

// Store returns the mock user and token store.
func (e *Engine) Store() *mockstore.Store { return e.store }

// Client returns the two-stage auth client.
func (e *Engine) Client() authapi.Client { return e.client }

// Backend returns the key-value backend shared by the store and the token.
func (e *Engine) Backend() storage.Backend { return e.backend }

// Redis returns the Redis client, or nil when none is configured.
func (e *Engine) Redis() redis.UniversalClient { return e.redis }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// MetricsSnapshot returns a point-in-time copy of the session counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot { return e.metrics.Snapshot() }

// AuditDropped reports events dropped by a full audit buffer.
func (e *Engine) AuditDropped() uint64 { return e.audit.Dropped() }

// Mount starts the background session check.
func (e *Engine) Mount(ctx context.Context) { e.controller.Mount(ctx) }

// Ping checks Redis when one is configured.
func (e *Engine) Ping(ctx context.Context) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return pingRedis(ctx, e.redis)
}

// NewLoginForm returns a login form bound to the engine's controller.
func (e *Engine) NewLoginForm(n auth.Notifier) (*auth.LoginForm, error) {
	return auth.NewLoginForm(e.controller, n, e.logger)
}

// NewRegisterForm returns a registration form bound to the engine's
// controller.
func (e *Engine) NewRegisterForm(n auth.Notifier) (*auth.RegisterForm, error) {
	return auth.NewRegisterForm(e.controller, n, e.logger)
}

// NewForgotPasswordForm returns a forgot-password form bound to the
// engine's controller.
func (e *Engine) NewForgotPasswordForm(n auth.Notifier) (*auth.ForgotPasswordForm, error) {
	return auth.NewForgotPasswordForm(e.controller, n, e.logger)
}

// Observe implements auth.Observer.
func (e *Engine) Observe(ev auth.Event) {
	e.metrics.record(ev)
	if e.audit == nil {
		return
	}
	rec := AuditEvent{
		Op:        ev.Op,
		Outcome:   string(ev.Outcome),
		UserID:    ev.UserID,
		Duration:  ev.Duration,
	}
	if ev.Err != nil {
		rec.Error = auth.Message(ev.Err)
	}
	e.audit.Emit(context.Background(), rec)
}

func (e *Engine) onFallback(op string, err error) {
	e.metrics.Inc(MetricFallbackUsed)
	if e.audit == nil {
		return
	}
	e.audit.Emit(context.Background(), AuditEvent{
		Op:        op,
		Outcome:   "fallback",
		Stage:     "mock",
		Error:     err.Error(),
	})
}

// NewServer builds the demo backend over this engine's mock store. reg
// receives the server's HTTP metrics; nil gives the server a private
// registry. Without Redis the login throttle is off and logged-out tokens
// are remembered in memory.
func (e *Engine) NewServer(reg *prometheus.Registry) (*server.Server, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if err := e.config.ValidateServer(); err != nil {
		return nil, err
	}
	tokens, err := newTokenManager(e.config.Server.JWT)
	if err != nil {
		return nil, err
	}

	deps := server.Deps{
		Store:    e.store,
		Tokens:   tokens,
		Registry: reg,
		Logger:   e.logger,
	}
	if e.redis != nil {
		deps.Limiter = rate.New(e.redis, e.config.Server.Limits)
		deps.Denylist = server.NewRedisDenylist(e.redis, e.config.Storage.RedisPrefix)
	} else {
		e.logger.Warn("login throttle disabled: no redis configured")
		deps.Denylist = server.NewMemoryDenylist()
	}
	return server.New(e.config.Server.Config, deps)
}

func newTokenManager(cfg JWTConfig) (*jwt.Manager, error) {
	jc := jwt.Config{
		AccessTTL:     cfg.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.SigningMethod),
		Issuer:        cfg.Issuer,
		Audience:      cfg.Audience,
		Leeway:        cfg.Leeway,
		KeyID:         cfg.KeyID,
	}
	switch jc.SigningMethod {
	case jwt.MethodHS256:
		jc.PrivateKey = []byte(cfg.Secret)
	case jwt.MethodEd25519:
		var err error
		if jc.PrivateKey, err = os.ReadFile(cfg.PrivateKeyFile); err != nil {
			return nil, fmt.Errorf("%w: read jwt private key: %w", ErrInvalidConfig, err)
		}
		if cfg.PublicKeyFile != "" {
			if jc.PublicKey, err = os.ReadFile(cfg.PublicKeyFile); err != nil {
				return nil, fmt.Errorf("%w: read jwt public key: %w", ErrInvalidConfig, err)
			}
		}
	}
	return jwt.NewManager(jc)
}

// Close stops the session controller, flushes the audit trail and
// releases owned connections. It is idempotent.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if e.controller != nil {
			e.controller.Close()
		}
		e.release()
	})
}

func (e *Engine) release() {
	e.audit.Close()
	if e.auditCloser != nil {
		if err := e.auditCloser.Close(); err != nil {
			e.logger.Warn("failed to close audit file", "error", err)
		}
		e.auditCloser = nil
	}
	if e.ownsRedis && e.redis != nil {
		_ = e.redis.Close()
		e.ownsRedis = false
	}
}
