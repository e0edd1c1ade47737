package authdemo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/MalcoreHardcore698/authdemo/auth"
	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/internal/audit"
	"github.com/MalcoreHardcore698/authdemo/mockstore"
	"github.com/MalcoreHardcore698/authdemo/password"
	"github.com/MalcoreHardcore698/authdemo/storage"
)

// Builder assembles an Engine. Each Builder builds once.
type Builder struct {
	config  Config
	redis   redis.UniversalClient
	backend storage.Backend
	primary authapi.Client

	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder holding DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis supplies the client used by the redis storage driver and the
// demo server. The Engine does not close it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithBackend overrides the configured storage driver.
func (b *Builder) WithBackend(backend storage.Backend) *Builder {
	b.backend = backend
	return b
}

// WithPrimary replaces the HTTP client as the primary transport stage.
func (b *Builder) WithPrimary(client authapi.Client) *Builder {
	b.primary = client
	return b
}

// WithAuditSink overrides Config.Audit.Path. It has no effect unless
// auditing is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Engine. Nothing touches
// the network until the Engine is used.
func (b *Builder) Build() (_ *Engine, err error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:  cfg,
		logger:  b.logger,
		metrics: NewMetrics(cfg.Metrics),
		redis:   b.redis,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	defer func() {
		if err != nil {
			e.release()
		}
	}()

	if e.redis == nil && cfg.Storage.RedisAddr != "" {
		e.redis = redis.NewClient(&redis.Options{Addr: cfg.Storage.RedisAddr})
		e.ownsRedis = true
	}

	e.backend = b.backend
	if e.backend == nil {
		if e.backend, err = b.openBackend(cfg.Storage, e.redis); err != nil {
			return nil, err
		}
	}

	verifier, err := newVerifier(cfg.Password)
	if err != nil {
		return nil, err
	}
	storeOpts := []mockstore.Option{mockstore.WithVerifier(verifier), mockstore.WithLogger(e.logger)}
	if !cfg.Mock.Seed {
		storeOpts = append(storeOpts, mockstore.WithSeed())
	}
	e.store = mockstore.New(e.backend, storeOpts...)

	if e.client, err = b.newClient(cfg, e); err != nil {
		return nil, err
	}

	if cfg.Audit.Enabled {
		sink := b.auditSink
		if sink == nil {
			w, closer, err := openAuditWriter(cfg.Audit.Path)
			if err != nil {
				return nil, err
			}
			e.auditCloser = closer
			sink = audit.NewJSONWriterSink(w)
		}
		e.audit = audit.NewDispatcher(cfg.Audit.Config, sink)
	}

	e.tokens = storage.NewTokenStorage(e.backend, e.logger)
	e.service = auth.NewService(e.client, e.tokens)
	e.controller = auth.NewController(e.service, auth.WithLogger(e.logger), auth.WithObserver(e))
	return e, nil
}

func (b *Builder) openBackend(cfg StorageConfig, rdb redis.UniversalClient) (storage.Backend, error) {
	switch cfg.Driver {
	case StorageFile:
		return storage.NewFileBackend(cfg.Dir)
	case StorageRedis:
		if rdb == nil {
			return nil, ErrRedisRequired
		}
		return storage.NewRedisBackend(rdb, cfg.RedisPrefix), nil
	default:
		return storage.NewMemoryBackend(), nil
	}
}

func newVerifier(cfg PasswordConfig) (mockstore.CredentialVerifier, error) {
	if cfg.Verifier == VerifierArgon2 {
		return password.NewArgon2(cfg.Argon2)
	}
	return password.Plaintext{}, nil
}

// newClient returns the mock client alone, the primary alone, or both
// behind a FallbackClient.
func (b *Builder) newClient(cfg Config, e *Engine) (authapi.Client, error) {
	mock := authapi.NewMockClient(e.store, authapi.MockOptions{
		Latency:   cfg.Mock.Latency,
		MeLatency: cfg.Mock.MeLatency,
	})

	primary := b.primary
	if primary == nil && cfg.Transport.BaseURL != "" {
		hc, err := authapi.NewHTTPClient(authapi.HTTPOptions{
			BaseURL:    cfg.Transport.BaseURL,
			Timeout:    cfg.Transport.Timeout,
			MaxRetries: cfg.Transport.MaxRetries,
			Backoff:    cfg.Transport.Backoff,
		})
		if err != nil {
			return nil, err
		}
		primary = hc
	}

	switch {
	case primary == nil:
		return mock, nil
	case !cfg.Transport.Fallback:
		return primary, nil
	}
	return authapi.NewFallbackClient(primary, mock,
		authapi.WithFallbackLogger(e.logger),
		authapi.WithFallbackHook(e.onFallback),
	), nil
}

func openAuditWriter(path string) (io.Writer, io.Closer, error) {
	if path == "" || path == "-" {
		return os.Stderr, nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, oops.Code("AUDIT_OPEN_FAILED").With("path", path).Wrap(err)
	}
	return f, f, nil
}

// pingRedis checks the engine's Redis client, if any.
func pingRedis(ctx context.Context, rdb redis.UniversalClient) error {
	if rdb == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
