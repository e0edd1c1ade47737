package authdemo

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MalcoreHardcore698/authdemo/auth"
	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/storage"
)

type toasts struct {
	mu      sync.Mutex
	success []string
	errors  []string
}

func (n *toasts) Success(msg string) {
	n.mu.Lock()
	n.success = append(n.success, msg)
	n.mu.Unlock()
}

func (n *toasts) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

type downClient struct{}

var errDown = errors.New("connection refused")

func (downClient) Login(context.Context, authapi.LoginRequest) (authapi.AuthResponse, error) {
	return authapi.AuthResponse{}, errDown
}

func (downClient) Register(context.Context, authapi.RegisterRequest) (authapi.AuthResponse, error) {
	return authapi.AuthResponse{}, errDown
}

func (downClient) Me(context.Context, string) (authapi.User, error) { return authapi.User{}, errDown }

func (downClient) ResetPassword(context.Context, authapi.ResetPasswordRequest) (authapi.ResetPasswordResponse, error) {
	return authapi.ResetPasswordResponse{}, errDown
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Transport.BaseURL = ""
	cfg.Mock.Latency = 0
	cfg.Mock.MeLatency = 0
	return cfg
}

func build(t *testing.T, b *Builder) *Engine {
	t.Helper()
	e, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestEngineLoginThroughForm(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	sink := NewChannelSink(16)
	e, err := New().WithConfig(cfg).WithAuditSink(sink).Build()
	require.NoError(t, err)
	ctx := context.Background()

	n := &toasts{}
	f, err := e.NewLoginForm(n)
	require.NoError(t, err)
	f.SetValue("email", "test@example.com")
	f.SetValue("password", "Password123")
	require.NoError(t, f.Submit(ctx))

	st := e.Controller().State()
	require.True(t, st.IsAuthenticated)
	assert.Equal(t, "test@example.com", st.User.Email)
	assert.Empty(t, n.errors)

	e.Controller().Logout(ctx)
	e.Close()
	e.Close()

	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricLoginSuccess])
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricLogout])

	var ops []string
	for len(sink.Events()) > 0 {
		ev := <-sink.Events()
		ops = append(ops, ev.Op+":"+ev.Outcome)
	}
	assert.Equal(t, []string{"login:success", "logout:success"}, ops)
}

func TestEngineFailedLoginNotifiesAndAudits(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	sink := NewChannelSink(4)
	e := build(t, New().WithConfig(cfg).WithAuditSink(sink))

	n := &toasts{}
	f, err := e.NewLoginForm(n)
	require.NoError(t, err)
	f.SetValue("email", "test@example.com")
	f.SetValue("password", "WrongPassword1")

	err = f.Submit(context.Background())
	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, []string{"Invalid email or password"}, n.errors)

	ev := <-sink.Events()
	assert.Equal(t, "failure", ev.Outcome)
	assert.Equal(t, "Invalid email or password", ev.Error)
	assert.NotContains(t, ev.Error, "WrongPassword1")
}

func TestEngineFallsBackToMock(t *testing.T) {
	cfg := testConfig()
	e := build(t, New().WithConfig(cfg).WithPrimary(downClient{}))
	ctx := context.Background()

	require.NoError(t, e.Controller().Login(ctx, authapi.LoginRequest{Email: "test@example.com", Password: "Password123"}))
	assert.True(t, e.Controller().State().IsAuthenticated)

	resp, err := e.Controller().ResetPassword(ctx, authapi.ResetPasswordRequest{Email: "test@example.com"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, uint64(2), e.MetricsSnapshot().Counters[MetricFallbackUsed])
}

func TestEngineWithoutFallbackSurfacesPrimaryError(t *testing.T) {
	cfg := testConfig()
	cfg.Transport.Fallback = false
	cfg.Transport.BaseURL = "http://127.0.0.1:1/api"
	e := build(t, New().WithConfig(cfg).WithPrimary(downClient{}))

	err := e.Controller().Login(context.Background(), authapi.LoginRequest{Email: "test@example.com", Password: "Password123"})
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, "Login failed", auth.Message(err))
	assert.Zero(t, e.MetricsSnapshot().Counters[MetricFallbackUsed])
}

func TestEngineAgainstDemoServer(t *testing.T) {
	backendCfg := testConfig()
	backendCfg.Server.JWT.Secret = "0123456789abcdef0123456789abcdef"
	host := build(t, New().WithConfig(backendCfg))
	srv, err := host.NewServer(nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	clientCfg := testConfig()
	clientCfg.Transport.BaseURL = ts.URL + "/api"
	clientCfg.Transport.Fallback = false
	e := build(t, New().WithConfig(clientCfg))
	ctx := context.Background()

	n := &toasts{}
	reg, err := e.NewRegisterForm(n)
	require.NoError(t, err)
	reg.SetValue("name", "Jo")
	reg.SetValue("email", "jo@example.com")
	reg.SetValue("password", "Secret1")
	require.NoError(t, reg.Submit(ctx))
	require.True(t, e.Controller().State().IsAuthenticated)

	// The account lives in the server's store, not the client's.
	_, ok := host.Store().FindUserByEmail(ctx, "jo@example.com")
	assert.True(t, ok)
	_, ok = e.Store().FindUserByEmail(ctx, "jo@example.com")
	assert.False(t, ok)

	require.NoError(t, e.Controller().Me(ctx))
	assert.Equal(t, "Jo", e.Controller().State().User.Name)

	err = reg.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{"User with this email already exists"}, n.errors)
}

func TestEngineRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Storage.Driver = StorageRedis
	cfg.Storage.RedisAddr = mr.Addr()
	cfg.Storage.RedisPrefix = "t"
	e := build(t, New().WithConfig(cfg))
	ctx := context.Background()

	require.NoError(t, e.Ping(ctx))
	require.NoError(t, e.Controller().Login(ctx, authapi.LoginRequest{Email: "test@example.com", Password: "Password123"}))
	assert.True(t, mr.Exists("t:"+storage.KeyAuthToken))
	assert.True(t, mr.Exists("t:"+storage.KeyUsers))

	// A second engine over the same Redis restores the session.
	other := build(t, New().WithConfig(cfg))
	other.Mount(ctx)
	require.Eventually(t, func() bool { return other.Controller().State().IsAuthenticated }, 2*time.Second, 5*time.Millisecond)
}

func TestEngineFileStorageAndArgon2(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = StorageFile
	cfg.Storage.Dir = t.TempDir()
	cfg.Password.Verifier = VerifierArgon2
	cfg.Password.Argon2.Memory = 8 * 1024
	cfg.Password.Argon2.Time = 1
	cfg.Password.Argon2.Parallelism = 1
	e := build(t, New().WithConfig(cfg))
	ctx := context.Background()

	require.NoError(t, e.Controller().Register(ctx, authapi.RegisterRequest{Name: "Jo", Email: "jo@example.com", Password: "Secret1"}))
	e.Controller().Logout(ctx)
	require.NoError(t, e.Controller().Login(ctx, authapi.LoginRequest{Email: "jo@example.com", Password: "Secret1"}))
}

func TestBuilderErrors(t *testing.T) {
	b := New().WithConfig(testConfig())
	e, err := b.Build()
	require.NoError(t, err)
	e.Close()
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrBuilderUsed)

	cfg := testConfig()
	cfg.Storage.Driver = "sqlite"
	_, err = New().WithConfig(cfg).Build()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig()
	cfg.Storage.Driver = StorageRedis
	cfg.Storage.RedisAddr = "127.0.0.1:1"
	e, err = New().WithConfig(cfg).Build()
	require.NoError(t, err)
	assert.Error(t, e.Ping(context.Background()))
	e.Close()

	cfg = testConfig()
	cfg.Storage.Driver = StorageRedis
	_, err = New().WithConfig(cfg).WithBackend(nil).Build()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewServerRequiresSecret(t *testing.T) {
	e := build(t, New().WithConfig(testConfig()))
	_, err := e.NewServer(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClosedEngineRejectsServerAndPing(t *testing.T) {
	e, err := New().WithConfig(testConfig()).Build()
	require.NoError(t, err)
	e.Close()
	e.Close()

	_, err = e.NewServer(nil)
	assert.ErrorIs(t, err, ErrEngineClosed)
	assert.ErrorIs(t, e.Ping(context.Background()), ErrEngineClosed)
}

func TestEngineAccessors(t *testing.T) {
	cfg := testConfig()
	e := build(t, New().WithConfig(cfg))

	assert.Equal(t, cfg.Storage.Driver, e.Config().Storage.Driver)
	assert.NotNil(t, e.Controller())
	assert.NotNil(t, e.Store())
	assert.NotNil(t, e.Client())
	assert.NotNil(t, e.Backend())
	assert.NotNil(t, e.Logger())
	assert.Nil(t, e.Redis())
}
