package authapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalcoreHardcore698/authdemo/mockstore"
	"github.com/MalcoreHardcore698/authdemo/storage"
)

func newMock(t *testing.T, opts MockOptions) (*MockClient, *mockstore.Store) {
	t.Helper()
	store := mockstore.New(storage.NewMemoryBackend(), mockstore.WithSeed())
	return NewMockClient(store, opts), store
}

func TestMockClientRegisterLoginMe(t *testing.T) {
	ctx := context.Background()
	m, store := newMock(t, MockOptions{})

	reg, err := m.Register(ctx, RegisterRequest{Name: "Jo", Email: "jo@x.com", Password: "Abcdef1"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)

	login, err := m.Login(ctx, LoginRequest{Email: "jo@x.com", Password: "Abcdef1"})
	require.NoError(t, err)
	assert.NotEqual(t, reg.Token, login.Token)
	assert.Equal(t, reg.User, login.User)

	me, err := m.Me(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "Jo", me.Name)

	m.Revoke(ctx, login.Token)
	_, ok := store.GetUserIDByToken(ctx, login.Token)
	assert.False(t, ok)
}

func TestMockClientMeErrors(t *testing.T) {
	ctx := context.Background()
	m, store := newMock(t, MockOptions{})

	_, err := m.Me(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = m.Me(ctx, "stale")
	assert.ErrorIs(t, err, ErrInvalidToken)

	u, err := store.CreateUser(ctx, mockstore.Registration{Name: "Jo", Email: "jo@x.com", Password: "Abcdef1"})
	require.NoError(t, err)
	tok, err := store.CreateToken(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, store.DeleteUser(ctx, u.ID))

	_, err = m.Me(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMockClientResetPassword(t *testing.T) {
	ctx := context.Background()
	m, store := newMock(t, MockOptions{})
	_, err := store.CreateUser(ctx, mockstore.Registration{Name: "Jo", Email: "jo@x.com", Password: "Abcdef1"})
	require.NoError(t, err)

	resp, err := m.ResetPassword(ctx, ResetPasswordRequest{Email: "jo@x.com"})
	require.NoError(t, err)
	assert.Equal(t, ResetPasswordResponse{Message: mockstore.ResetPasswordMessage, Success: true}, resp)

	_, err = m.ResetPassword(ctx, ResetPasswordRequest{Email: "ghost@x.com"})
	assert.ErrorIs(t, err, mockstore.ErrEmailNotFound)
}

func TestMockClientLatencyIsCancellable(t *testing.T) {
	m, _ := newMock(t, MockOptions{Latency: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.Login(ctx, LoginRequest{Email: "jo@x.com", Password: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
