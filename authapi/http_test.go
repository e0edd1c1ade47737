package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPClient(t *testing.T, srv *httptest.Server, retries uint64) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(HTTPOptions{
		BaseURL:    srv.URL + "/api/",
		Timeout:    time.Second,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestHTTPClientLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, LoginRequest{Email: "jo@x.com", Password: "Abcdef1"}, req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(AuthResponse{User: User{ID: "u1", Name: "Jo", Email: "jo@x.com"}, Token: "t1"})
	}))
	defer srv.Close()

	resp, err := newTestHTTPClient(t, srv, 0).Login(context.Background(), LoginRequest{Email: "jo@x.com", Password: "Abcdef1"})
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, "Jo", resp.User.Name)
}

func TestHTTPClientMeSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Name: "Jo"})
	}))
	defer srv.Close()

	c := newTestHTTPClient(t, srv, 0)
	u, err := c.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = c.Me(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestHTTPClientClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
	}))
	defer srv.Close()

	_, err := newTestHTTPClient(t, srv, 3).Login(context.Background(), LoginRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(ResetPasswordResponse{Message: "sent", Success: true})
	}))
	defer srv.Close()

	resp, err := newTestHTTPClient(t, srv, 2).ResetPassword(context.Background(), ResetPasswordRequest{Email: "jo@x.com"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClientGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestHTTPClient(t, srv, 1).Register(context.Background(), RegisterRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Service Unavailable", apiErr.Message)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestHTTPClient(t, srv, 0)
	srv.Close()

	_, err := c.Login(context.Background(), LoginRequest{})
	require.Error(t, err)
}

func TestNewHTTPClientRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"localhost:3001", "ftp://x/api", "http://"} {
		_, err := NewHTTPClient(HTTPOptions{BaseURL: raw})
		assert.ErrorIs(t, err, ErrBadBaseURL, raw)
	}

	c, err := NewHTTPClient(HTTPOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.base.String())
}
