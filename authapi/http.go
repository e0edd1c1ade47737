package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const maxErrorBody = 64 << 10

// HTTPOptions configures NewHTTPClient.
type HTTPOptions struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Timeout bounds each attempt. Defaults to 10s.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a transport error or
	// a 5xx response. Zero means a single attempt.
	MaxRetries uint64
	// Backoff is the first retry delay, doubled per attempt. Defaults to
	// 100ms.
	Backoff time.Duration
	// Client overrides the underlying *http.Client. Its Timeout is left as is.
	Client *http.Client
}

// HTTPClient is the primary transport.
type HTTPClient struct {
	base       *url.URL
	http       *http.Client
	maxRetries uint64
	backoff    time.Duration
}

// NewHTTPClient validates opts and returns a client.
func NewHTTPClient(opts HTTPOptions) (*HTTPClient, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, oops.Code("TRANSPORT_CONFIG_INVALID").With("base_url", raw).Wrap(ErrBadBaseURL)
	}

	hc := opts.Client
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	return &HTTPClient{base: base, http: hc, maxRetries: opts.MaxRetries, backoff: backoff}, nil
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, PathLogin, "", req, &out)
	return out, err
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, PathRegister, "", req, &out)
	return out, err
}

func (c *HTTPClient) Me(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNoToken
	}
	var out User
	err := c.do(ctx, http.MethodGet, PathMe, token, nil, &out)
	return out, err
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (ResetPasswordResponse, error) {
	var out ResetPasswordResponse
	err := c.do(ctx, http.MethodPost, PathResetPassword, "", req, &out)
	return out, err
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return oops.Code("TRANSPORT_ENCODE_FAILED").With("path", path).Wrap(err)
		}
	}

	endpoint := c.base.String() + path
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.attempt(ctx, method, endpoint, token, body, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return err
		}
		if err != nil && ctx.Err() == nil {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *HTTPClient) attempt(ctx context.Context, method, endpoint, token string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return oops.Code("TRANSPORT_REQUEST_FAILED").With("url", endpoint).Wrap(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return oops.Code("TRANSPORT_UNAVAILABLE").With("url", endpoint).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return oops.Code("TRANSPORT_DECODE_FAILED").With("url", endpoint).Wrap(err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &payload)

	msg := strings.TrimSpace(payload.Message)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
