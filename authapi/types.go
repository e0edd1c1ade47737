package authapi

import (
	"context"

	"github.com/MalcoreHardcore698/authdemo/mockstore"
)

// Endpoint paths relative to the API base URL.
const (
	PathLogin         = "/auth/login"
	PathRegister      = "/auth/register"
	PathMe            = "/auth/me"
	PathLogout        = "/auth/logout"
	PathResetPassword = "/auth/reset-password"
)

// DefaultBaseURL is where the primary transport looks for a backend.
const DefaultBaseURL = "http://localhost:3001/api"

type (
	// User is the public user record.
	User = mockstore.User
	// LoginRequest is the body of POST /auth/login.
	LoginRequest = mockstore.Credentials
	// RegisterRequest is the body of POST /auth/register.
	RegisterRequest = mockstore.Registration
)

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ResetPasswordResponse is returned by a password reset request.
type ResetPasswordResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Client performs auth requests.
type Client interface {
	Login(ctx context.Context, req LoginRequest) (AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	// Me resolves the user bound to token.
	Me(ctx context.Context, token string) (User, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (ResetPasswordResponse, error)
}

// Revoker is implemented by clients that can unlink a token locally.
type Revoker interface {
	Revoke(ctx context.Context, token string)
}
