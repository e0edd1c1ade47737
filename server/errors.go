package server

import "errors"

var (
	// ErrMissingDependency is returned by New when Store or Tokens is nil.
	ErrMissingDependency = errors.New("server: missing dependency")
)

// Messages returned in error bodies.
const (
	msgInvalidJSON        = "Invalid request body"
	msgNoToken            = "No token found"
	msgInvalidToken       = "Invalid or expired token"
	msgUserNotFound       = "User not found"
	msgInvalidCredentials = "Invalid email or password"
	msgEmailTaken         = "User with this email already exists"
	msgEmailNotFound      = "User with this email not found"
	msgTooManyAttempts    = "Too many attempts, try again later"
	msgInternal           = "Internal server error"
)
