package authapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoToken is returned by Me when called without a token.
	ErrNoToken = errors.New("authapi: no token found")
	// ErrInvalidToken is returned by Me for a token bound to no user.
	ErrInvalidToken = errors.New("authapi: invalid or expired token")
	// ErrBadBaseURL is returned by NewHTTPClient.
	ErrBadBaseURL = errors.New("authapi: invalid base url")
)

// APIError is a non-2xx response from the backend. Message is the body's
// "message" field, or the status text when the body has none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authapi: %d %s", e.Status, e.Message)
}

// Temporary reports whether a retry could succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= http.StatusInternalServerError
}
