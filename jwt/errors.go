package jwt

import "errors"

var (
	// ErrInvalidConfig is returned by NewManager.
	ErrInvalidConfig = errors.New("jwt: invalid configuration")
	// ErrInvalidToken is returned by Parse for any token that fails
	// verification. The cause is wrapped.
	ErrInvalidToken = errors.New("jwt: invalid token")
)
