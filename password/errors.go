package password

import "errors"

var (
	// ErrInvalidHash is returned when a stored hash cannot be parsed.
	ErrInvalidHash = errors.New("password: invalid hash")
	// ErrUnsupportedHash is returned for a well-formed hash of another
	// algorithm or version.
	ErrUnsupportedHash = errors.New("password: unsupported hash")
	// ErrWeakConfig is returned by NewArgon2 for parameters below the floor.
	ErrWeakConfig = errors.New("password: argon2 parameters below minimum")
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password: empty password")
)
