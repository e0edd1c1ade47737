package mockstore

import "errors"

var (
	// ErrInvalidCredentials is returned by AuthenticateUser for an unknown
	// email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("mockstore: invalid email or password")
	// ErrEmailTaken is returned by CreateUser when the email is registered.
	ErrEmailTaken = errors.New("mockstore: user with this email already exists")
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("mockstore: user not found")
	// ErrEmailNotFound is returned by ResetPassword for an unknown email.
	ErrEmailNotFound = errors.New("mockstore: user with this email not found")
	// ErrInvalidInput is returned for registrations missing a required field.
	ErrInvalidInput = errors.New("mockstore: invalid input")
	// ErrUnavailable is returned by mutating operations when the current
	// table could not be read. Writing over an unreadable table would lose it.
	ErrUnavailable = errors.New("mockstore: storage unavailable")
)
