package auth

import (
	"errors"

	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/mockstore"
)

// Operation names used in Error.Op and Event.Op.
const (
	OpBootstrap     = "bootstrap"
	OpLogin         = "login"
	OpRegister      = "register"
	OpResetPassword = "reset_password"
	OpLogout        = "logout"
)

// DefaultErrorMessage is shown for failures with no better message.
const DefaultErrorMessage = "Something went wrong"

var (
	// ErrSuperseded is returned by an action whose result arrived after a
	// newer session transition and was discarded.
	ErrSuperseded = errors.New("auth: action superseded by a newer session change")
	// ErrInvalidForm is returned by a feature form submit that failed
	// validation.
	ErrInvalidForm = errors.New("auth: form has validation errors")
)

// Error is a failed session action. Message is safe to show to users.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

var knownMessages = []struct {
	err error
	msg string
}{
	{mockstore.ErrInvalidCredentials, "Invalid email or password"},
	{mockstore.ErrEmailTaken, "User with this email already exists"},
	{mockstore.ErrEmailNotFound, "User with this email not found"},
	{mockstore.ErrUserNotFound, "User not found"},
	{authapi.ErrNoToken, "No token found"},
	{authapi.ErrInvalidToken, "Invalid or expired token"},
}

var fallbackMessages = map[string]string{
	OpBootstrap:     "Failed to get current user",
	OpLogin:         "Login failed",
	OpRegister:      "Registration failed",
	OpResetPassword: "Password reset failed",
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Message: userMessage(op, err), Err: err}
}

func userMessage(op string, err error) string {
	for _, k := range knownMessages {
		if errors.Is(err, k.err) {
			return k.msg
		}
	}
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) && !apiErr.Temporary() && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg, ok := fallbackMessages[op]; ok {
		return msg
	}
	return DefaultErrorMessage
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return DefaultErrorMessage
}
