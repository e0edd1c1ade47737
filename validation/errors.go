package validation

import "errors"

var (
	// ErrMixedShape is returned by Rules.Check when a rule set combines
	// string-shaped and number-shaped constraints.
	ErrMixedShape = errors.New("rule set mixes string and number constraints")
	// ErrKindMismatch is returned by Rules.Check when an explicit Kind
	// disagrees with the constraints present.
	ErrKindMismatch = errors.New("rule kind does not match constraints")
	// ErrInvalidBound is returned by Rules.Check for negative lengths or
	// inverted bounds.
	ErrInvalidBound = errors.New("invalid rule bound")
	// ErrFailed is the "false" verdict for Validate and Custom callbacks.
	// The resulting FieldError carries the default message.
	ErrFailed = errors.New("validation failed")
)

// Failure is a callback verdict carrying a user-facing message.
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Fail returns a callback verdict that fails with msg.
func Fail(msg string) error {
	return &Failure{Message: msg}
}
