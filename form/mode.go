package form

import "fmt"

// Mode selects when fields are validated in addition to submit time.
type Mode uint8

const (
	// ModeOnSubmit validates only when the form is submitted.
	ModeOnSubmit Mode = iota
	// ModeOnBlur also validates a field when it loses focus.
	ModeOnBlur
	// ModeOnChange also validates a field on every value change.
	ModeOnChange
)

func (m Mode) String() string {
	switch m {
	case ModeOnBlur:
		return "onBlur"
	case ModeOnChange:
		return "onChange"
	default:
		return "onSubmit"
	}
}

// ParseMode maps "onSubmit", "onBlur" and "onChange" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "onSubmit":
		return ModeOnSubmit, nil
	case "onBlur":
		return ModeOnBlur, nil
	case "onChange":
		return ModeOnChange, nil
	}
	return ModeOnSubmit, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
