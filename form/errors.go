package form

import "errors"

var (
	// ErrEmptyFieldName is returned when registering a field without a name.
	ErrEmptyFieldName = errors.New("form: empty field name")
	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("form: unknown validation mode")
)
