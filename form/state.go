package form

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/MalcoreHardcore698/authdemo/validation"
)

// State is a snapshot of a form. IsValid and IsDirty are derived from
// Errors and DirtyFields at snapshot time.
type State struct {
	Values        validation.Values
	Errors        map[string]validation.FieldError
	TouchedFields map[string]bool
	DirtyFields   map[string]bool
	IsValid       bool
	IsDirty       bool
	IsSubmitting  bool
}

// Error returns the error recorded for name, if any.
func (s State) Error(name string) (validation.FieldError, bool) {
	fe, ok := s.Errors[name]
	return fe, ok
}

var equalOpts = cmp.Options{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// Equal reports deep equality of two field values. Nil and empty
// collections compare equal and unexported struct fields are compared.
// Values cmp cannot walk fall back to reflect.DeepEqual.
func Equal(a, b any) (eq bool) {
	defer func() {
		if r := recover(); r != nil {
			eq = reflect.DeepEqual(a, b)
		}
	}()
	return cmp.Equal(a, b, equalOpts)
}

// DirtyFields compares every current value against the baseline.
func DirtyFields(current, baseline validation.Values) map[string]bool {
	out := make(map[string]bool, len(current))
	for name, v := range current {
		out[name] = !Equal(v, baseline[name])
	}
	return out
}

func copyValues(in validation.Values) validation.Values {
	out := make(validation.Values, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyErrors(in map[string]validation.FieldError) map[string]validation.FieldError {
	out := make(map[string]validation.FieldError, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
