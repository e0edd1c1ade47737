package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"unicode/utf16"

	"golang.org/x/sync/errgroup"
)

// Error types reported in FieldError.Type.
const (
	TypeRequired  = "required"
	TypeMin       = "min"
	TypeMax       = "max"
	TypeMinLength = "minLength"
	TypeMaxLength = "maxLength"
	TypePattern   = "pattern"
	TypeValidate  = "validate"
	TypeCustom    = "custom"
	TypeKind      = "type"
	TypeUnknown   = "unknown"
)

const (
	defaultRequiredMessage = "This field is required"
	defaultPatternMessage  = "Invalid format"
	defaultFailedMessage   = "Validation failed"
)

// FieldError is the verdict for one failing field.
type FieldError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Type + ": " + e.Message
}

// ValidateField checks value against rules and returns the first failure,
// or nil when the value passes. all is the full value bag handed to Custom.
func ValidateField(ctx context.Context, value any, rules Rules, all Values) *FieldError {
	if err := rules.Check(); err != nil {
		return &FieldError{Type: TypeUnknown, Message: defaultFailedMessage}
	}

	empty := isEmpty(value)
	if rules.Required && empty {
		return &FieldError{Type: TypeRequired, Message: messageOr(rules.RequiredMessage, defaultRequiredMessage)}
	}

	if !empty {
		var fe *FieldError
		switch rules.Shape() {
		case KindString:
			fe = checkString(value, rules)
		case KindNumber:
			fe = checkNumber(value, rules)
		}
		if fe != nil {
			return fe
		}
	}

	if rules.Validate != nil {
		err := guard(func() error { return rules.Validate(ctx, value) })
		if fe := verdict(TypeValidate, err); fe != nil {
			return fe
		}
	}

	if rules.Custom != nil {
		err := guard(func() error { return rules.Custom(ctx, value, all) })
		if fe := verdict(TypeCustom, err); fe != nil {
			return fe
		}
	}

	return nil
}

// ValidateForm validates every field in set concurrently and returns the
// failing ones. Passing fields are absent from the result.
func ValidateForm(ctx context.Context, values Values, set RuleSet) map[string]FieldError {
	var (
		mu     sync.Mutex
		g      errgroup.Group
		failed = make(map[string]FieldError)
	)

	for name, rules := range set {
		g.Go(func() error {
			fe := ValidateField(ctx, values[name], rules, values)
			if fe == nil {
				return nil
			}
			mu.Lock()
			failed[name] = *fe
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return failed
}

func checkString(value any, rules Rules) *FieldError {
	s, ok := value.(string)
	if !ok {
		return &FieldError{Type: TypeKind, Message: "Expected string"}
	}

	n := codeUnits(s)
	if rules.MinLength != nil && n < rules.MinLength.Value {
		return &FieldError{
			Type:    TypeMinLength,
			Message: messageOr(rules.MinLength.Message, fmt.Sprintf("Minimum length is %d", rules.MinLength.Value)),
		}
	}
	if rules.MaxLength != nil && n > rules.MaxLength.Value {
		return &FieldError{
			Type:    TypeMaxLength,
			Message: messageOr(rules.MaxLength.Message, fmt.Sprintf("Maximum length is %d", rules.MaxLength.Value)),
		}
	}
	if rules.Pattern != nil {
		ok, err := rules.Pattern.Match(s)
		if err != nil {
			return &FieldError{Type: TypeUnknown, Message: defaultFailedMessage}
		}
		if !ok {
			return &FieldError{Type: TypePattern, Message: messageOr(rules.Pattern.Message(), defaultPatternMessage)}
		}
	}
	return nil
}

func checkNumber(value any, rules Rules) *FieldError {
	f, ok := toFloat(value)
	if !ok {
		return &FieldError{Type: TypeKind, Message: "Expected number"}
	}

	if rules.Min != nil && f < rules.Min.Value {
		return &FieldError{
			Type:    TypeMin,
			Message: messageOr(rules.Min.Message, "Minimum value is "+formatFloat(rules.Min.Value)),
		}
	}
	if rules.Max != nil && f > rules.Max.Value {
		return &FieldError{
			Type:    TypeMax,
			Message: messageOr(rules.Max.Message, "Maximum value is "+formatFloat(rules.Max.Value)),
		}
	}
	return nil
}

func verdict(typ string, err error) *FieldError {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return &FieldError{Type: typ, Message: messageOr(f.Message, defaultFailedMessage)}
	}
	if errors.Is(err, ErrFailed) {
		return &FieldError{Type: typ, Message: defaultFailedMessage}
	}
	return &FieldError{Type: TypeUnknown, Message: defaultFailedMessage}
}

// guard runs a user callback and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validation callback panic: %v", r)
		}
	}()
	return fn()
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Map:
		return rv.IsNil()
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// codeUnits measures s the way browsers do: in UTF-16 code units.
func codeUnits(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
