package validation

import (
	"context"
	"fmt"
)

// Values is the value bag of one form keyed by field name.
type Values map[string]any

// Kind is the inferred or declared shape of a field.
type Kind uint8

const (
	// KindAuto infers the shape from the constraints present.
	KindAuto Kind = iota
	// KindString applies MinLength, MaxLength and Pattern.
	KindString
	// KindNumber applies Min and Max.
	KindNumber
	// KindAny applies only Required and the callbacks.
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindAny:
		return "any"
	default:
		return "auto"
	}
}

// Bound is an inclusive numeric limit with an optional message.
type Bound struct {
	Value   float64
	Message string
}

// Length is an inclusive string length limit in UTF-16 code units.
type Length struct {
	Value   int
	Message string
}

// ValidateFunc checks a single value. It returns nil to pass, a [Failure]
// (see [Fail]) to fail with a message, or [ErrFailed] to fail with the
// default message. Any other error is treated as an unknown failure.
type ValidateFunc func(ctx context.Context, value any) error

// CustomFunc is like ValidateFunc but also receives the whole value bag,
// for cross-field checks such as password confirmation.
type CustomFunc func(ctx context.Context, value any, all Values) error

// Rules is the declarative rule bag for one field. Zero-valued members are
// absent constraints. An empty message selects the default one.
type Rules struct {
	Kind Kind

	Required        bool
	RequiredMessage string

	Min *Bound
	Max *Bound

	MinLength *Length
	MaxLength *Length
	Pattern   *Pattern

	Validate ValidateFunc
	Custom   CustomFunc
}

// Min returns a lower bound using the default message.
func Min(v float64) *Bound { return &Bound{Value: v} }

// Max returns an upper bound using the default message.
func Max(v float64) *Bound { return &Bound{Value: v} }

// MinLen returns a minimum length using the default message.
func MinLen(n int) *Length { return &Length{Value: n} }

// MaxLen returns a maximum length using the default message.
func MaxLen(n int) *Length { return &Length{Value: n} }

func (r Rules) hasStringRules() bool {
	return r.MinLength != nil || r.MaxLength != nil || r.Pattern != nil
}

func (r Rules) hasNumberRules() bool {
	return r.Min != nil || r.Max != nil
}

// Shape returns the effective kind of the rule set. It does not report
// conflicts; use Check for that.
func (r Rules) Shape() Kind {
	if r.Kind != KindAuto {
		return r.Kind
	}
	switch {
	case r.hasStringRules():
		return KindString
	case r.hasNumberRules():
		return KindNumber
	default:
		return KindAny
	}
}

// Check reports whether the rule set is well formed.
func (r Rules) Check() error {
	str, num := r.hasStringRules(), r.hasNumberRules()
	if str && num {
		return ErrMixedShape
	}
	switch r.Kind {
	case KindString:
		if num {
			return fmt.Errorf("%w: %s kind with min/max", ErrKindMismatch, r.Kind)
		}
	case KindNumber:
		if str {
			return fmt.Errorf("%w: %s kind with length/pattern", ErrKindMismatch, r.Kind)
		}
	case KindAny:
		if str || num {
			return fmt.Errorf("%w: %s kind with structural rules", ErrKindMismatch, r.Kind)
		}
	}
	if r.MinLength != nil && r.MinLength.Value < 0 {
		return fmt.Errorf("%w: negative minLength", ErrInvalidBound)
	}
	if r.MaxLength != nil && r.MaxLength.Value < 0 {
		return fmt.Errorf("%w: negative maxLength", ErrInvalidBound)
	}
	if r.MinLength != nil && r.MaxLength != nil && r.MinLength.Value > r.MaxLength.Value {
		return fmt.Errorf("%w: minLength %d > maxLength %d", ErrInvalidBound, r.MinLength.Value, r.MaxLength.Value)
	}
	if r.Min != nil && r.Max != nil && r.Min.Value > r.Max.Value {
		return fmt.Errorf("%w: min %v > max %v", ErrInvalidBound, r.Min.Value, r.Max.Value)
	}
	return nil
}

// RuleSet maps field names to their rules.
type RuleSet map[string]Rules

// Check validates every rule set and names the first offending field.
func (s RuleSet) Check() error {
	for name, rules := range s {
		if err := rules.Check(); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

// Clone returns a shallow copy of the set.
func (s RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
