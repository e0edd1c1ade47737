package form

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalcoreHardcore698/authdemo/validation"
)

type submitEvent struct{ prevented bool }

func (e *submitEvent) PreventDefault() { e.prevented = true }

func newTestForm(t *testing.T, opts Options) *Form {
	t.Helper()
	f, err := New(opts)
	require.NoError(t, err)
	return f
}

func loginRules() validation.RuleSet {
	return validation.RuleSet{
		"email": {
			Required:        true,
			RequiredMessage: "Email is required",
			Pattern:         validation.EmailPattern("Enter a valid email address"),
		},
		"password": {
			Required:  true,
			MinLength: &validation.Length{Value: 6, Message: "too short"},
		},
	}
}

func TestNewFormInitialState(t *testing.T) {
	f := newTestForm(t, Options{})
	s := f.State()

	assert.Empty(t, s.Values)
	assert.Empty(t, s.Errors)
	assert.Empty(t, s.TouchedFields)
	assert.Empty(t, s.DirtyFields)
	assert.True(t, s.IsValid)
	assert.False(t, s.IsDirty)
	assert.False(t, s.IsSubmitting)
}

func TestNewFormRejectsMixedRuleShapes(t *testing.T) {
	_, err := New(Options{Rules: validation.RuleSet{
		"age": {MinLength: validation.MinLen(1), Min: validation.Min(0)},
	}})
	assert.ErrorIs(t, err, validation.ErrMixedShape)
}

func TestDefaultValuesAreCopied(t *testing.T) {
	defaults := validation.Values{"email": "test@example.com"}
	f := newTestForm(t, Options{DefaultValues: defaults})
	defaults["email"] = "changed"

	assert.Equal(t, "test@example.com", f.Value("email"))
	assert.Equal(t, validation.Values{"email": "test@example.com"}, f.Values())
}

func TestSetValueDoesNotValidate(t *testing.T) {
	f := newTestForm(t, Options{Mode: ModeOnChange, Rules: loginRules()})
	f.SetValue("email", "bad")

	assert.Equal(t, "bad", f.Watch("email"))
	assert.True(t, f.State().IsValid)
}

func TestTriggerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{
		DefaultValues: validation.Values{"email": "nope", "password": ""},
		Rules:         loginRules(),
	})

	assert.False(t, f.Trigger(ctx))
	first := f.State().Errors
	assert.False(t, f.Trigger(ctx))
	second := f.State().Errors

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	assert.Equal(t, validation.TypePattern, first["email"].Type)
	assert.Equal(t, validation.TypeRequired, first["password"].Type)
}

func TestTriggerSingleFieldKeepsOtherErrors(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{
		DefaultValues: validation.Values{"email": "", "password": ""},
		Rules:         loginRules(),
	})
	require.False(t, f.Trigger(ctx))

	f.SetValue("email", "jo@x.com")
	assert.True(t, f.Trigger(ctx, "email"))

	errs := f.State().Errors
	assert.NotContains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestTriggerUnknownFieldPasses(t *testing.T) {
	f := newTestForm(t, Options{})
	assert.True(t, f.Trigger(context.Background(), "nothing"))
}

func TestDirtyTracking(t *testing.T) {
	f := newTestForm(t, Options{DefaultValues: validation.Values{"email": "a@b.co", "tags": []string{"x"}}})

	f.Reset(nil)
	assert.False(t, f.State().IsDirty)

	f.SetValue("email", "c@d.co")
	s := f.State()
	assert.True(t, s.IsDirty)
	assert.True(t, s.DirtyFields["email"])
	assert.False(t, s.DirtyFields["tags"])

	f.SetValue("email", "a@b.co")
	assert.False(t, f.State().IsDirty)

	// Deep equality, not identity.
	f.SetValue("tags", []string{"x"})
	assert.False(t, f.State().IsDirty)
	f.SetValue("tags", []string{"x", "y"})
	assert.True(t, f.State().IsDirty)
}

type sealedValue struct{ v int }

func TestDirtyTrackingComparesUnexportedFields(t *testing.T) {
	f := newTestForm(t, Options{DefaultValues: validation.Values{"x": sealedValue{1}}})

	f.SetValue("x", sealedValue{2})
	s := f.State()
	assert.True(t, s.IsDirty)
	assert.True(t, s.DirtyFields["x"])

	f.SetValue("x", sealedValue{1})
	assert.False(t, f.State().IsDirty)

	// The form stays usable after comparing such values.
	f.SetError("x", validation.FieldError{Type: "custom", Message: "bad"})
	_, ok := f.State().Error("x")
	assert.True(t, ok)
}

func TestEqualFallsBackForUnwalkableValues(t *testing.T) {
	fn := func() {}
	assert.False(t, Equal(fn, fn), "funcs are never deeply equal")
	assert.True(t, Equal(sealedValue{3}, sealedValue{3}))
}

func TestResetMergesOverDefaultsAndRebaselines(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{
		DefaultValues: validation.Values{"email": "", "password": ""},
		Rules:         loginRules(),
	})
	b, err := f.Register("email")
	require.NoError(t, err)
	b.OnBlur(ctx)
	require.False(t, f.Trigger(ctx))

	f.Reset(validation.Values{"email": "jo@x.com"})
	s := f.State()

	assert.Equal(t, validation.Values{"email": "jo@x.com", "password": ""}, s.Values)
	assert.Empty(t, s.Errors)
	assert.Empty(t, s.TouchedFields)
	assert.False(t, s.IsDirty)
	assert.False(t, s.IsSubmitting)

	f.Reset(nil)
	assert.Equal(t, validation.Values{"email": "", "password": ""}, f.Values())
}

func TestSetErrorAndClearErrors(t *testing.T) {
	f := newTestForm(t, Options{})
	f.SetError("email", validation.FieldError{Type: "server", Message: "taken"})
	f.SetError("name", validation.FieldError{Type: "server", Message: "bad"})

	s := f.State()
	assert.False(t, s.IsValid)
	fe, ok := s.Error("email")
	require.True(t, ok)
	assert.Equal(t, "taken", fe.Message)

	f.ClearErrors("email")
	assert.Len(t, f.State().Errors, 1)

	f.ClearErrors()
	assert.True(t, f.State().IsValid)
}

func TestRegisterReplacesRules(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{DefaultValues: validation.Values{"name": "J"}})

	_, err := f.Register("name", validation.Rules{MinLength: validation.MinLen(1)})
	require.NoError(t, err)
	assert.True(t, f.Trigger(ctx, "name"))

	_, err = f.Register("name", validation.Rules{MinLength: validation.MinLen(2)})
	require.NoError(t, err)
	assert.False(t, f.Trigger(ctx, "name"))

	_, err = f.Register("")
	assert.ErrorIs(t, err, ErrEmptyFieldName)

	_, err = f.Register("x", validation.Rules{Pattern: validation.MustPattern(`a`, ""), Max: validation.Max(1)})
	assert.ErrorIs(t, err, validation.ErrMixedShape)
}

func TestOnChangeModeValidatesOnEveryChange(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{Mode: ModeOnChange, Rules: loginRules()})
	email, err := f.Register("email")
	require.NoError(t, err)

	email.OnChange(ctx, "jo")
	fe, ok := email.Error()
	require.True(t, ok)
	assert.Equal(t, "Enter a valid email address", fe.Message)

	email.OnInput(ctx, "jo@x.com")
	_, ok = email.Error()
	assert.False(t, ok)
	assert.Equal(t, "jo@x.com", email.Value())
}

func TestOnSubmitModeDoesNotValidateOnChangeOrBlur(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{Rules: loginRules()})
	email, err := f.Register("email")
	require.NoError(t, err)

	email.OnChange(ctx, "jo")
	email.OnBlur(ctx)
	assert.True(t, f.State().IsValid)
	assert.True(t, email.Touched())
}

func TestOnBlurModeValidatesOnBlurOnly(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{Mode: ModeOnBlur, Rules: loginRules()})
	email, err := f.Register("email")
	require.NoError(t, err)

	email.OnChange(ctx, "jo")
	assert.True(t, f.State().IsValid)

	email.OnBlur(ctx)
	assert.False(t, f.State().IsValid)
	assert.True(t, f.State().TouchedFields["email"])
}

func TestBindingAuxiliaryAdapters(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{Mode: ModeOnChange, Rules: loginRules()})
	email, err := f.Register("email")
	require.NoError(t, err)

	assert.Equal(t, "", email.Value())

	email.OnAutofill(ctx, "someOtherAnimation", "x@y.zz")
	assert.Nil(t, f.Value("email"))

	email.OnAutofill(ctx, AutofillAnimation, "auto@fill.io")
	assert.Equal(t, "auto@fill.io", f.Value("email"))

	email.OnTransitionEnd(ctx, "")
	assert.Equal(t, "auto@fill.io", f.Value("email"))

	email.OnFocus(ctx, "bad")
	assert.Equal(t, "bad", f.Value("email"))
	_, hasErr := email.Error()
	assert.True(t, hasErr)

	email.OnPaste(ctx, "pasted@x.com")
	email.OnCompositionEnd(ctx, "ime@x.com")
	assert.Equal(t, "ime@x.com", f.Value("email"))
	_, hasErr = email.Error()
	assert.False(t, hasErr)
	assert.True(t, email.Dirty())
}

func TestHandleSubmitCallsOnSubmitWithValidValues(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{
		DefaultValues: validation.Values{"email": "jo@x.com", "password": "Abcdef1"},
		Rules:         loginRules(),
	})

	var got validation.Values
	var submittingDuring bool
	ev := &submitEvent{}
	f.HandleSubmit(func(_ context.Context, values validation.Values) error {
		got = values
		submittingDuring = f.State().IsSubmitting
		return nil
	})(ctx, ev)

	assert.True(t, ev.prevented)
	assert.True(t, submittingDuring)
	assert.False(t, f.State().IsSubmitting)
	assert.Equal(t, validation.Values{"email": "jo@x.com", "password": "Abcdef1"}, got)
}

func TestHandleSubmitSkipsOnSubmitWhenInvalid(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{Rules: loginRules()})

	called := false
	f.HandleSubmit(func(context.Context, validation.Values) error {
		called = true
		return nil
	})(ctx, nil)

	assert.False(t, called)
	assert.Len(t, f.State().Errors, 2)
	assert.False(t, f.State().IsSubmitting)
}

func TestHandleSubmitInvalidWhenConfigured(t *testing.T) {
	ctx := context.Background()
	f := newTestForm(t, Options{Rules: loginRules(), SubmitInvalid: true})

	called := false
	f.HandleSubmit(func(context.Context, validation.Values) error {
		called = true
		return nil
	})(ctx, nil)

	assert.True(t, called)
	assert.False(t, f.State().IsValid)
}

func TestHandleSubmitRoutesErrorsToOnError(t *testing.T) {
	ctx := context.Background()
	var caught []error
	f := newTestForm(t, Options{OnError: func(err error) { caught = append(caught, err) }})

	boom := errors.New("boom")
	f.HandleSubmit(func(context.Context, validation.Values) error { return boom })(ctx, nil)
	f.HandleSubmit(func(context.Context, validation.Values) error { panic("kaput") })(ctx, nil)

	require.Len(t, caught, 2)
	assert.ErrorIs(t, caught[0], boom)
	assert.Contains(t, caught[1].Error(), "kaput")
	assert.False(t, f.State().IsSubmitting)
}

func TestStaleFieldValidationIsDiscarded(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	f := newTestForm(t, Options{Rules: validation.RuleSet{
		"name": {Validate: func(_ context.Context, v any) error {
			if v == "slow" {
				once.Do(func() { close(entered) })
				<-release
				return validation.Fail("stale verdict")
			}
			return nil
		}},
	}})

	f.SetValue("name", "slow")
	done := make(chan bool)
	go func() { done <- f.Trigger(ctx, "name") }()

	<-entered
	f.SetValue("name", "fresh")
	close(release)
	<-done

	_, ok := f.State().Error("name")
	assert.False(t, ok, "verdict for an outdated value must not be applied")
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	f := newTestForm(t, Options{})
	var mu sync.Mutex
	var seen []State
	unsubscribe := f.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	f.SetValue("a", 1)
	f.SetError("a", validation.FieldError{Type: "x", Message: "y"})
	unsubscribe()
	f.SetValue("a", 2)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[0].Values["a"])
	assert.False(t, seen[1].IsValid)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeOnSubmit, "onSubmit": ModeOnSubmit, "onBlur": ModeOnBlur, "onChange": ModeOnChange} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if in != "" {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := ParseMode("onKeyUp")
	assert.ErrorIs(t, err, ErrUnknownMode)
}
