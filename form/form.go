package form

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MalcoreHardcore698/authdemo/validation"
)

// SubmitFunc receives the validated value bag.
type SubmitFunc func(ctx context.Context, values validation.Values) error

// Event is the part of a UI submit event the form touches.
type Event interface {
	PreventDefault()
}

// Options configures New.
type Options struct {
	Mode          Mode
	DefaultValues validation.Values
	Rules         validation.RuleSet
	// OnError receives errors and panics raised by a submit callback.
	OnError func(error)
	// SubmitInvalid makes HandleSubmit call the submit callback even when
	// whole-form validation fails.
	SubmitInvalid bool
	Logger        *slog.Logger
}

// Form is the state owner for one form instance.
type Form struct {
	mode          Mode
	onError       func(error)
	submitInvalid bool
	logger        *slog.Logger

	mu         sync.Mutex
	defaults   validation.Values
	values     validation.Values
	baseline   validation.Values
	errors     map[string]validation.FieldError
	touched    map[string]bool
	submitting bool
	rules      validation.RuleSet

	// versions counts writes per field; epoch counts resets. A validation
	// result is applied only if both are unchanged since it started.
	versions map[string]uint64
	epoch    uint64

	subs    map[int]func(State)
	nextSub int
}

// New creates a form. It fails if any rule set in opts.Rules is malformed.
func New(opts Options) (*Form, error) {
	if err := opts.Rules.Check(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f := &Form{
		mode:          opts.Mode,
		onError:       opts.OnError,
		submitInvalid: opts.SubmitInvalid,
		logger:        logger,
		defaults:      copyValues(opts.DefaultValues),
		values:        copyValues(opts.DefaultValues),
		baseline:      copyValues(opts.DefaultValues),
		errors:        map[string]validation.FieldError{},
		touched:       map[string]bool{},
		rules:         opts.Rules.Clone(),
		versions:      map[string]uint64{},
		subs:          map[int]func(State){},
	}
	return f, nil
}

// Mode returns the validation mode.
func (f *Form) Mode() Mode { return f.mode }

// Register returns the binding for name. When rules are given the last one
// replaces the field's rule set for the lifetime of the form.
func (f *Form) Register(name string, rules ...validation.Rules) (*Binding, error) {
	if name == "" {
		return nil, ErrEmptyFieldName
	}
	if len(rules) > 0 {
		r := rules[len(rules)-1]
		if err := r.Check(); err != nil {
			return nil, fmt.Errorf("register %q: %w", name, err)
		}
		f.mu.Lock()
		f.rules[name] = r
		f.mu.Unlock()
	}
	return &Binding{form: f, name: name}, nil
}

// SetValue stores value for name without validating.
func (f *Form) SetValue(name string, value any) {
	f.update(func() { f.setLocked(name, value) })
}

// update applies fn under the lock and publishes the resulting snapshot.
func (f *Form) update(fn func()) {
	f.publish(f.mutate(fn))
}

func (f *Form) mutate(fn func()) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
	return f.snapshotLocked()
}

func (f *Form) setLocked(name string, value any) {
	f.values[name] = value
	f.versions[name]++
}

// Value returns the current value of name.
func (f *Form) Value(name string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Values returns a copy of the whole value bag.
func (f *Form) Values() validation.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyValues(f.values)
}

// Watch returns the live value of name.
func (f *Form) Watch(name string) any { return f.Value(name) }

// WatchAll returns the live value bag.
func (f *Form) WatchAll() validation.Values { return f.Values() }

// Trigger validates the named fields, or the whole form when no name is
// given, and reports whether the targeted scope is error free. Validating
// single fields leaves other fields' errors untouched; validating the whole
// form replaces the error map.
func (f *Form) Trigger(ctx context.Context, names ...string) bool {
	if len(names) == 0 {
		return f.triggerAll(ctx)
	}
	ok := true
	for _, name := range names {
		if !f.triggerField(ctx, name) {
			ok = false
		}
	}
	return ok
}

func (f *Form) triggerAll(ctx context.Context) bool {
	f.mu.Lock()
	values := copyValues(f.values)
	rules := f.rules.Clone()
	versions := make(map[string]uint64, len(f.versions))
	for k, v := range f.versions {
		versions[k] = v
	}
	epoch := f.epoch
	f.mu.Unlock()

	result := validation.ValidateForm(ctx, values, rules)

	snap, applied := f.applyLocked(func() bool {
		if f.epoch != epoch {
			return false
		}
		next := make(map[string]validation.FieldError, len(result))
		for name := range rules {
			if f.versions[name] != versions[name] {
				// Changed while validating; keep whatever verdict it has now.
				if fe, ok := f.errors[name]; ok {
					next[name] = fe
				}
				continue
			}
			if fe, ok := result[name]; ok {
				next[name] = fe
			}
		}
		f.errors = next
		return true
	})
	if applied {
		f.publish(snap)
	}
	return len(result) == 0
}

func (f *Form) triggerField(ctx context.Context, name string) bool {
	f.mu.Lock()
	rules, ok := f.rules[name]
	if !ok {
		f.mu.Unlock()
		return true
	}
	all := copyValues(f.values)
	version, epoch := f.versions[name], f.epoch
	f.mu.Unlock()

	fe := validation.ValidateField(ctx, all[name], rules, all)

	snap, applied := f.applyLocked(func() bool {
		if f.versions[name] != version || f.epoch != epoch {
			return false
		}
		if fe != nil {
			f.errors[name] = *fe
		} else {
			delete(f.errors, name)
		}
		return true
	})
	if applied {
		f.publish(snap)
	}
	return fe == nil
}

// applyLocked runs fn under the lock and snapshots only when fn applied a
// change.
func (f *Form) applyLocked(fn func() bool) (State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !fn() {
		return State{}, false
	}
	return f.snapshotLocked(), true
}

// change is the single path every binding adapter uses.
func (f *Form) change(ctx context.Context, name string, value any) {
	f.SetValue(name, value)
	if f.mode == ModeOnChange {
		f.triggerField(ctx, name)
	}
}

func (f *Form) blur(ctx context.Context, name string) {
	f.update(func() { f.touched[name] = true })

	if f.mode == ModeOnBlur {
		f.triggerField(ctx, name)
	}
}

// HandleSubmit returns a submit handler. The handler prevents the event's
// default action, marks the form as submitting, validates the whole form
// and calls onSubmit with the values when the form is valid. Errors and
// panics from onSubmit go to Options.OnError. IsSubmitting is always
// cleared when the handler returns.
func (f *Form) HandleSubmit(onSubmit SubmitFunc) func(ctx context.Context, ev Event) {
	return func(ctx context.Context, ev Event) {
		if ev != nil {
			ev.PreventDefault()
		}

		f.setSubmitting(true)
		defer f.setSubmitting(false)

		valid := f.Trigger(ctx)
		if !valid && !f.submitInvalid {
			return
		}

		if err := f.runSubmit(ctx, onSubmit, f.Values()); err != nil {
			if f.onError != nil {
				f.onError(err)
				return
			}
			f.logger.Warn("form submit failed", "error", err)
		}
	}
}

func (f *Form) runSubmit(ctx context.Context, onSubmit SubmitFunc, values validation.Values) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("form: submit panic: %v", r)
		}
	}()
	return onSubmit(ctx, values)
}

func (f *Form) setSubmitting(v bool) {
	f.update(func() { f.submitting = v })
}

// Reset replaces the value bag with values merged over the default values
// (or just the defaults when values is nil), clears errors and touched
// flags, and makes the result the new dirty baseline.
func (f *Form) Reset(values validation.Values) {
	f.update(func() {
		next := copyValues(f.defaults)
		for k, v := range values {
			next[k] = v
		}
		f.values = next
		f.baseline = copyValues(next)
		f.errors = map[string]validation.FieldError{}
		f.touched = map[string]bool{}
		f.submitting = false
		f.epoch++
	})
}

// SetError records fe for name without running any rule.
func (f *Form) SetError(name string, fe validation.FieldError) {
	f.update(func() { f.errors[name] = fe })
}

// ClearErrors removes the errors of the named fields, or all errors.
func (f *Form) ClearErrors(names ...string) {
	f.update(func() {
		if len(names) == 0 {
			f.errors = map[string]validation.FieldError{}
			return
		}
		for _, name := range names {
			delete(f.errors, name)
		}
	})
}

// State returns a snapshot of the form.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Subscribe calls fn with a fresh snapshot after every state transition.
// The returned function removes the subscription.
func (f *Form) Subscribe(fn func(State)) func() {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *Form) snapshotLocked() State {
	dirty := DirtyFields(f.values, f.baseline)
	isDirty := false
	for _, d := range dirty {
		if d {
			isDirty = true
			break
		}
	}
	return State{
		Values:        copyValues(f.values),
		Errors:        copyErrors(f.errors),
		TouchedFields: copyFlags(f.touched),
		DirtyFields:   dirty,
		IsValid:       len(f.errors) == 0,
		IsDirty:       isDirty,
		IsSubmitting:  f.submitting,
	}
}

func (f *Form) publish(s State) {
	f.mu.Lock()
	if len(f.subs) == 0 {
		f.mu.Unlock()
		return
	}
	subs := make([]func(State), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
