package form

import (
	"context"

	"github.com/MalcoreHardcore698/authdemo/validation"
)

// AutofillAnimation is the animation name browsers report when they
// autofill an input.
const AutofillAnimation = "onAutoFillStart"

// Binding connects one input control to its form. Every event adapter
// stores the control's post-event value and re-validates the field when
// the form's mode asks for it.
type Binding struct {
	form *Form
	name string
}

// Name returns the field name.
func (b *Binding) Name() string { return b.name }

// Value returns the live field value, or "" when it was never set.
func (b *Binding) Value() any {
	v := b.form.Value(b.name)
	if v == nil {
		return ""
	}
	return v
}

// OnChange handles a change event.
func (b *Binding) OnChange(ctx context.Context, value any) {
	b.form.change(ctx, b.name, value)
}

// OnInput handles an input event.
func (b *Binding) OnInput(ctx context.Context, value any) {
	b.form.change(ctx, b.name, value)
}

// OnPaste handles a paste; value is the control's content after the paste
// has been applied.
func (b *Binding) OnPaste(ctx context.Context, value any) {
	b.form.change(ctx, b.name, value)
}

// OnCompositionEnd handles the end of an IME composition.
func (b *Binding) OnCompositionEnd(ctx context.Context, value any) {
	b.form.change(ctx, b.name, value)
}

// OnAutofill handles an animation-start event and applies value only for
// the browser autofill animation.
func (b *Binding) OnAutofill(ctx context.Context, animation string, value any) {
	if animation != AutofillAnimation {
		return
	}
	b.form.change(ctx, b.name, value)
}

// OnTransitionEnd picks up values filled in without an input event.
func (b *Binding) OnTransitionEnd(ctx context.Context, value any) {
	b.applyIfChanged(ctx, value)
}

// OnFocus picks up values filled in before the control gained focus.
func (b *Binding) OnFocus(ctx context.Context, value any) {
	b.applyIfChanged(ctx, value)
}

func (b *Binding) applyIfChanged(ctx context.Context, value any) {
	if s, ok := value.(string); (ok && s == "") || value == nil {
		return
	}
	if Equal(value, b.form.Value(b.name)) {
		return
	}
	b.form.change(ctx, b.name, value)
}

// OnBlur marks the field touched and validates it in blur mode.
func (b *Binding) OnBlur(ctx context.Context) {
	b.form.blur(ctx, b.name)
}

// Error returns the field's current error.
func (b *Binding) Error() (validation.FieldError, bool) {
	b.form.mu.Lock()
	defer b.form.mu.Unlock()
	fe, ok := b.form.errors[b.name]
	return fe, ok
}

// Touched reports whether the field has been blurred since the last reset.
func (b *Binding) Touched() bool {
	b.form.mu.Lock()
	defer b.form.mu.Unlock()
	return b.form.touched[b.name]
}

// Dirty reports whether the field differs from the baseline.
func (b *Binding) Dirty() bool {
	b.form.mu.Lock()
	defer b.form.mu.Unlock()
	return !Equal(b.form.values[b.name], b.form.baseline[b.name])
}
