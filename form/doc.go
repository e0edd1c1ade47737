// Package form owns the state of one input form: field values, per-field
// errors, touched and dirty tracking, and the submission lifecycle.
//
// A [Form] consumes the validation package and hands each input control a
// [Binding], the value plus event adapters the control calls into. Every
// adapter funnels into the same set-value path and re-validates according to
// the form's [Mode].
//
// Forms are safe for concurrent use. Validation results are applied only if
// the validated field has not changed (and the form has not been reset)
// since validation started, so a slow validator never overwrites a newer
// verdict.
package form
