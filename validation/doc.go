// Package validation turns declarative per-field rule sets into pass/fail
// verdicts with user-facing messages.
//
// # Rule evaluation
//
// Each field is checked in a fixed order and the first failing rule wins:
// required, then the shape-specific structural rules (length and pattern for
// strings, bounds for numbers), then the Validate callback, then the Custom
// callback which also sees the whole value bag.
//
// # Architecture boundaries
//
// The package is pure: it owns no state, performs no I/O, and never returns a
// Go error for a failed field. Failures are always data ([FieldError]).
// Callback panics and errors are coerced into an "unknown" FieldError.
//
// # What this package must NOT do
//
//   - Import form, auth, or any storage package.
//   - Guess the shape of a rule set that mixes string and number constraints;
//     such rule sets are rejected by [Rules.Check].
package validation
