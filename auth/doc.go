// Package auth owns the client-side session.
//
// # Architecture boundaries
//
// [Service] pairs an authapi.Client with the persisted token.
// [Controller] is the session state machine built on it: a reducer over
// [State], a generation counter that keeps late results of superseded
// actions from overwriting newer state, and subscriptions for re-rendering.
// The login, registration and forgot-password forms in forms.go drive the
// controller from validated form values and report failures to a
// [Notifier].
//
// # What this package must NOT do
//
//   - Surface raw error text to users. [Error.Message] is either a known
//     user-facing message or the operation's generic fallback.
//   - Persist a token whose login result was discarded.
package auth
