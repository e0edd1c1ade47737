// Package authdemo wires the auth session stack into one [Engine].
//
// A [Builder] turns a [Config] into an Engine holding the key-value
// backend, the mock store, the two-stage auth client, the session
// controller and the feature forms. Every finished session action feeds
// [Metrics] and, when enabled, an async audit trail.
//
// The Engine can also host the demo backend (see package server) so the
// primary HTTP stage has something to talk to.
package authdemo
