// Package otel publishes engine metrics as OpenTelemetry observable
// instruments.
//
// The caller supplies the Meter. One callback reads the engine snapshot on
// each collection: session actions are a single counter with op and
// outcome attributes, and latency buckets are a cumulative gauge with an
// le attribute.
package otel
