// Package prometheus exposes engine metrics through a client_golang
// Collector.
//
// The collector reads MetricsSnapshot on every scrape and emits
// authdemo_session_actions_total{op,outcome},
// authdemo_transport_fallback_total, authdemo_audit_dropped_total and the
// authdemo_session_action_duration_seconds histogram. Nothing is
// registered globally.
package prometheus
