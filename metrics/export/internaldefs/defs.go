package internaldefs

import (
	authdemo "github.com/MalcoreHardcore698/authdemo"
)

// Exported series names.
const (
	ActionsName      = "authdemo_session_actions_total"
	ActionsHelp      = "Finished session actions by operation and outcome."
	FallbackName     = "authdemo_transport_fallback_total"
	FallbackHelp     = "Requests answered by the mock backend after the primary transport failed."
	LatencyName      = "authdemo_session_action_duration_seconds"
	LatencyHelp      = "Session action latency."
	AuditDroppedName = "authdemo_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped due to dispatcher backpressure."
)

// ActionDef maps an engine counter to its op and outcome labels.
type ActionDef struct {
	ID      authdemo.MetricID
	Op      string
	Outcome string
}

var ActionDefs = []ActionDef{
	{authdemo.MetricBootstrapSuccess, "bootstrap", "success"},
	{authdemo.MetricBootstrapFailure, "bootstrap", "failure"},
	{authdemo.MetricBootstrapSuperseded, "bootstrap", "superseded"},
	{authdemo.MetricLoginSuccess, "login", "success"},
	{authdemo.MetricLoginFailure, "login", "failure"},
	{authdemo.MetricLoginSuperseded, "login", "superseded"},
	{authdemo.MetricRegisterSuccess, "register", "success"},
	{authdemo.MetricRegisterFailure, "register", "failure"},
	{authdemo.MetricRegisterSuperseded, "register", "superseded"},
	{authdemo.MetricResetSuccess, "reset_password", "success"},
	{authdemo.MetricResetFailure, "reset_password", "failure"},
	{authdemo.MetricLogout, "logout", "success"},
}

// HistogramBounds are the upper bounds in seconds of all but the last
// (+Inf) latency bucket.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// CumulativeBuckets turns per-bucket counts into cumulative counts. Missing
// entries count as zero.
func CumulativeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(out); i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
