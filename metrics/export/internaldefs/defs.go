package internaldefs

import (
	"github.com/MrEthical07/authjwt"
)

// Prefix is prepended to every exported metric name.
const Prefix = "authjwt_"

// CounterDef names one engine counter.
type CounterDef struct {
	ID   authjwt.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   authjwt.MetricID
	Name string
	Help string
}

// Bucket is one histogram upper bound, rendered for Prometheus (Bound) and as
// an instrument-name suffix for OTel (Suffix).
type Bucket struct {
	Bound  string
	Suffix string
}

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: authjwt.MetricLoginSuccess, Name: Prefix + "login_success_total", Help: "Successful password logins."},
	{ID: authjwt.MetricLoginFailure, Name: Prefix + "login_failure_total", Help: "Failed login attempts."},
	{ID: authjwt.MetricLoginRateLimited, Name: Prefix + "login_rate_limited_total", Help: "Login attempts rejected by the throttle."},
	{ID: authjwt.MetricProviderLogin, Name: Prefix + "provider_login_total", Help: "Token pairs issued for provider-authenticated principals."},
	{ID: authjwt.MetricReissueSuccess, Name: Prefix + "reissue_success_total", Help: "Successful refresh token rotations."},
	{ID: authjwt.MetricReissueFailure, Name: Prefix + "reissue_failure_total", Help: "Failed reissue attempts."},
	{ID: authjwt.MetricReissueReplayRejected, Name: Prefix + "reissue_replay_rejected_total", Help: "Reissue attempts with an already rotated or revoked refresh token."},
	{ID: authjwt.MetricReissueRateLimited, Name: Prefix + "reissue_rate_limited_total", Help: "Reissue attempts rejected by the throttle."},
	{ID: authjwt.MetricLogout, Name: Prefix + "logout_total", Help: "Logout operations."},
	{ID: authjwt.MetricAccessTokenRevoked, Name: Prefix + "access_token_revoked_total", Help: "Access tokens added to the blacklist."},
	{ID: authjwt.MetricGateAuthenticated, Name: Prefix + "gate_authenticated_total", Help: "Requests authenticated by the gate."},
	{ID: authjwt.MetricGatePassThrough, Name: Prefix + "gate_pass_through_total", Help: "Requests without a bearer credential."},
	{ID: authjwt.MetricGateRejected, Name: Prefix + "gate_rejected_total", Help: "Requests rejected by the gate."},
	{ID: authjwt.MetricGateBlacklisted, Name: Prefix + "gate_blacklisted_total", Help: "Requests presenting a revoked access token."},
	{ID: authjwt.MetricStoreFailure, Name: Prefix + "store_failure_total", Help: "Token store operations that failed."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authjwt.MetricGateLatency, Name: Prefix + "gate_latency_seconds", Help: "Gate evaluation latency."},
}

// AuditDroppedName is the counter of audit events dropped under backpressure.
const AuditDroppedName = Prefix + "audit_dropped_total"

// Buckets matches the latency buckets kept by the engine.
var Buckets = [8]Bucket{
	{"0.005", "0_005"},
	{"0.01", "0_01"},
	{"0.025", "0_025"},
	{"0.05", "0_05"},
	{"0.1", "0_1"},
	{"0.25", "0_25"},
	{"0.5", "0_5"},
	{"+Inf", "inf"},
}

// Cumulative pads raw to the bucket count and returns running totals. The last
// element is the sample count.
func Cumulative(raw []uint64) [len(Buckets)]uint64 {
	var out [len(Buckets)]uint64
	var running uint64
	for i := range out {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
