package internaldefs

import (
	portal "github.com/seatrans/portal-go"
)

// CounterDef binds a metric ID to its exported name and help text.
type CounterDef struct {
	ID   portal.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram-backed metric ID to its exported name.
type HistogramDef struct {
	ID   portal.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: portal.MetricRequestIssued, Name: "seatrans_request_issued_total", Help: "Requests issued against the portal backend."},
	{ID: portal.MetricRequestNetworkError, Name: "seatrans_request_network_error_total", Help: "Requests that failed before reaching the backend."},
	{ID: portal.MetricRequestTimeout, Name: "seatrans_request_timeout_total", Help: "Requests aborted by the client-wide deadline."},
	{ID: portal.MetricSessionExpired, Name: "seatrans_session_expired_total", Help: "Intercepted 401 responses declaring the credential dead."},
	{ID: portal.MetricLoginSuccess, Name: "seatrans_login_success_total", Help: "Successful logins."},
	{ID: portal.MetricLoginFailure, Name: "seatrans_login_failure_total", Help: "Logins rejected by the backend."},
	{ID: portal.MetricRegisterSuccess, Name: "seatrans_register_success_total", Help: "Successful customer registrations."},
	{ID: portal.MetricRegisterFailure, Name: "seatrans_register_failure_total", Help: "Registrations rejected by the backend."},
	{ID: portal.MetricRefreshSuccess, Name: "seatrans_refresh_success_total", Help: "Successful identity refreshes."},
	{ID: portal.MetricRefreshFailure, Name: "seatrans_refresh_failure_total", Help: "Identity refreshes that failed without invalidating the session."},
	{ID: portal.MetricProfileUpdateSuccess, Name: "seatrans_profile_update_success_total", Help: "Successful profile updates."},
	{ID: portal.MetricProfileUpdateFailure, Name: "seatrans_profile_update_failure_total", Help: "Failed profile updates."},
	{ID: portal.MetricLogout, Name: "seatrans_logout_total", Help: "Explicit logouts."},
	{ID: portal.MetricSessionRestored, Name: "seatrans_session_restored_total", Help: "Sessions restored from stored credentials."},
	{ID: portal.MetricRoleUnmatched, Name: "seatrans_role_unmatched_total", Help: "Profiles whose roles matched no known group."},
	{ID: portal.MetricCredentialWriteDegraded, Name: "seatrans_credential_write_degraded_total", Help: "Credential writes degraded by a failing storage backend."},
}

var HistogramDefs = []HistogramDef{
	{ID: portal.MetricRequestLatency, Name: "seatrans_request_latency_seconds", Help: "Request latency histogram."},
}

// HistogramBounds are the upper bounds of the latency buckets, in seconds,
// matching the core collector's millisecond thresholds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form the
// Prometheus exposition format requires.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
