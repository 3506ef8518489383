package authjwt

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/authjwt/internal/audit"
	"github.com/MrEthical07/authjwt/internal/flows"
	internalmetrics "github.com/MrEthical07/authjwt/internal/metrics"
)

// Principal is the authenticated identity bound to a request.
type Principal struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// Credentials is a username/password pair presented at login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator verifies credentials. Implementations return [ErrBadCredentials],
// [ErrUserDisabled] or [ErrUserDeleted] for the matching account states; any other
// error is treated as an internal failure.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Principal, error)
}

// UserLookup resolves a token subject to the current principal. It returns
// [ErrUserNotFound] when the subject no longer exists.
type UserLookup interface {
	FindBySubject(ctx context.Context, subject string) (Principal, error)
}

// LoginResult is returned by [Engine.Login] and [Engine.LoginWithProvider].
type LoginResult struct {
	Subject      string `json:"subject"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
	Role         string `json:"role"`
	Message      string `json:"message"`
	Success      bool   `json:"success"`
	Provider     string `json:"provider,omitempty"`
	ProviderID   string `json:"providerId,omitempty"`
}

// ReissueResult is returned by [Engine.Reissue].
type ReissueResult struct {
	Subject      string `json:"subject"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
	Role         string `json:"role"`
}

// GateDecision is the terminal state of one gate evaluation.
type GateDecision = flows.GateDecision

const (
	// GatePassThrough lets a request without a bearer credential continue anonymously.
	GatePassThrough = flows.GatePassThrough
	// GateContinue lets the request continue with [GateResult.Principal] bound.
	GateContinue = flows.GateContinue
	// GateReject short-circuits the request with [GateResult.Err].
	GateReject = flows.GateReject
)

// GateResult is returned by [Engine.Authenticate].
type GateResult struct {
	Decision  GateDecision
	Principal Principal
	// Err is non-nil only for GateReject and classifies with [KindOf].
	Err error
}

// Authenticated reports whether the request carries a verified principal.
func (r GateResult) Authenticated() bool {
	return r.Decision == GateContinue
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON-encoded event per line to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink returns a [ChannelSink] with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a counter or histogram in [MetricsSnapshot].
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess          = internalmetrics.MetricLoginSuccess
	MetricLoginFailure          = internalmetrics.MetricLoginFailure
	MetricLoginRateLimited      = internalmetrics.MetricLoginRateLimited
	MetricProviderLogin         = internalmetrics.MetricProviderLogin
	MetricReissueSuccess        = internalmetrics.MetricReissueSuccess
	MetricReissueFailure        = internalmetrics.MetricReissueFailure
	MetricReissueReplayRejected = internalmetrics.MetricReissueReplayRejected
	MetricReissueRateLimited    = internalmetrics.MetricReissueRateLimited
	MetricLogout                = internalmetrics.MetricLogout
	MetricAccessTokenRevoked    = internalmetrics.MetricAccessTokenRevoked
	MetricGateAuthenticated     = internalmetrics.MetricGateAuthenticated
	MetricGatePassThrough       = internalmetrics.MetricGatePassThrough
	MetricGateRejected          = internalmetrics.MetricGateRejected
	MetricGateBlacklisted       = internalmetrics.MetricGateBlacklisted
	MetricStoreFailure          = internalmetrics.MetricStoreFailure
	// MetricGateLatency is the histogram of gate evaluation latency.
	MetricGateLatency = internalmetrics.MetricGateLatency
)

// Metrics holds lock-free counters and the optional gate latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false every
// operation is a no-op.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}
