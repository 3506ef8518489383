package authjwt

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks a [LintWarning].
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "info"
	case LintWarn:
		return "warn"
	case LintHigh:
		return "high"
	default:
		return "unknown"
	}
}

// LintWarning is a configuration that passes [Config.Validate] but is likely a
// mistake in production.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings is the ordered result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (ws LintWarnings) BySeverity(min LintSeverity) LintWarnings {
	var out LintWarnings
	for _, w := range ws {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError folds the warnings at or above min into one error, or nil when there are none.
func (ws LintWarnings) AsError(min LintSeverity) error {
	filtered := ws.BySeverity(min)
	if len(filtered) == 0 {
		return nil
	}
	parts := make([]string, 0, len(filtered))
	for _, w := range filtered {
		parts = append(parts, fmt.Sprintf("%s(%s): %s", w.Code, w.Severity, w.Message))
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint reports risky but valid settings. It never fails; call [Config.Validate] for hard errors.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if c.JWT.Leeway > 30*time.Second {
		add("leeway_large", LintWarn, "JWT Leeway %s widens the replay window of expired tokens", c.JWT.Leeway)
	}
	if c.JWT.AccessTTL > 15*time.Minute {
		add("access_ttl_long", LintWarn, "JWT AccessTTL %s keeps revoked sessions usable longer", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL > 7*24*time.Hour {
		add("refresh_ttl_long", LintInfo, "JWT RefreshTTL %s exceeds one week", c.JWT.RefreshTTL)
	}
	if c.JWT.Issuer == "" {
		add("issuer_empty", LintInfo, "JWT Issuer is empty; tokens from other services sharing the secret are accepted")
	}
	if !c.RateLimit.EnableLoginThrottle && !c.RateLimit.EnableReissueThrottle {
		add("rate_limits_disabled", LintWarn, "login and reissue throttles are both disabled")
	}
	if !c.Cookie.Secure {
		add("cookie_insecure", LintHigh, "refresh cookie is sent over plain HTTP")
	}
	if !c.Cookie.HTTPOnly {
		add("cookie_script_readable", LintHigh, "refresh cookie is readable from scripts")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "audit events are not emitted")
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		add("audit_blocking", LintWarn, "a slow audit sink blocks request handling")
	}
	if c.Store.OperationTimeout > 2*time.Second {
		add("store_timeout_long", LintWarn, "Store OperationTimeout %s lets a stalled store hold requests", c.Store.OperationTimeout)
	}

	return ws
}
