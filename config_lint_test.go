package authjwt

import (
	"testing"
	"time"
)

func TestLint_DefaultConfigNoHighWarnings(t *testing.T) {
	cfg := testConfig()
	if err := cfg.Lint().AsError(LintHigh); err != nil {
		t.Errorf("default config should not fail AsError(LintHigh): %v", err)
	}

	// Throttles are off by default.
	if !containsCode(cfg.Lint().Codes(), "rate_limits_disabled") {
		t.Error("expected rate_limits_disabled on default config")
	}
}

func TestLint_HardenedConfigMinimalWarnings(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.EnableLoginThrottle = true
	cfg.RateLimit.EnableReissueThrottle = true
	cfg.Audit.Enabled = true

	ws := cfg.Lint()
	if len(ws) != 0 {
		t.Errorf("expected no warnings, got %v", ws.Codes())
	}
}

func TestLint_LargeLeeway(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Leeway = 90 * time.Second
	if !containsCode(cfg.Lint().Codes(), "leeway_large") {
		t.Error("expected leeway_large warning")
	}
}

func TestLint_LongAccessTTL(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTTL = 30 * time.Minute
	if !containsCode(cfg.Lint().Codes(), "access_ttl_long") {
		t.Error("expected access_ttl_long warning")
	}
}

func TestLint_LongRefreshTTL(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.RefreshTTL = 30 * 24 * time.Hour
	if !containsCode(cfg.Lint().Codes(), "refresh_ttl_long") {
		t.Error("expected refresh_ttl_long warning")
	}
}

func TestLint_IssuerEmpty(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Issuer = ""
	if !containsCode(cfg.Lint().Codes(), "issuer_empty") {
		t.Error("expected issuer_empty warning")
	}
}

func TestLint_AuditBlocking(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	codes := cfg.Lint().Codes()
	if !containsCode(codes, "audit_blocking") {
		t.Error("expected audit_blocking warning")
	}
	if containsCode(codes, "audit_disabled") {
		t.Error("audit_disabled should not be reported when audit is on")
	}
}

func TestLint_SeverityAssignment(t *testing.T) {
	cfg := testConfig()
	cfg.Cookie.Secure = false
	cfg.Cookie.HTTPOnly = false
	for _, w := range cfg.Lint() {
		switch w.Code {
		case "cookie_insecure", "cookie_script_readable":
			if w.Severity != LintHigh {
				t.Errorf("%s should be HIGH, got %s", w.Code, w.Severity)
			}
		}
	}
}

func TestLint_AsError(t *testing.T) {
	cfg := testConfig()
	cfg.Cookie.HTTPOnly = false
	if err := cfg.Lint().AsError(LintHigh); err == nil {
		t.Error("expected AsError(LintHigh) to return error for a script-readable cookie")
	}
}

func TestLint_BySeverity(t *testing.T) {
	cfg := testConfig()
	cfg.Cookie.Secure = false
	ws := cfg.Lint()

	high := ws.BySeverity(LintHigh)
	if len(high) == 0 {
		t.Error("expected at least one HIGH severity warning")
	}
	for _, w := range high {
		if w.Severity < LintHigh {
			t.Errorf("BySeverity(LintHigh) returned warning with severity %s", w.Severity)
		}
	}
	if len(ws.BySeverity(LintInfo)) != len(ws) {
		t.Error("BySeverity(LintInfo) should return every warning")
	}
}

// helpers

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
