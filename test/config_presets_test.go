//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	"github.com/MrEthical07/authjwt"
)

func TestDefaultConfigWithSecretValidates(t *testing.T) {
	cfg := authjwt.DefaultConfig()
	cfg.JWT.Secret = testSecret
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if err := cfg.Lint().AsError(authjwt.LintHigh); err != nil {
		t.Fatalf("default config has high-severity lint: %v", err)
	}
}

func TestHardenedConfigIsLintClean(t *testing.T) {
	cfg := authjwt.DefaultConfig()
	cfg.JWT.Secret = testSecret
	cfg.JWT.Issuer = "authjwt"
	cfg.JWT.AccessTTL = 5 * time.Minute
	cfg.RateLimit.EnableLoginThrottle = true
	cfg.RateLimit.EnableReissueThrottle = true
	cfg.Audit.Enabled = true

	if err := cfg.Validate(); err != nil {
		t.Fatalf("hardened config: %v", err)
	}
	if ws := cfg.Lint().BySeverity(authjwt.LintWarn); len(ws) != 0 {
		t.Fatalf("unexpected warnings: %v", ws.Codes())
	}
}
