package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/authjwt/jwt"
)

const bearerPrefix = "Bearer "

// GateDecision is the terminal state of a gate evaluation.
type GateDecision int

const (
	// GatePassThrough lets the request continue unauthenticated.
	GatePassThrough GateDecision = iota
	// GateContinue lets the request continue with a bound principal.
	GateContinue
	// GateReject short-circuits the request.
	GateReject
)

func (d GateDecision) String() string {
	switch d {
	case GatePassThrough:
		return "pass_through"
	case GateContinue:
		return "continue"
	case GateReject:
		return "reject"
	default:
		return "unknown"
	}
}

// GateFailureKind classifies gate rejections for root-level mapping.
type GateFailureKind int

const (
	GateFailureNone GateFailureKind = iota
	GateFailureExpired
	GateFailureInvalid
	GateFailureBlacklisted
	GateFailureStore
	GateFailureUserNotFound
	GateFailureLookup
)

// GateResult is the outcome of one gate evaluation.
type GateResult struct {
	Decision GateDecision
	Failure  GateFailureKind
	Err      error
	Subject  string
	Role     string
	TokenID  string
}

type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, rawToken string) (bool, error)
}

// GateDeps captures gate dependencies.
type GateDeps struct {
	Codec     Codec
	Blacklist BlacklistChecker
	// FindUser resolves the current role of subject. It returns UserNotFound (or an
	// error wrapping it) when the subject no longer exists.
	FindUser     func(ctx context.Context, subject string) (string, error)
	UserNotFound error
}

// BearerToken extracts the token from an Authorization header value. ok is false
// when the header does not use the Bearer scheme.
func BearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), true
}

// RunGate evaluates an Authorization header value against the access-token rules:
// expiry, signature and category, blacklist, then user lookup.
func RunGate(ctx context.Context, authorization string, deps GateDeps) GateResult {
	raw, ok := BearerToken(authorization)
	if !ok {
		return GateResult{Decision: GatePassThrough}
	}
	if raw == "" {
		return GateResult{Decision: GateReject, Failure: GateFailureInvalid}
	}

	claims, err := deps.Codec.Decode(raw)
	if err != nil {
		if jwt.KindOf(err) == jwt.DecodeExpired {
			return GateResult{Decision: GateReject, Failure: GateFailureExpired, Err: err}
		}
		return GateResult{Decision: GateReject, Failure: GateFailureInvalid, Err: err}
	}
	if claims.Category != jwt.CategoryAccess {
		return GateResult{Decision: GateReject, Failure: GateFailureInvalid, Subject: claims.Subject}
	}

	blacklisted, err := deps.Blacklist.IsBlacklisted(ctx, raw)
	if err != nil {
		return GateResult{Decision: GateReject, Failure: GateFailureStore, Err: err, Subject: claims.Subject}
	}
	if blacklisted {
		return GateResult{Decision: GateReject, Failure: GateFailureBlacklisted, Subject: claims.Subject, TokenID: claims.TokenID}
	}

	role := claims.Role
	if deps.FindUser != nil {
		found, err := deps.FindUser(ctx, claims.Subject)
		if err != nil {
			if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
				return GateResult{Decision: GateReject, Failure: GateFailureUserNotFound, Err: err, Subject: claims.Subject}
			}
			return GateResult{Decision: GateReject, Failure: GateFailureLookup, Err: err, Subject: claims.Subject}
		}
		if found != "" {
			role = found
		}
	}

	return GateResult{
		Decision: GateContinue,
		Subject:  claims.Subject,
		Role:     role,
		TokenID:  claims.TokenID,
	}
}
