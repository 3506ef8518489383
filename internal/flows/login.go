package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/authjwt/internal/rate"
	"github.com/MrEthical07/authjwt/jwt"
)

// LoginFailureKind classifies login flow failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureRateLimited
	LoginFailureAuthenticate
	LoginFailureTokenID
	LoginFailureIssue
	LoginFailurePersist
)

// LoginResult carries either the issued token pair or failure metadata.
type LoginResult struct {
	Failure      LoginFailureKind
	Err          error
	Subject      string
	Role         string
	TokenID      string
	AccessToken  string
	RefreshToken string
	// LimiterErr is a throttle bookkeeping failure that did not change the outcome.
	LimiterErr error
}

type LoginRateLimiter interface {
	CheckLogin(ctx context.Context, username string) error
	IncrementLogin(ctx context.Context, username string) error
	ResetLogin(ctx context.Context, username string) error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Authenticate verifies credentials and returns the principal's subject and role.
	Authenticate func(ctx context.Context, username, password string) (string, string, error)
	// CountsAsFailedAttempt reports whether an authenticate error should be charged
	// against the login budget. Nil charges every error.
	CountsAsFailedAttempt func(error) bool
	NewTokenID            func() (string, error)
	Warn                  func(string, ...any)

	Codec       Codec
	Registry    Registry
	RateLimiter LoginRateLimiter
}

// RunLogin verifies credentials and issues a fresh access/refresh pair.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) LoginResult {
	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckLogin(ctx, username); err != nil {
			return LoginResult{Failure: LoginFailureRateLimited, Err: err}
		}
	}

	subject, role, err := deps.Authenticate(ctx, username, password)
	if err != nil {
		if deps.RateLimiter != nil && (deps.CountsAsFailedAttempt == nil || deps.CountsAsFailedAttempt(err)) {
			rlErr := deps.RateLimiter.IncrementLogin(ctx, username)
			switch {
			case errors.Is(rlErr, rate.ErrRateLimited):
				return LoginResult{Failure: LoginFailureRateLimited, Err: errors.Join(rlErr, err)}
			case rlErr != nil:
				if deps.Warn != nil {
					deps.Warn("authjwt: login limiter increment failed", "error", rlErr)
				}
				return LoginResult{Failure: LoginFailureAuthenticate, Err: err, LimiterErr: rlErr}
			}
		}
		return LoginResult{Failure: LoginFailureAuthenticate, Err: err}
	}

	res := RunIssuePair(ctx, subject, role, deps)
	if res.Failure != LoginFailureNone {
		return res
	}

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.ResetLogin(ctx, username); err != nil && deps.Warn != nil {
			deps.Warn("authjwt: login limiter reset failed", "error", err)
		}
	}
	return res
}

// RunIssuePair issues an access/refresh pair sharing a new token id for an already
// authenticated principal and persists the refresh record.
func RunIssuePair(ctx context.Context, subject, role string, deps LoginDeps) LoginResult {
	tokenID, err := deps.NewTokenID()
	if err != nil {
		return LoginResult{Failure: LoginFailureTokenID, Err: err, Subject: subject, Role: role}
	}

	access, refresh, err := issuePair(deps.Codec, subject, role, tokenID, deps.AccessTTL, deps.RefreshTTL)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, Subject: subject, Role: role, TokenID: tokenID}
	}

	if err := deps.Registry.CreateRefreshRecord(ctx, subject, role, tokenID, deps.RefreshTTL); err != nil {
		return LoginResult{Failure: LoginFailurePersist, Err: err, Subject: subject, Role: role, TokenID: tokenID}
	}

	return LoginResult{
		Subject:      subject,
		Role:         role,
		TokenID:      tokenID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}

func issuePair(codec Codec, subject, role, tokenID string, accessTTL, refreshTTL time.Duration) (string, string, error) {
	access, err := codec.Issue(jwt.CategoryAccess, subject, role, tokenID, accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := codec.Issue(jwt.CategoryRefresh, subject, role, tokenID, refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
