package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/authjwt/jwt"
	"github.com/MrEthical07/authjwt/session"
)

// ReissueFailureKind classifies reissue flow failures for root-level mapping.
type ReissueFailureKind int

const (
	ReissueFailureNone ReissueFailureKind = iota
	ReissueFailureMissing
	ReissueFailureExpired
	ReissueFailureInvalidCategory
	ReissueFailureRateLimited
	ReissueFailureNotInStore
	ReissueFailureStore
	ReissueFailureTokenID
	ReissueFailureIssue
)

// ReissueResult carries either the rotated token pair or failure metadata.
type ReissueResult struct {
	Failure         ReissueFailureKind
	Err             error
	Subject         string
	Role            string
	PreviousTokenID string
	TokenID         string
	AccessToken     string
	RefreshToken    string
}

type ReissueRateLimiter interface {
	CheckReissue(ctx context.Context, subject string) error
}

// ReissueDeps captures reissue dependencies.
type ReissueDeps struct {
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	NewTokenID  func() (string, error)
	Codec       Codec
	Registry    Registry
	RateLimiter ReissueRateLimiter
}

// RunReissue redeems a refresh token for a new pair. Subject and token id come only
// from the verified token. The old record is swapped for the new one atomically, so
// a refresh token can be redeemed at most once.
func RunReissue(ctx context.Context, refreshToken string, deps ReissueDeps) ReissueResult {
	if refreshToken == "" {
		return ReissueResult{Failure: ReissueFailureMissing}
	}

	claims, err := deps.Codec.Decode(refreshToken)
	if err != nil {
		if jwt.KindOf(err) == jwt.DecodeExpired {
			return ReissueResult{Failure: ReissueFailureExpired, Err: err}
		}
		return ReissueResult{Failure: ReissueFailureInvalidCategory, Err: err}
	}
	if claims.Category != jwt.CategoryRefresh {
		return ReissueResult{Failure: ReissueFailureInvalidCategory, Subject: claims.Subject}
	}

	subject, oldTokenID := claims.Subject, claims.TokenID
	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckReissue(ctx, subject); err != nil {
			return ReissueResult{Failure: ReissueFailureRateLimited, Err: err, Subject: subject, PreviousTokenID: oldTokenID}
		}
	}

	record, err := deps.Registry.RedeemRefreshRecord(ctx, subject, oldTokenID)
	if err != nil {
		return ReissueResult{Failure: storeFailure(err), Err: err, Subject: subject, PreviousTokenID: oldTokenID}
	}

	newTokenID, err := deps.NewTokenID()
	if err != nil {
		return ReissueResult{Failure: ReissueFailureTokenID, Err: err, Subject: subject, PreviousTokenID: oldTokenID}
	}

	role := record.Role
	access, refresh, err := issuePair(deps.Codec, subject, role, newTokenID, deps.AccessTTL, deps.RefreshTTL)
	if err != nil {
		return ReissueResult{Failure: ReissueFailureIssue, Err: err, Subject: subject, PreviousTokenID: oldTokenID}
	}

	if err := deps.Registry.RotateRefresh(ctx, subject, oldTokenID, newTokenID, role, deps.RefreshTTL); err != nil {
		return ReissueResult{Failure: storeFailure(err), Err: err, Subject: subject, PreviousTokenID: oldTokenID}
	}

	return ReissueResult{
		Subject:         subject,
		Role:            role,
		PreviousTokenID: oldTokenID,
		TokenID:         newTokenID,
		AccessToken:     access,
		RefreshToken:    refresh,
	}
}

func storeFailure(err error) ReissueFailureKind {
	if errors.Is(err, session.ErrRefreshRecordNotFound) {
		return ReissueFailureNotInStore
	}
	return ReissueFailureStore
}
