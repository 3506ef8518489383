package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/authjwt/jwt"
	"github.com/MrEthical07/authjwt/session"
)

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Login   LoginDeps
	Reissue ReissueDeps
	Logout  LogoutDeps
	Gate    GateDeps
}

// Codec is the token surface the flows depend on. *jwt.Manager satisfies it.
type Codec interface {
	Issue(category jwt.Category, subject, role, tokenID string, ttl time.Duration) (string, error)
	Decode(token string) (*jwt.Claims, error)
	RemainingTTL(token string) time.Duration
	RevocationTTL(token string) time.Duration
}

// Registry is the session surface the flows depend on. *session.Registry
// satisfies it.
type Registry interface {
	CreateRefreshRecord(ctx context.Context, subject, role, tokenID string, ttl time.Duration) error
	RedeemRefreshRecord(ctx context.Context, subject, tokenID string) (*session.RefreshRecord, error)
	RotateRefresh(ctx context.Context, subject, oldTokenID, newTokenID, role string, ttl time.Duration) error
	RevokeAccessToken(ctx context.Context, rawToken string, remainingTTL time.Duration) error
	IsBlacklisted(ctx context.Context, rawToken string) (bool, error)
	DeleteRefreshRecord(ctx context.Context, subject, tokenID string) error
}
