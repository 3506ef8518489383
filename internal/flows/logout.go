package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authjwt/jwt"
)

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	Codec    Codec
	Registry Registry
}

// LogoutResult reports what each revocation step did.
type LogoutResult struct {
	Subject       string
	Revoked       bool
	RecordDeleted bool
	Err           error
}

// RunLogout blacklists the access token for as long as it would still decode and
// deletes the refresh record named by the refresh token's own claims. The two steps are
// attempted independently; a missing or garbled token only skips its own step.
func RunLogout(ctx context.Context, accessToken, refreshToken string, deps LogoutDeps) LogoutResult {
	var (
		res  LogoutResult
		errs []error
	)

	if accessToken != "" {
		if claims, err := deps.Codec.Decode(accessToken); err == nil && claims.Category == jwt.CategoryAccess {
			res.Subject = claims.Subject
			if ttl := deps.Codec.RevocationTTL(accessToken); ttl > 0 {
				if err := deps.Registry.RevokeAccessToken(ctx, accessToken, ttl); err != nil {
					errs = append(errs, err)
				} else {
					res.Revoked = true
				}
			}
		}
	}

	if refreshToken != "" {
		if claims, err := deps.Codec.Decode(refreshToken); err == nil && claims.Category == jwt.CategoryRefresh {
			if res.Subject == "" {
				res.Subject = claims.Subject
			}
			if err := deps.Registry.DeleteRefreshRecord(ctx, claims.Subject, claims.TokenID); err != nil {
				errs = append(errs, err)
			} else {
				res.RecordDeleted = true
			}
		}
	}

	res.Err = errors.Join(errs...)
	return res
}
