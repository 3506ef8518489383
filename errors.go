package authjwt

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/authjwt/internal/rate"
	"github.com/MrEthical07/authjwt/store"
)

var (
	// ErrBadCredentials is returned by an Authenticator for an unknown user or wrong password.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrUserDisabled is returned by an Authenticator for an inactive account.
	ErrUserDisabled = errors.New("user disabled")
	// ErrUserDeleted is returned by an Authenticator for a deleted account.
	ErrUserDeleted = errors.New("user deleted")
	// ErrUserNotFound is returned by a UserLookup when the subject no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrExpiredAccessToken rejects an access token past its expiry.
	ErrExpiredAccessToken = errors.New("access token expired")
	// ErrInvalidAccessToken rejects a forged, malformed or non-access token.
	ErrInvalidAccessToken = errors.New("access token invalid")
	// ErrTokenBlacklisted rejects a revoked access token.
	ErrTokenBlacklisted = errors.New("access token revoked")

	// ErrRefreshTokenNotFound is returned when no refresh token was presented.
	ErrRefreshTokenNotFound = errors.New("refresh token missing")
	// ErrExpiredRefreshToken is returned for a refresh token past its expiry.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
	// ErrInvalidRefreshTokenCategory is returned when the presented token is not a
	// valid refresh token.
	ErrInvalidRefreshTokenCategory = errors.New("refresh token invalid")
	// ErrRefreshTokenNotFoundInStore is returned when the refresh record was already
	// rotated, revoked, or never existed.
	ErrRefreshTokenNotFoundInStore = errors.New("refresh token not found in store")

	// ErrRateLimited is returned when a login or reissue budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrEngineNotReady is returned by a nil or partially built Engine.
	ErrEngineNotReady = errors.New("engine not ready")
)

// Kind is the stable, machine-readable classification of an engine error. Every
// transport maps errors through [KindOf] and renders Status, Code and Message.
type Kind string

const (
	KindNone                        Kind = ""
	KindBadCredentials              Kind = "BadCredentials"
	KindUserDisabled                Kind = "UserDisabled"
	KindUserDeleted                 Kind = "UserDeleted"
	KindUserNotFound                Kind = "UserNotFound"
	KindExpiredAccessToken          Kind = "ExpiredAccessToken"
	KindInvalidAccessToken          Kind = "InvalidAccessToken"
	KindTokenBlacklisted            Kind = "TokenBlacklisted"
	KindRefreshTokenNotFound        Kind = "RefreshTokenNotFound"
	KindExpiredRefreshToken         Kind = "ExpiredRefreshToken"
	KindInvalidRefreshTokenCategory Kind = "InvalidRefreshTokenCategory"
	KindRefreshTokenNotFoundInStore Kind = "RefreshTokenNotFoundInStore"
	KindRateLimited                 Kind = "RateLimited"
	KindStoreConnectionFailure      Kind = "StoreConnectionFailure"
	KindStoreTimeout                Kind = "StoreTimeout"
	KindStoreCommandError           Kind = "StoreCommandError"
	KindInternalError               Kind = "InternalError"
)

type kindInfo struct {
	status  int
	code    string
	message string
}

var kindTable = map[Kind]kindInfo{
	KindBadCredentials:              {http.StatusUnauthorized, "AUTH_BAD_CREDENTIALS", "invalid username or password"},
	KindUserDisabled:                {http.StatusForbidden, "AUTH_USER_INACTIVE", "account is inactive"},
	KindUserDeleted:                 {http.StatusForbidden, "AUTH_USER_DELETED", "account has been deleted"},
	KindUserNotFound:                {http.StatusNotFound, "AUTH_USER_NOT_FOUND", "user not found"},
	KindExpiredAccessToken:          {http.StatusUnauthorized, "TOKEN_EXPIRED_ACCESS", "access token has expired"},
	KindInvalidAccessToken:          {http.StatusUnauthorized, "TOKEN_INVALID_ACCESS", "access token is invalid"},
	KindTokenBlacklisted:            {http.StatusUnauthorized, "TOKEN_BLACKLISTED", "access token has been revoked"},
	KindRefreshTokenNotFound:        {http.StatusUnauthorized, "TOKEN_REFRESH_MISSING", "refresh token is missing"},
	KindExpiredRefreshToken:         {http.StatusUnauthorized, "TOKEN_EXPIRED_REFRESH", "refresh token has expired"},
	KindInvalidRefreshTokenCategory: {http.StatusUnauthorized, "TOKEN_INVALID_REFRESH", "refresh token is invalid"},
	KindRefreshTokenNotFoundInStore: {http.StatusUnauthorized, "TOKEN_REFRESH_NOT_IN_STORE", "refresh token is no longer valid"},
	KindRateLimited:                 {http.StatusTooManyRequests, "AUTH_RATE_LIMITED", "too many attempts, try again later"},
	KindStoreConnectionFailure:      {http.StatusServiceUnavailable, "STORE_CONNECTION_ERROR", "token store unavailable"},
	KindStoreTimeout:                {http.StatusServiceUnavailable, "STORE_TIMEOUT", "token store timed out"},
	KindStoreCommandError:           {http.StatusInternalServerError, "STORE_COMMAND_ERROR", "token store command failed"},
	KindInternalError:               {http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
}

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	if info, ok := kindTable[k]; ok {
		return info.status
	}
	if k == KindNone {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// Code returns the machine-readable error code for k.
func (k Kind) Code() string {
	if info, ok := kindTable[k]; ok {
		return info.code
	}
	return kindTable[KindInternalError].code
}

// Message returns the human-readable message for k.
func (k Kind) Message() string {
	if info, ok := kindTable[k]; ok {
		return info.message
	}
	return kindTable[KindInternalError].message
}

// Infrastructure reports whether k is a store-layer fault rather than an
// application-logic rejection. Callers may retry these with backoff.
func (k Kind) Infrastructure() bool {
	return k == KindStoreConnectionFailure || k == KindStoreTimeout || k == KindStoreCommandError
}

// KindOf classifies err. Application sentinels win over store failures, and
// anything unrecognized is KindInternalError.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrBadCredentials):
		return KindBadCredentials
	case errors.Is(err, ErrUserDeleted):
		return KindUserDeleted
	case errors.Is(err, ErrUserDisabled):
		return KindUserDisabled
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	case errors.Is(err, ErrExpiredAccessToken):
		return KindExpiredAccessToken
	case errors.Is(err, ErrInvalidAccessToken):
		return KindInvalidAccessToken
	case errors.Is(err, ErrTokenBlacklisted):
		return KindTokenBlacklisted
	case errors.Is(err, ErrRefreshTokenNotFound):
		return KindRefreshTokenNotFound
	case errors.Is(err, ErrExpiredRefreshToken):
		return KindExpiredRefreshToken
	case errors.Is(err, ErrInvalidRefreshTokenCategory):
		return KindInvalidRefreshTokenCategory
	case errors.Is(err, ErrRefreshTokenNotFoundInStore):
		return KindRefreshTokenNotFoundInStore
	case errors.Is(err, ErrRateLimited), errors.Is(err, rate.ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, store.ErrTimeout):
		return KindStoreTimeout
	case errors.Is(err, store.ErrConnection):
		return KindStoreConnectionFailure
	case errors.Is(err, store.ErrCommand):
		return KindStoreCommandError
	default:
		return KindInternalError
	}
}
