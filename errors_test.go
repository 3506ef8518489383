package authjwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrEthical07/authjwt/internal/rate"
	"github.com/MrEthical07/authjwt/store"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{ErrBadCredentials, KindBadCredentials},
		{fmt.Errorf("wrapped: %w", ErrUserDisabled), KindUserDisabled},
		{ErrUserDeleted, KindUserDeleted},
		{ErrUserNotFound, KindUserNotFound},
		{ErrExpiredAccessToken, KindExpiredAccessToken},
		{ErrInvalidAccessToken, KindInvalidAccessToken},
		{ErrTokenBlacklisted, KindTokenBlacklisted},
		{ErrRefreshTokenNotFound, KindRefreshTokenNotFound},
		{ErrExpiredRefreshToken, KindExpiredRefreshToken},
		{ErrInvalidRefreshTokenCategory, KindInvalidRefreshTokenCategory},
		{fmt.Errorf("%w: %w", ErrRefreshTokenNotFoundInStore, store.ErrNotFound), KindRefreshTokenNotFoundInStore},
		{rate.ErrRateLimited, KindRateLimited},
		{fmt.Errorf("get: %w", store.ErrTimeout), KindStoreTimeout},
		{store.ErrConnection, KindStoreConnectionFailure},
		{store.Classify("get", context.Canceled), KindInternalError},
		{store.ErrCommand, KindStoreCommandError},
		{errors.Join(store.ErrTimeout, store.ErrCommand), KindStoreTimeout},
		{errors.New("boom"), KindInternalError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, KindOf(tc.err), "err=%v", tc.err)
	}
}

func TestKindTableCoversEveryKind(t *testing.T) {
	kinds := []Kind{
		KindBadCredentials, KindUserDisabled, KindUserDeleted, KindUserNotFound,
		KindExpiredAccessToken, KindInvalidAccessToken, KindTokenBlacklisted,
		KindRefreshTokenNotFound, KindExpiredRefreshToken, KindInvalidRefreshTokenCategory,
		KindRefreshTokenNotFoundInStore, KindRateLimited, KindStoreConnectionFailure,
		KindStoreTimeout, KindStoreCommandError, KindInternalError,
	}
	seen := map[string]Kind{}
	for _, k := range kinds {
		_, ok := kindTable[k]
		assert.True(t, ok, "kind %s missing from table", k)
		assert.NotEmpty(t, k.Message())
		if prev, dup := seen[k.Code()]; dup {
			t.Errorf("code %s shared by %s and %s", k.Code(), prev, k)
		}
		seen[k.Code()] = k
	}
}

func TestKindHTTPMapping(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, KindBadCredentials.Status())
	assert.Equal(t, "AUTH_BAD_CREDENTIALS", KindBadCredentials.Code())
	assert.Equal(t, http.StatusForbidden, KindUserDisabled.Status())
	assert.Equal(t, "AUTH_USER_INACTIVE", KindUserDisabled.Code())
	assert.Equal(t, http.StatusNotFound, KindUserNotFound.Status())
	assert.Equal(t, "TOKEN_REFRESH_NOT_IN_STORE", KindRefreshTokenNotFoundInStore.Code())
	assert.Equal(t, http.StatusServiceUnavailable, KindStoreTimeout.Status())
	assert.Equal(t, http.StatusInternalServerError, KindStoreCommandError.Status())
	assert.Equal(t, http.StatusTooManyRequests, KindRateLimited.Status())
	assert.Equal(t, "INTERNAL_ERROR", Kind("Bogus").Code())
	assert.Equal(t, http.StatusOK, KindNone.Status())

	assert.True(t, KindStoreConnectionFailure.Infrastructure())
	assert.False(t, KindTokenBlacklisted.Infrastructure())
}
