package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/authjwt/store"
)

const (
	refreshKeyPrefix   = "refresh:"
	blacklistKeyPrefix = "blacklist:"
	blacklistMarker    = "revoked"
)

var (
	// ErrRefreshRecordNotFound is returned when no live record exists for the pair.
	ErrRefreshRecordNotFound = errors.New("refresh record not found")
	// ErrRefreshRecordCorrupt is returned when a stored record cannot be decoded.
	ErrRefreshRecordCorrupt = errors.New("refresh record corrupt")
	// ErrInvalidKeyPart is returned for empty identifiers or token ids containing ':'.
	ErrInvalidKeyPart = errors.New("invalid refresh record key part")
)

// Registry owns refresh records and the access-token blacklist on top of a
// [store.Store]. It keeps no in-memory state and is safe for concurrent use.
type Registry struct {
	store store.Store
	now   func() time.Time
}

// NewRegistry creates a Registry backed by s. A nil now selects time.Now.
func NewRegistry(s store.Store, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{store: s, now: now}
}

// RefreshKey returns the store key for a refresh record.
func RefreshKey(subject, tokenID string) string {
	return refreshKeyPrefix + subject + ":" + tokenID
}

// BlacklistKey returns the store key for a revoked access token.
func BlacklistKey(rawToken string) string {
	return blacklistKeyPrefix + rawToken
}

func validateKeyParts(subject, tokenID string) error {
	if subject == "" || tokenID == "" || strings.Contains(tokenID, ":") {
		return ErrInvalidKeyPart
	}
	return nil
}

func (r *Registry) newRecord(subject, role, tokenID string, ttl time.Duration) (string, error) {
	now := r.now()
	encoded, err := Encode(&RefreshRecord{
		TokenID:   tokenID,
		Subject:   subject,
		Role:      role,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// CreateRefreshRecord writes a record under refresh:{subject}:{tokenID} with ttl.
//
//	Performance: 1 SET.
func (r *Registry) CreateRefreshRecord(ctx context.Context, subject, role, tokenID string, ttl time.Duration) error {
	if err := validateKeyParts(subject, tokenID); err != nil {
		return err
	}
	value, err := r.newRecord(subject, role, tokenID, ttl)
	if err != nil {
		return err
	}
	return r.store.SetWithTTL(ctx, RefreshKey(subject, tokenID), value, ttl)
}

// RedeemRefreshRecord reads the record for (subject, tokenID) without deleting it.
// Callers rotate or delete it once the presented token has been validated.
//
//	Performance: 1 GET.
func (r *Registry) RedeemRefreshRecord(ctx context.Context, subject, tokenID string) (*RefreshRecord, error) {
	if err := validateKeyParts(subject, tokenID); err != nil {
		return nil, err
	}
	raw, err := r.store.Get(ctx, RefreshKey(subject, tokenID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrRefreshRecordNotFound, err)
		}
		return nil, err
	}

	rec, err := Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshRecordCorrupt, err)
	}
	if rec.Subject != subject || rec.TokenID != tokenID {
		return nil, fmt.Errorf("%w: key/record mismatch", ErrRefreshRecordCorrupt)
	}
	return rec, nil
}

// RotateRefresh replaces the record under oldTokenID with a fresh one under
// newTokenID. The delete and write run as one store operation, so among concurrent
// rotations of the same record exactly one succeeds and the rest get
// [ErrRefreshRecordNotFound].
//
//	Performance: 1 EVALSHA.
func (r *Registry) RotateRefresh(ctx context.Context, subject, oldTokenID, newTokenID, role string, ttl time.Duration) error {
	if err := validateKeyParts(subject, oldTokenID); err != nil {
		return err
	}
	if err := validateKeyParts(subject, newTokenID); err != nil {
		return err
	}
	if oldTokenID == newTokenID {
		return fmt.Errorf("%w: rotation requires a new token id", ErrInvalidKeyPart)
	}
	value, err := r.newRecord(subject, role, newTokenID, ttl)
	if err != nil {
		return err
	}

	err = r.store.Swap(ctx, RefreshKey(subject, oldTokenID), RefreshKey(subject, newTokenID), value, ttl)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrRefreshRecordNotFound, err)
	}
	return err
}

// RevokeAccessToken blacklists rawToken for remainingTTL. A non-positive remainingTTL
// is a successful no-op since an expired token has nothing left to block.
//
//	Performance: 1 SET, or none.
func (r *Registry) RevokeAccessToken(ctx context.Context, rawToken string, remainingTTL time.Duration) error {
	if remainingTTL <= 0 {
		return nil
	}
	if rawToken == "" {
		return ErrInvalidKeyPart
	}
	return r.store.SetWithTTL(ctx, BlacklistKey(rawToken), blacklistMarker, remainingTTL)
}

// IsBlacklisted reports whether rawToken has been revoked.
//
//	Performance: 1 EXISTS.
func (r *Registry) IsBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	return r.store.Exists(ctx, BlacklistKey(rawToken))
}

// DeleteRefreshRecord removes the record for (subject, tokenID). Deleting an absent
// record succeeds.
//
//	Performance: 1 DEL.
func (r *Registry) DeleteRefreshRecord(ctx context.Context, subject, tokenID string) error {
	if err := validateKeyParts(subject, tokenID); err != nil {
		return err
	}
	return r.store.Delete(ctx, RefreshKey(subject, tokenID))
}
