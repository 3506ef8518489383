package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted HS256 secret size in bytes.
const MinSecretLength = 32

// Config configures a [Manager].
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	// Secret is the shared HS256 signing key.
	Secret []byte
	// Issuer is written to and, when non-empty, required on every token.
	Issuer string
	// Leeway tolerates clock drift on exp/iat checks.
	Leeway time.Duration
	// MaxFutureIAT rejects tokens issued too far in the future. Zero selects 10 minutes.
	MaxFutureIAT time.Duration
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Manager issues and verifies signed tokens. It holds no mutable state and is safe for
// concurrent use.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("hs256 secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	cfg.Secret = append([]byte(nil), cfg.Secret...)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{config: cfg, now: now}, nil
}

// Issue signs a token of the given category. A ttl of zero or less yields a token that
// is already expired.
//
// Issue fails only when the category is unknown or signing itself fails.
func (m *Manager) Issue(category Category, subject, role, tokenID string, ttl time.Duration) (string, error) {
	if !category.Valid() {
		return "", fmt.Errorf("unknown token category %q", category)
	}

	now := m.now()
	claims := Claims{
		Category: category,
		Role:     role,
		TokenID:  tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", category, err)
	}
	return signed, nil
}

// Decode verifies the signature, algorithm, issuer and expiry of tokenStr and returns
// its claims. Failures wrap [ErrDecode] and one of [ErrMalformed],
// [ErrSignatureInvalid] or [ErrExpired].
func (m *Manager) Decode(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, decodeError(ErrMalformed, nil)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, decodeError(ErrMalformed, jwt.ErrTokenInvalidClaims)
	}
	if !claims.Category.Valid() || claims.Subject == "" || claims.TokenID == "" {
		return nil, decodeError(ErrMalformed, errors.New("missing required claims"))
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Time.After(m.now().Add(m.config.MaxFutureIAT)) {
		return nil, decodeError(ErrMalformed, errors.New("token iat too far in the future"))
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return decodeError(ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return decodeError(ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return decodeError(ErrExpired, err)
	default:
		return decodeError(ErrMalformed, err)
	}
}

// IsExpired reports whether the token can no longer be used: its expiry is at or before
// now, or it cannot be decoded at all.
func (m *Manager) IsExpired(tokenStr string) bool {
	_, err := m.Decode(tokenStr)
	return err != nil
}

// RemainingTTL returns the time left until expiry of a valid token, and zero for
// expired or undecodable tokens.
func (m *Manager) RemainingTTL(tokenStr string) time.Duration {
	claims, err := m.Decode(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := claims.ExpiresAt.Time.Sub(m.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RevocationTTL returns how long a revocation of tokenStr must be kept: until the
// last instant [Manager.Decode] still accepts it, which is expiry plus leeway. It is
// zero for tokens Decode already rejects.
func (m *Manager) RevocationTTL(tokenStr string) time.Duration {
	claims, err := m.Decode(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := claims.ExpiresAt.Time.Add(m.config.Leeway).Sub(m.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Category returns the verified category claim.
func (m *Manager) Category(tokenStr string) (Category, error) {
	claims, err := m.Decode(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Category, nil
}

// Subject returns the verified subject claim.
func (m *Manager) Subject(tokenStr string) (string, error) {
	claims, err := m.Decode(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Role returns the verified role claim.
func (m *Manager) Role(tokenStr string) (string, error) {
	claims, err := m.Decode(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// TokenID returns the verified token id claim.
func (m *Manager) TokenID(tokenStr string) (string, error) {
	claims, err := m.Decode(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.TokenID, nil
}
