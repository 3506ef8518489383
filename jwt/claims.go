package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Category distinguishes access tokens from refresh tokens. It is carried inside the
// signed payload so a refresh token can never be presented where an access token is
// expected, and vice versa.
type Category string

const (
	// CategoryAccess marks short-lived tokens presented on every protected request.
	CategoryAccess Category = "AccessToken"
	// CategoryRefresh marks long-lived tokens exchanged for a new pair.
	CategoryRefresh Category = "RefreshToken"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryAccess || c == CategoryRefresh
}

// Claims is the signed payload of both token categories. Subject, IssuedAt and
// ExpiresAt live in the embedded registered claims.
type Claims struct {
	Category Category `json:"category"`
	Role     string   `json:"role"`
	TokenID  string   `json:"tid"`
	jwt.RegisteredClaims
}
