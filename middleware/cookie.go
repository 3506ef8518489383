package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/authjwt"
)

// CookieTransport carries the refresh token in an HTTP-only cookie.
type CookieTransport struct {
	name     string
	path     string
	domain   string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// NewCookieTransport builds a transport from cfg. Empty Name and Path fall back to
// "RefreshToken" and "/".
func NewCookieTransport(cfg authjwt.CookieConfig) *CookieTransport {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "RefreshToken"
	}
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	return &CookieTransport{
		name:     name,
		path:     path,
		domain:   cfg.Domain,
		secure:   cfg.Secure,
		httpOnly: cfg.HTTPOnly,
		sameSite: parseSameSite(cfg.SameSite),
	}
}

// Name returns the cookie name.
func (t *CookieTransport) Name() string {
	return t.name
}

// SetRefreshCookie writes token with the given lifetime.
func (t *CookieTransport) SetRefreshCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, t.cookie(token, int(maxAge/time.Second)))
}

// ClearRefreshCookie expires the cookie on the client.
func (t *CookieTransport) ClearRefreshCookie(w http.ResponseWriter) {
	c := t.cookie("", -1)
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// RefreshToken reads the refresh token from r. ok is false when the cookie is
// absent or empty.
func (t *CookieTransport) RefreshToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(t.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (t *CookieTransport) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     t.name,
		Value:    value,
		Path:     t.path,
		Domain:   t.domain,
		MaxAge:   maxAge,
		Secure:   t.secure,
		HttpOnly: t.httpOnly,
		SameSite: t.sameSite,
	}
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
