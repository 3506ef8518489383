package session

import "time"

// RefreshRecord is the server-side half of a refresh token. It lives under
// refresh:{Subject}:{TokenID} until it is rotated, deleted at logout, or expires.
type RefreshRecord struct {
	TokenID   string
	Subject   string
	Role      string
	IssuedAt  int64
	ExpiresAt int64
}

// Expired reports whether the record's own expiry has passed at now.
func (r *RefreshRecord) Expired(now time.Time) bool {
	return r == nil || now.Unix() >= r.ExpiresAt
}
