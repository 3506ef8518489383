// Package httpapi is the JSON-over-HTTP surface of the engine: login, reissue,
// logout and sign-up handlers plus the chi router that mounts them with the
// gate in front of protected routes.
//
// Every response uses the middleware.Response envelope. The refresh token only
// travels in the HTTP-only cookie managed by middleware.CookieTransport.
package httpapi
