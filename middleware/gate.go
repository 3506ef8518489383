package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/authjwt"
)

// Authenticator evaluates an Authorization header. *authjwt.Engine satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) authjwt.GateResult
}

// PrincipalFromContext returns the principal bound by [Gate] or [Guard].
func PrincipalFromContext(ctx context.Context) (authjwt.Principal, bool) {
	return authjwt.PrincipalFromContext(ctx)
}

// Gate authenticates requests that carry a bearer credential and lets anonymous
// requests through. A rejected credential short-circuits with the JSON error body.
func Gate(engine Authenticator) func(http.Handler) http.Handler {
	return gate(engine, false)
}

// Guard is [Gate] for protected routes: anonymous requests are rejected with
// InvalidAccessToken as well.
func Guard(engine Authenticator) func(http.Handler) http.Handler {
	return gate(engine, true)
}

func gate(engine Authenticator, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, authjwt.ErrEngineNotReady)
				return
			}

			res := engine.Authenticate(r.Context(), r.Header.Get("Authorization"))
			switch res.Decision {
			case authjwt.GateContinue:
				next.ServeHTTP(w, r.WithContext(authjwt.WithPrincipal(r.Context(), res.Principal)))
			case authjwt.GatePassThrough:
				if required {
					WriteError(w, authjwt.ErrInvalidAccessToken)
					return
				}
				next.ServeHTTP(w, r)
			default:
				WriteError(w, res.Err)
			}
		})
	}
}
