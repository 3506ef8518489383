package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/MrEthical07/authjwt"
)

// PrincipalKey is the echo.Context key holding the authenticated principal.
const PrincipalKey = "_authjwt_principal"

// EchoGate is [Gate] for Echo.
func EchoGate(engine Authenticator) echo.MiddlewareFunc {
	return echoGate(engine, false)
}

// EchoGuard is [Guard] for Echo.
func EchoGuard(engine Authenticator) echo.MiddlewareFunc {
	return echoGate(engine, true)
}

func echoGate(engine Authenticator, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if engine == nil {
				return writeEchoError(c, authjwt.ErrEngineNotReady)
			}

			req := c.Request()
			res := engine.Authenticate(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			switch res.Decision {
			case authjwt.GateContinue:
				c.SetRequest(req.WithContext(authjwt.WithPrincipal(req.Context(), res.Principal)))
				c.Set(PrincipalKey, res.Principal)
				return next(c)
			case authjwt.GatePassThrough:
				if required {
					return writeEchoError(c, authjwt.ErrInvalidAccessToken)
				}
				return next(c)
			default:
				return writeEchoError(c, res.Err)
			}
		}
	}
}

// EchoPrincipal returns the principal bound by [EchoGate] or [EchoGuard].
func EchoPrincipal(c echo.Context) (authjwt.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(authjwt.Principal)
	return p, ok
}

func writeEchoError(c echo.Context, err error) error {
	resp := ErrorResponse(err)
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(resp.Code, resp)
}
