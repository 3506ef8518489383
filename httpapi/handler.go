package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/authjwt"
	"github.com/MrEthical07/authjwt/middleware"
	"github.com/MrEthical07/authjwt/password"
	"github.com/MrEthical07/authjwt/userstore"
)

const (
	defaultRequestTimeout = 3 * time.Second
	maxBodyBytes          = 1 << 16

	errorCodeRequestInvalid = "REQUEST_INVALID"
	errorCodeUserDuplicate  = "USER_DUPLICATE"
)

// Engine is the subset of *authjwt.Engine the handlers call.
type Engine interface {
	middleware.Authenticator
	Login(ctx context.Context, creds authjwt.Credentials) (*authjwt.LoginResult, error)
	Reissue(ctx context.Context, refreshToken string) (*authjwt.ReissueResult, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Ping(ctx context.Context) (time.Duration, error)
}

// Registrar creates accounts for sign-up requests. *userstore.Store satisfies it.
type Registrar interface {
	Register(ctx context.Context, username, password string) (authjwt.Principal, error)
}

// Options configures a Handler. Cookies and RefreshTTL are required.
type Options struct {
	Cookies        *middleware.CookieTransport
	RefreshTTL     time.Duration
	Registrar      Registrar
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

// Handler serves the auth endpoints.
type Handler struct {
	engine     Engine
	cookies    *middleware.CookieTransport
	refreshTTL time.Duration
	registrar  Registrar
	logger     *zap.Logger
	timeout    time.Duration
}

// ReissueResponse is the data of a successful reissue.
type ReissueResponse struct {
	Subject     string `json:"subject"`
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
}

// HealthResponse is the data of GET /healthz.
type HealthResponse struct {
	Status       string `json:"status"`
	StoreLatency string `json:"storeLatency,omitempty"`
}

// NewHandler validates opts and returns a Handler.
func NewHandler(engine Engine, opts Options) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("httpapi: engine required")
	}
	if opts.Cookies == nil {
		return nil, errors.New("httpapi: cookie transport required")
	}
	if opts.RefreshTTL <= 0 {
		return nil, errors.New("httpapi: refresh TTL must be > 0")
	}
	h := &Handler{
		engine:     engine,
		cookies:    opts.Cookies,
		refreshTTL: opts.RefreshTTL,
		registrar:  opts.Registrar,
		logger:     opts.Logger,
		timeout:    opts.RequestTimeout,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.timeout <= 0 {
		h.timeout = defaultRequestTimeout
	}
	return h, nil
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := authjwt.WithClientIP(r.Context(), r.RemoteAddr)
	return context.WithTimeout(ctx, h.timeout)
}

// Login handles POST /api/v1/auth/login. The refresh token is set as a cookie
// and omitted from the body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var creds authjwt.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	res, err := h.engine.Login(ctx, creds)
	if err != nil {
		h.fail(w, "login", err)
		return
	}

	h.cookies.SetRefreshCookie(w, res.RefreshToken, h.refreshTTL)
	middleware.WriteJSON(w, http.StatusOK, res.Message, res)
}

// Reissue handles POST /api/v1/auth/reissue using the refresh cookie.
func (h *Handler) Reissue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	refresh, _ := h.cookies.RefreshToken(r)
	res, err := h.engine.Reissue(ctx, refresh)
	if err != nil {
		if authjwt.KindOf(err) == authjwt.KindExpiredRefreshToken {
			h.cookies.ClearRefreshCookie(w)
		}
		h.fail(w, "reissue", err)
		return
	}

	h.cookies.SetRefreshCookie(w, res.RefreshToken, h.refreshTTL)
	middleware.WriteJSON(w, http.StatusOK, "token reissued", ReissueResponse{
		Subject:     res.Subject,
		AccessToken: res.AccessToken,
		Role:        res.Role,
	})
}

// Logout handles POST /api/v1/auth/logout. The cookie is cleared even when a
// revocation step fails.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	access, _ := authjwt.BearerToken(r.Header.Get("Authorization"))
	refresh, _ := h.cookies.RefreshToken(r)
	err := h.engine.Logout(ctx, access, refresh)
	h.cookies.ClearRefreshCookie(w)
	if err != nil {
		h.fail(w, "logout", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "logout succeeded", nil)
}

// SignUp handles POST /api/v1/users when a Registrar is configured.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if h.registrar == nil {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var creds authjwt.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	p, err := h.registrar.Register(ctx, creds.Username, creds.Password)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusCreated, "sign-up succeeded", p)
	case errors.Is(err, userstore.ErrDuplicateUsername):
		middleware.WriteProblem(w, http.StatusConflict, errorCodeUserDuplicate, "username already registered")
	case errors.Is(err, password.ErrTooShort):
		middleware.WriteProblem(w, http.StatusBadRequest, errorCodeRequestInvalid, "password too short")
	default:
		h.fail(w, "sign-up", err)
	}
}

// Me handles GET /api/v1/users/me behind the guard.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, authjwt.ErrInvalidAccessToken)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "ok", p)
}

// Healthz handles GET /healthz by pinging the token store.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	latency, err := h.engine.Ping(ctx)
	if err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		middleware.WriteJSON(w, http.StatusServiceUnavailable, "store unavailable", HealthResponse{Status: "down"})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "ok", HealthResponse{Status: "up", StoreLatency: latency.String()})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	kind := authjwt.KindOf(err)
	if kind.Status() >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		h.logger.Debug(op+" rejected", zap.String("kind", string(kind)))
	}
	middleware.WriteError(w, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		middleware.WriteProblem(w, http.StatusBadRequest, errorCodeRequestInvalid, "invalid JSON body")
		return false
	}
	return true
}
