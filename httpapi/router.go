package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MrEthical07/authjwt/logging"
	"github.com/MrEthical07/authjwt/middleware"
)

// NewRouter mounts h on a chi router. metrics is served at /metrics when
// non-nil.
func NewRouter(h *Handler, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.RequestLogger(h.logger, "/healthz", "/metrics"))
	r.Use(recoverer(h.logger))

	r.Get("/healthz", h.Healthz)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/reissue", h.Reissue)
			r.Post("/logout", h.Logout)
		})
		r.Route("/users", func(r chi.Router) {
			if h.registrar != nil {
				r.Post("/", h.SignUp)
			}
			r.Group(func(r chi.Router) {
				r.Use(middleware.Guard(h.engine))
				r.Get("/me", h.Me)
			})
		})
	})
	return r
}

func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error("handler panic", zap.Any("panic", v), zap.String("uri", r.RequestURI), zap.Stack("stack"))
					middleware.WriteProblem(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
