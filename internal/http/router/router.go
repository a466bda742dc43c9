package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lumenshare/backend/internal/health"
	"github.com/lumenshare/backend/internal/http/handler"
	"github.com/lumenshare/backend/internal/http/middleware"
	"github.com/lumenshare/backend/internal/http/response"
	"github.com/lumenshare/backend/internal/security"
)

// APILimiterFunc and AuthLimiterFunc are distinct types so dependency
// injection can tell the two limiters apart.
type APILimiterFunc func(http.Handler) http.Handler

type AuthLimiterFunc func(http.Handler) http.Handler

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ItemHandler    *handler.ItemHandler
	JWTManager     *security.JWTManager
	CORSOrigins    []string
	APILimiter     APILimiterFunc
	AuthLimiter    AuthLimiterFunc
	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	if dep.APILimiter != nil {
		r.Use(dep.APILimiter)
	}

	authLimiter := dep.AuthLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(30, time.Minute).Middleware()
	}
	requireAuth := middleware.AuthMiddleware(dep.JWTManager)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter).Get("/google/login", dep.AuthHandler.GoogleLogin)
			r.With(authLimiter).Get("/google/callback", dep.AuthHandler.GoogleCallback)
			r.With(requireAuth).Post("/logout", dep.AuthHandler.Logout)
			r.With(requireAuth, authLimiter).Post("/change-password", dep.AuthHandler.ChangePassword)
		})

		r.With(requireAuth).Get("/me", dep.UserHandler.Me)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			// Avatar upload needs more room than the global body limit.
			r.With(middleware.BodyLimit(6 << 20)).Post("/me/avatar", dep.UserHandler.UploadAvatar)
			r.Delete("/me/avatar", dep.UserHandler.DeleteAvatar)
		})

		r.Route("/items", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", dep.ItemHandler.List)
			r.Get("/mine", dep.ItemHandler.ListMine)
			r.Get("/{id}", dep.ItemHandler.GetByID)
			r.Post("/", dep.ItemHandler.Create)
			r.Put("/{id}", dep.ItemHandler.Update)
			r.Delete("/{id}", dep.ItemHandler.Delete)
		})
	})

	if dep.EnableOTelHTTP {
		return otelhttp.NewHandler(r, "http.server")
	}
	return r
}
