package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-api-template/internal/config"
	"go-api-template/internal/handler"
	"go-api-template/internal/middleware"
	"go-api-template/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	csrfMiddleware *middleware.CSRFMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	csrfHandler *handler.CSRFHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	r.Use(rateLimitMiddleware.Handler)
	r.Use(csrfMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get(config.CSRFPath, csrfHandler.Issue)

	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/register", authHandler.Register)
		auth.Post("/login", authHandler.Login)
		auth.Post("/token/refresh", authHandler.Refresh)
		auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		auth.With(authMiddleware.RequireAuth).Post("/logout", authHandler.Logout)
	})

	r.Route("/users", func(users chi.Router) {
		users.Use(authMiddleware.RequireAuth)
		users.Get("/", userHandler.List)
		users.Get("/{id}", userHandler.Get)
		users.Put("/{id}", userHandler.Update)
		users.Delete("/{id}", userHandler.Delete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(model.ErrorResponse{
			Message: fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path),
		})
	})

	return r
}
