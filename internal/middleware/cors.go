package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"go-api-template/internal/config"
)

// CORS allows the configured browser origins. Credentials must stay enabled
// because both the refresh token and the CSRF token travel in cookies.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", config.CSRFHeaderName},
		MaxAge:           3600,
		AllowCredentials: true,
	})

	return handler.Handler
}
