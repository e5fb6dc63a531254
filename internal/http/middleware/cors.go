package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"nudge/internal/config"
)

// CORS lets browser clients call the API. The session cookie needs CORS_ALLOW_CREDENTIALS.
func CORS(cfg config.Config) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id", "Set-Cookie"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	})
}
