package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/detoxsabeho/orders-backend/pkg/config"
)

// CORS applies the allowed origin policy for the landing page and the admin
// dashboard, which are served from the storefront domain.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
