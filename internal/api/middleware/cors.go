package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS creates the CORS middleware for the given allowed origins.
// X-User-ID must be an allowed header since every user-scoped request
// carries the identity there.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-User-ID",
		},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
