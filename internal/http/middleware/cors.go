package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Cors allows every origin, method and header.
func Cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{correlationIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
