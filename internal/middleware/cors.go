package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS opens the HTTP endpoints to any origin for local frontend development.
var CORS = cors.Handler(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowedHeaders: []string{"Accept", "Content-Type"},
	MaxAge:         300,
})
