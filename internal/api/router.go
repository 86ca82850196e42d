package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the service routes. Health is unauthenticated; the
// message endpoint sits behind the shared-secret check.
func NewRouter(handler *Handler, apiKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(Recover)

	r.Get("/health", handler.HandleHealth)

	r.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(apiKey))
		r.Post("/message", handler.HandleMessage)
	})

	return r
}
