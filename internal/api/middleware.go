package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// RequireAPIKey rejects requests whose x-api-key header does not match the
// shared secret. The check runs before any session lookup, so an
// unauthorized request never touches session state.
func RequireAPIKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("x-api-key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Recover converts any panic during request processing into an opaque
// failure response. Callers never see internal errors and the process
// never crashes on a single bad request.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic during request processing", "path", r.URL.Path, "panic", rec)
				JSON(w, http.StatusInternalServerError, map[string]string{
					"status": "error",
					"reply":  "Something went wrong. Please try again.",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
