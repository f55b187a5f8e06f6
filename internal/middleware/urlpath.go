package middleware

import (
	"net/http"

	"github.com/greenflash/greenflash/internal/ctxkeys"
)

// WithURLPath adds the current URL's path to the context, for nav highlighting
func WithURLPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithURLPath(r.Context(), r.URL.Path)))
	})
}
