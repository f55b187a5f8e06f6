package middleware

import (
	"net/http"

	"github.com/greenflash/greenflash/internal/ui"
)

// Flashes makes one-shot messages from the previous response available to
// handlers through ui.AddFlash and ui.PopFlashes.
func Flashes(store *ui.FlashStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(store.WithFlashes(r.Context(), r)))
		})
	}
}
