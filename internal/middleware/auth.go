package middleware

import (
	"net/http"
	"net/url"

	"github.com/greenflash/greenflash/internal/ctxkeys"
	"github.com/greenflash/greenflash/internal/service"
	"github.com/greenflash/greenflash/internal/ui"
)

// AuthMiddleware resolves the session cookie to a user and adds it to the context
func AuthMiddleware(authService *service.AuthService, userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authService.VerifySession(cookie.Value)
			if err != nil {
				authService.Logout(w)
				next.ServeHTTP(w, r)
				return
			}

			// The account may have been deleted since the session was issued
			user, err := userService.ByID(userID)
			if err != nil {
				authService.Logout(w)
				next.ServeHTTP(w, r)
				return
			}

			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth sends anonymous users to the login page, remembering where
// they were going.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		ui.AddFlash(w, r, ui.FlashDanger, "Access unauthorized.")
		target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())

		// For HTMX and fetch requests, use HX-Redirect header to force full page redirect
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", target)
			w.WriteHeader(http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// RequireGuest ensures the user is not authenticated
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/home")
				w.WriteHeader(http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, "/home", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}
