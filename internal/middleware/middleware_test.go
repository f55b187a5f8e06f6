package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenflash/greenflash/internal/ctxkeys"
	"github.com/greenflash/greenflash/internal/model"
	"github.com/greenflash/greenflash/internal/ui"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(ok, mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequireAuth(t *testing.T) {
	store := ui.NewFlashStore("secret", false)
	h := Chain(RequireAuth(ok), Flashes(store))

	t.Run("anonymous redirects to login with next", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/3?x=1", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/login", loc.Path)
		assert.Equal(t, "/logs/3?x=1", loc.Query().Get("next"))

		// the flash cookie carries the message to the login page
		var flashCookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "flash" {
				flashCookie = c
			}
		}
		require.NotNil(t, flashCookie)

		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(flashCookie)
		var flashes []ui.Flash
		Flashes(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flashes = ui.PopFlashes(w, r)
		})).ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, []ui.Flash{{Category: ui.FlashDanger, Message: "Access unauthorized."}}, flashes)
	})

	t.Run("htmx uses HX-Redirect", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/places", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.True(t, strings.HasPrefix(rec.Header().Get("HX-Redirect"), "/login?next="))
	})

	t.Run("signed in passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/places", nil)
		req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: "u1"}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireGuest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: "u1"}))
	rec := httptest.NewRecorder()
	RequireGuest(ok).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))
}

func TestCSRFProtection(t *testing.T) {
	h := CSRFProtection(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0]

	tests := []struct {
		name   string
		header string
		form   string
		want   int
	}{
		{"missing token", "", "", http.StatusForbidden},
		{"wrong token", "nope", "", http.StatusForbidden},
		{"header token", token.Value, "", http.StatusOK},
		{"form token", "", token.Value, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := url.Values{}
			if tt.form != "" {
				body.Set(csrfFormField, tt.form)
			}
			req := httptest.NewRequest(http.MethodPost, "/places/save", strings.NewReader(body.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.header != "" {
				req.Header.Set(csrfHeader, tt.header)
			}
			req.AddCookie(token)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	var nonce string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce = GetNonce(r.Context())
	}), NonceMiddleware, SecurityHeaders)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, nonce)
	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "'nonce-"+nonce+"'")
	assert.Contains(t, csp, "img-src 'self' https: data:")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRateLimitAuth(t *testing.T) {
	h := RateLimitAuth(2, time.Minute)(ok)

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSection(t *testing.T) {
	tests := map[string]string{
		"/":                "/",
		"/logs/12/edit":    "/logs",
		"/maintenance/all": "/maintenance",
		"/wp-admin.php":    "other",
	}
	for path, want := range tests {
		assert.Equal(t, want, section(path), path)
	}
}

func TestRequestLogging(t *testing.T) {
	h := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("x"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
