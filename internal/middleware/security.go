package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/greenflash/greenflash/internal/ctxkeys"
)

// SecurityHeaders sets CSP (with the request nonce) and the usual hardening
// headers. Place images come from the search provider's CDN, so img-src
// allows any https origin.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce := GetNonce(r.Context())

		scriptSrc := "'self'"
		if nonce != "" {
			scriptSrc += fmt.Sprintf(" 'nonce-%s'", nonce)
		}

		imgSrc := []string{"'self'", "https:", "data:"}
		if cfg := ctxkeys.Config(r.Context()); cfg != nil && strings.HasPrefix(cfg.S3Endpoint, "http://") {
			imgSrc = append(imgSrc, cfg.S3Endpoint)
		}

		csp := strings.Join([]string{
			"default-src 'self'",
			"script-src " + scriptSrc,
			"style-src 'self'",
			"img-src " + strings.Join(imgSrc, " "),
			"connect-src 'self'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		}, "; ")

		h := w.Header()
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if cfg := ctxkeys.Config(r.Context()); cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
