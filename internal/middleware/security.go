package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// SecureHeaders provides configurable security headers
type SecureHeaders struct {
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	ContentSecurityPolicy string
	XFrameOptions         string
	XContentTypeOptions   string
	ReferrerPolicy        string
	PermissionsPolicy     string

	// DevMode sends HSTS over plain HTTP and skips the default policies
	DevMode bool
}

// DefaultSecureHeaders returns secure headers suited to a JSON API
func DefaultSecureHeaders() *SecureHeaders {
	return &SecureHeaders{
		HSTSMaxAge:            63072000, // 2 years
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// Handler returns the middleware handler
func (sh *SecureHeaders) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		if sh.HSTSMaxAge > 0 && (r.TLS != nil || sh.DevMode) {
			hsts := fmt.Sprintf("max-age=%d", sh.HSTSMaxAge)
			if sh.HSTSIncludeSubdomains {
				hsts += "; includeSubDomains"
			}
			h.Set("Strict-Transport-Security", hsts)
		}

		switch {
		case sh.ContentSecurityPolicy != "":
			h.Set("Content-Security-Policy", sh.ContentSecurityPolicy)
		case !sh.DevMode:
			h.Set("Content-Security-Policy", defaultCSP)
		}

		setIf(h, "X-Frame-Options", sh.XFrameOptions)
		setIf(h, "X-Content-Type-Options", sh.XContentTypeOptions)
		setIf(h, "Referrer-Policy", sh.ReferrerPolicy)

		switch {
		case sh.PermissionsPolicy != "":
			h.Set("Permissions-Policy", sh.PermissionsPolicy)
		case !sh.DevMode:
			h.Set("Permissions-Policy", defaultPermissionsPolicy)
		}

		next.ServeHTTP(w, r)
	})
}

const (
	defaultCSP               = "default-src 'none'; connect-src 'self' ws: wss:; frame-ancestors 'none'; base-uri 'none'"
	defaultPermissionsPolicy = "camera=(), geolocation=(), microphone=(), payment=(), usb=()"
)

func setIf(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

// AuditLog records requests that change the served dataset. Reads pass
// through unlogged.
func AuditLog(logger *slog.Logger) func(next http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "audit"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "audit log",
				slog.String("event_type", "dataset_change"),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int64("content_length", r.ContentLength),
				slog.String("remote_addr", GetRealIP(r)),
				slog.String("user_agent", r.UserAgent()),
				slog.String("request_id", GetRequestID(r.Context())),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
