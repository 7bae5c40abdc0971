// Package middleware provides HTTP middleware for the onboarding server.
package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// CORS returns middleware that handles CORS headers for the JSON endpoints.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && originListed(allowedOrigins, origin, true) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Add("Vary", "Origin")
				// Credentials only for explicit origins; a wildcard-echoed origin would enable CSRF.
				if originListed(allowedOrigins, origin, false) {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SameOrigin rejects unsafe requests whose Origin (or, failing that, Referer)
// is neither the request's own host nor an explicitly allowed origin.
// Requests carrying neither header are let through.
func SameOrigin(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" || origin == "null" {
				origin = originOf(r.Referer())
			}

			if origin != "" && !sameHost(origin, r.Host) && !originListed(allowedOrigins, origin, false) {
				slog.Warn("Rejected cross-origin form post", "origin", origin, "host", r.Host, "path", r.URL.Path)
				http.Error(w, "cross-origin request rejected", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originListed(allowed []string, origin string, wildcard bool) bool {
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if (wildcard && o == "*") || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func originOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}
