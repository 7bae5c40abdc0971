package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSameOrigin(t *testing.T) {
	h := SameOrigin([]string{"https://www.example.com"})(ok)

	tests := []struct {
		name    string
		method  string
		origin  string
		referer string
		want    int
	}{
		{"get is always allowed", http.MethodGet, "https://evil.test", "", http.StatusOK},
		{"same host", http.MethodPost, "http://onboarding.example.com", "", http.StatusOK},
		{"allowed origin", http.MethodPost, "https://www.example.com", "", http.StatusOK},
		{"cross origin", http.MethodPost, "https://evil.test", "", http.StatusForbidden},
		{"referer fallback same host", http.MethodPost, "", "http://onboarding.example.com/signup", http.StatusOK},
		{"referer fallback cross origin", http.MethodPost, "", "https://evil.test/form", http.StatusForbidden},
		{"no headers", http.MethodPost, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://onboarding.example.com/login", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	h := CORS([]string{"*"})(ok)
	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Expected echoed origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Expected no credentials for wildcard, got %q", got)
	}
}

func TestCORSExplicitOriginAllowsCredentials(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(ok)
	req := httptest.NewRequest(http.MethodOptions, "/api/templates", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected preflight 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Expected credentials allowed, got %q", got)
	}
}

func TestCORSUnlistedOrigin(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(ok)
	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Origin", "https://evil.test")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS headers, got %q", got)
	}
}
