// Package cookie sets and reads the onboarding cookies shared with the
// main application through the registrable parent domain.
package cookie

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Cookie names shared with the main application.
const (
	PromptName       = "tj_ai_prompt"
	TemplateIDName   = "tj_template_id"
	LatestPromptName = "latestPrompt"
)

// DefaultTTL is the lifetime of onboarding cookies.
const DefaultTTL = 7 * 24 * time.Hour

// Options controls cookie attributes.
type Options struct {
	TTL    time.Duration
	Secure bool
}

// ParentDomain returns the cookie Domain attribute for a request host.
// localhost is kept as is. IP literals, single-label hosts and hosts that
// are themselves a public suffix yield "" (a host-only cookie). Everything
// else resolves to the registrable domain with a leading dot.
func ParentDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	host = strings.TrimSuffix(host, ".")

	if host == "localhost" {
		return host
	}
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}

	// Public suffixes themselves (github.io, co.uk) get a host-only cookie.
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return "." + etld1
}

// Set writes name=value scoped to the request's parent domain.
// The value is escaped so it round-trips through Get unchanged.
func Set(w http.ResponseWriter, r *http.Request, name, value string, opts Options) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    url.PathEscape(value),
		Path:     "/",
		Domain:   ParentDomain(r.Host),
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.Secure,
	})
}

// Get returns the unescaped value of a request cookie, or "" when absent.
func Get(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	v, err := url.PathUnescape(c.Value)
	if err != nil {
		return c.Value
	}
	return v
}

// Relay re-emits cookies issued by the backend so they reach the browser,
// rescoped to the request's parent domain.
func Relay(w http.ResponseWriter, r *http.Request, cookies []*http.Cookie) {
	domain := ParentDomain(r.Host)
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		out := *c
		out.Domain = domain
		if out.Path == "" {
			out.Path = "/"
		}
		out.Raw = ""
		out.Unparsed = nil
		http.SetCookie(w, &out)
	}
}
