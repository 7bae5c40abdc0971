// Package pages serves the onboarding pages: prompt entry, signup, login
// and the Google SSO redirect.
package pages

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ashureev/ai-onboarding/internal/backend"
	"github.com/ashureev/ai-onboarding/internal/cookie"
	"github.com/ashureev/ai-onboarding/internal/domain"
	"github.com/ashureev/ai-onboarding/internal/identity"
	"github.com/go-chi/chi/v5"
)

// Backend is the subset of the backend API the pages call.
type Backend interface {
	Authenticate(ctx context.Context, fwd []*http.Cookie, creds domain.Credentials) ([]*http.Cookie, error)
	Onboard(ctx context.Context, fwd []*http.Cookie, signup domain.Signup) ([]*http.Cookie, error)
	Session(ctx context.Context, fwd []*http.Cookie) (backend.SessionStatus, error)
	SetAICookie(ctx context.Context, fwd []*http.Cookie, prompt, templateID string) ([]*http.Cookie, error)
}

// Catalog lists onboarding templates. The list is the same for every visitor.
type Catalog interface {
	List(ctx context.Context) ([]domain.Template, error)
}

// EventRecorder records funnel events.
type EventRecorder interface {
	RecordEvent(ctx context.Context, event *domain.Event) error
}

// AuthURLBuilder builds an identity provider authorization URL.
type AuthURLBuilder interface {
	AuthURL() (string, error)
}

// Renderer renders a named page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any)
}

// Options carries the redirect targets and cookie settings.
type Options struct {
	// AppURL is where successful signup and login land.
	AppURL string
	// SessionRedirectURL is where visitors with an active session land.
	SessionRedirectURL string
	Cookie             cookie.Options
	PrimeAICookie      bool
}

// Handler serves the onboarding pages.
type Handler struct {
	backend  Backend
	catalog  Catalog
	events   EventRecorder
	google   AuthURLBuilder
	renderer Renderer
	opts     Options
}

// NewHandler creates a page handler. events may be nil.
func NewHandler(b Backend, c Catalog, events EventRecorder, google AuthURLBuilder, renderer Renderer, opts Options) *Handler {
	if opts.SessionRedirectURL == "" {
		opts.SessionRedirectURL = opts.AppURL
	}
	return &Handler{
		backend:  b,
		catalog:  c,
		events:   events,
		google:   google,
		renderer: renderer,
		opts:     opts,
	}
}

// RegisterRoutes registers the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.PromptPage)
	r.Post("/", h.SubmitPrompt)
	r.Post("/templates/{id}", h.SelectTemplate)
	r.Get("/signup", h.SignupPage)
	r.Post("/signup", h.SubmitSignup)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.SubmitLogin)
	r.Get("/sso/google", h.GoogleRedirect)
}

func (h *Handler) record(ctx context.Context, kind domain.EventKind, detail string) {
	if h.events == nil {
		return
	}
	event := &domain.Event{
		VisitorID: identity.VisitorIDFromContext(ctx),
		Kind:      kind,
		Detail:    detail,
	}
	if err := h.events.RecordEvent(ctx, event); err != nil {
		slog.Warn("Failed to record onboarding event", "kind", kind, "error", err)
	}
}

// withCookie returns the request's cookies with name=value set, so a cookie
// written in this response is also forwarded to the backend. The value is
// escaped the same way cookie.Set writes it.
func withCookie(cookies []*http.Cookie, name, value string) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies)+1)
	for _, c := range cookies {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return append(out, &http.Cookie{Name: name, Value: url.PathEscape(value)})
}
