package pages

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/ai-onboarding/internal/cookie"
	"github.com/ashureev/ai-onboarding/internal/domain"
	"github.com/ashureev/ai-onboarding/web"
)

// User-visible error strings. Backend response bodies are never shown.
const (
	ErrMsgSignupFailed     = "Signup failed. Please try again."
	ErrMsgLoginFailed      = "Invalid email or password"
	ErrMsgPasswordTooShort = "Password must be at least 8 characters long"
	ErrMsgMissingFields    = "Please fill in all required fields"
)

type signupView struct {
	Title             string
	Narrow            bool
	Name              string
	Email             string
	LatestPrompt      string
	Error             string
	MinPasswordLength int
	SSOURL            string
	SSOText           string
}

type loginView struct {
	Title   string
	Narrow  bool
	Email   string
	Error   string
	SSOURL  string
	SSOText string
}

func (h *Handler) newSignupView(r *http.Request) signupView {
	return signupView{
		Title:             "Create Account",
		Narrow:            true,
		LatestPrompt:      cookie.Get(r, cookie.LatestPromptName),
		MinPasswordLength: domain.MinPasswordLength,
		SSOURL:            "/sso/google?intent=signup",
		SSOText:           "Sign up with",
	}
}

func newLoginView() loginView {
	return loginView{
		Title:   "Log In",
		Narrow:  true,
		SSOURL:  "/sso/google?intent=login",
		SSOText: "Login with",
	}
}

// SignupPage renders the signup form, showing the visitor's latest prompt.
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, web.PageSignup, h.newSignupView(r))
}

// SubmitSignup creates the account and hands the visitor to the application.
func (h *Handler) SubmitSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	signup := domain.Signup{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	view := h.newSignupView(r)
	view.Name = signup.Name
	view.Email = signup.Email

	if err := signup.Validate(); err != nil {
		view.Error = ErrMsgMissingFields
		if errors.Is(err, domain.ErrPasswordTooShort) {
			view.Error = ErrMsgPasswordTooShort
		}
		h.renderer.Render(w, http.StatusUnprocessableEntity, web.PageSignup, view)
		return
	}

	set, err := h.backend.Onboard(r.Context(), r.Cookies(), signup)
	if err != nil {
		slog.Warn("Signup failed", "error", err)
		h.record(r.Context(), domain.EventSignupFailed, "")
		view.Error = ErrMsgSignupFailed
		h.renderer.Render(w, http.StatusUnprocessableEntity, web.PageSignup, view)
		return
	}

	cookie.Relay(w, r, set)
	h.record(r.Context(), domain.EventSignupSucceeded, "")
	http.Redirect(w, r, h.opts.AppURL, http.StatusSeeOther)
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, web.PageLogin, newLoginView())
}

// SubmitLogin authenticates and hands the visitor to the application.
func (h *Handler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	creds := domain.Credentials{
		Email:      strings.TrimSpace(r.PostFormValue("email")),
		Password:   r.PostFormValue("password"),
		RedirectTo: "/",
	}

	view := newLoginView()
	view.Email = creds.Email

	if err := creds.Validate(); err != nil {
		view.Error = ErrMsgMissingFields
		h.renderer.Render(w, http.StatusUnprocessableEntity, web.PageLogin, view)
		return
	}

	set, err := h.backend.Authenticate(r.Context(), r.Cookies(), creds)
	if err != nil {
		slog.Warn("Login failed", "error", err)
		h.record(r.Context(), domain.EventLoginFailed, "")
		view.Error = ErrMsgLoginFailed
		h.renderer.Render(w, http.StatusUnauthorized, web.PageLogin, view)
		return
	}

	cookie.Relay(w, r, set)
	h.record(r.Context(), domain.EventLoginSucceeded, "")
	http.Redirect(w, r, h.opts.AppURL, http.StatusSeeOther)
}

// GoogleRedirect sends the browser to Google's authorization endpoint.
func (h *Handler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	intent := r.URL.Query().Get("intent")
	if intent != "signup" {
		intent = "login"
	}

	authURL, err := h.google.AuthURL()
	if err != nil {
		slog.Error("Failed to build Google authorization URL", "error", err)
		http.Error(w, "unable to start Google sign-in", http.StatusInternalServerError)
		return
	}

	h.record(r.Context(), domain.EventSSOStarted, intent)
	http.Redirect(w, r, authURL, http.StatusFound)
}
