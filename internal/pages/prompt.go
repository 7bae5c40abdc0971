package pages

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ashureev/ai-onboarding/internal/backend"
	"github.com/ashureev/ai-onboarding/internal/cookie"
	"github.com/ashureev/ai-onboarding/internal/domain"
	"github.com/ashureev/ai-onboarding/web"
	"github.com/go-chi/chi/v5"
)

// ExamplePrompts are offered under the prompt box.
var ExamplePrompts = []string{
	"Create a landing page for a coffee shop",
	"Design a todo list application",
	"Build a weather dashboard",
	"Make a portfolio website",
}

type promptView struct {
	Title     string
	Narrow    bool
	Prompt    string
	Examples  []string
	Templates []domain.Template
}

// PromptPage renders the prompt entry page. A ?prompt= query pre-fills the
// text box, which is how the example prompts work.
func (h *Handler) PromptPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.opts.PrimeAICookie {
		h.primeAICookie(w, r)
	}

	templates, err := h.catalog.List(ctx)
	if err != nil {
		slog.Debug("Rendering prompt page without templates", "error", err)
	}

	h.renderer.Render(w, http.StatusOK, web.PagePrompt, promptView{
		Title:     "AI Prompt Assistant",
		Prompt:    r.URL.Query().Get("prompt"),
		Examples:  ExamplePrompts,
		Templates: templates,
	})
}

// SubmitPrompt stores the prompt in cookies and sends the visitor on.
func (h *Handler) SubmitPrompt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	prompt := strings.TrimSpace(r.PostFormValue("prompt"))
	if prompt == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cookie.Set(w, r, cookie.PromptName, prompt, h.opts.Cookie)
	cookie.Set(w, r, cookie.LatestPromptName, prompt, h.opts.Cookie)
	h.record(r.Context(), domain.EventPromptSubmitted, "len="+strconv.Itoa(len([]rune(prompt))))

	fwd := withCookie(r.Cookies(), cookie.PromptName, prompt)
	fwd = withCookie(fwd, cookie.LatestPromptName, prompt)
	h.continueOnboarding(w, r, fwd)
}

// SelectTemplate stores the chosen template ID and sends the visitor on.
func (h *Handler) SelectTemplate(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the request has one, leaving the param escaped.
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
	}
	id = strings.TrimSpace(id)
	if id == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cookie.Set(w, r, cookie.TemplateIDName, id, h.opts.Cookie)
	h.record(r.Context(), domain.EventTemplateSelected, id)

	h.continueOnboarding(w, r, withCookie(r.Cookies(), cookie.TemplateIDName, id))
}

// continueOnboarding probes the backend session. An active session goes to
// the main application; anything else, including a failed probe, goes to
// signup.
func (h *Handler) continueOnboarding(w http.ResponseWriter, r *http.Request, fwd []*http.Cookie) {
	ctx := r.Context()

	status, err := h.backend.Session(ctx, fwd)
	if err != nil {
		slog.Warn("Error checking session", "error", err)
	}

	if status == backend.SessionActive {
		h.record(ctx, domain.EventSessionFound, "")
		http.Redirect(w, r, h.opts.SessionRedirectURL, http.StatusSeeOther)
		return
	}

	detail := "unauthenticated"
	if err != nil {
		detail = "probe_failed"
	} else {
		slog.Info("No active session, continuing to signup")
	}
	h.record(ctx, domain.EventSessionMissing, detail)
	http.Redirect(w, r, "/signup", http.StatusSeeOther)
}

// primeAICookie asks the backend to set the AI onboarding cookies from the
// visitor's current values. Failures are only logged.
func (h *Handler) primeAICookie(w http.ResponseWriter, r *http.Request) {
	prompt := cookie.Get(r, cookie.PromptName)
	templateID := cookie.Get(r, cookie.TemplateIDName)
	if prompt == "" && templateID == "" {
		return
	}

	set, err := h.backend.SetAICookie(r.Context(), r.Cookies(), prompt, templateID)
	if err != nil {
		slog.Error("Error setting AI cookies", "error", err)
		return
	}
	cookie.Relay(w, r, set)
}
