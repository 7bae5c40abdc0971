package domain

import "time"

// EventKind identifies a step in the onboarding funnel.
type EventKind string

const (
	EventPromptSubmitted  EventKind = "prompt_submitted"
	EventTemplateSelected EventKind = "template_selected"
	EventSessionFound     EventKind = "session_found"
	EventSessionMissing   EventKind = "session_missing"
	EventSignupSucceeded  EventKind = "signup_succeeded"
	EventSignupFailed     EventKind = "signup_failed"
	EventLoginSucceeded   EventKind = "login_succeeded"
	EventLoginFailed      EventKind = "login_failed"
	EventSSOStarted       EventKind = "sso_started"
)

// Event is a single funnel step recorded for an anonymous visitor.
// Detail never carries credentials or prompt text.
type Event struct {
	ID        string    `json:"id"`
	VisitorID string    `json:"visitor_id"`
	Kind      EventKind `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
