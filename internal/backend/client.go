// Package backend is the HTTP client for the onboarding backend API.
//
// Every call forwards the visitor's cookies and returns whatever cookies the
// backend set, mirroring a browser fetch made with credentials included.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/ai-onboarding/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	authenticatePath = "/api/authenticate"
	onboardingPath   = "/api/ai/onboarding"
	setAICookiePath  = "/api/ai/onboarding/set-ai-cookie"
	libraryAppsPath  = "/api/library_apps"
	sessionPath      = "/api/session"

	// maxResponseBody bounds decoded response bodies (1MB).
	maxResponseBody = 1 << 20
)

// ErrUnavailable wraps transport failures: the backend could not be reached
// or the request was cancelled before a response arrived.
var ErrUnavailable = errors.New("backend unavailable")

// StatusError reports a non-2xx response. The body is never inspected.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Code)
}

// SessionStatus is the outcome of a session probe.
type SessionStatus int

const (
	// SessionAbsent means the backend answered and reported no session.
	SessionAbsent SessionStatus = iota
	// SessionActive means the forwarded cookies carry a valid session.
	SessionActive
)

func (s SessionStatus) String() string {
	if s == SessionActive {
		return "active"
	}
	return "absent"
}

// Client calls the onboarding backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. Requests are traced through otelhttp.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			// Redirects are the browser's business; surface them as statuses.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// NewClientWithHTTP creates a client with a caller-supplied http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Authenticate logs in with email and password.
func (c *Client) Authenticate(ctx context.Context, fwd []*http.Cookie, creds domain.Credentials) ([]*http.Cookie, error) {
	if creds.RedirectTo == "" {
		creds.RedirectTo = "/"
	}
	resp, err := c.do(ctx, "authenticate", http.MethodPost, authenticatePath, fwd, creds)
	if err != nil {
		return nil, err
	}
	return resp.Cookies(), nil
}

// Onboard creates an account through the AI onboarding endpoint.
func (c *Client) Onboard(ctx context.Context, fwd []*http.Cookie, signup domain.Signup) ([]*http.Cookie, error) {
	resp, err := c.do(ctx, "onboard", http.MethodPost, onboardingPath, fwd, signup)
	if err != nil {
		return nil, err
	}
	return resp.Cookies(), nil
}

// aiCookieRequest is the body of the set-ai-cookie call.
type aiCookieRequest struct {
	Prompt     string `json:"tj_ai_prompt"`
	TemplateID string `json:"tj_template_id"`
}

// SetAICookie asks the backend to prime the AI onboarding cookies.
func (c *Client) SetAICookie(ctx context.Context, fwd []*http.Cookie, prompt, templateID string) ([]*http.Cookie, error) {
	resp, err := c.do(ctx, "set_ai_cookie", http.MethodPost, setAICookiePath, fwd,
		aiCookieRequest{Prompt: prompt, TemplateID: templateID})
	if err != nil {
		return nil, err
	}
	return resp.Cookies(), nil
}

// LibraryApps lists the template manifests.
func (c *Client) LibraryApps(ctx context.Context, fwd []*http.Cookie) ([]domain.Template, error) {
	resp, err := c.do(ctx, "library_apps", http.MethodGet, libraryAppsPath, fwd, nil)
	if err != nil {
		return nil, err
	}

	var manifests domain.TemplateManifests
	if err := json.Unmarshal(resp.body, &manifests); err != nil {
		return nil, fmt.Errorf("decode library apps: %w", err)
	}
	return manifests.Templates, nil
}

// Session probes whether the forwarded cookies carry an active session.
// A non-2xx answer is SessionAbsent with a nil error; a transport failure is
// SessionAbsent with an error wrapping ErrUnavailable so callers can tell the
// two apart.
func (c *Client) Session(ctx context.Context, fwd []*http.Cookie) (SessionStatus, error) {
	_, err := c.do(ctx, "session", http.MethodGet, sessionPath, fwd, nil)
	if err == nil {
		return SessionActive, nil
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return SessionAbsent, nil
	}
	return SessionAbsent, err
}

type response struct {
	*http.Response
	body []byte
}

func (c *Client) do(ctx context.Context, op, method, path string, fwd []*http.Cookie, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, ck := range fwd {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil, &StatusError{Op: op, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w: %w", op, ErrUnavailable, err)
	}
	return &response{Response: resp, body: data}, nil
}
