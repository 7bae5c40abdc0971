// Package catalog serves the onboarding template list.
//
// Templates come from the backend's library apps endpoint, requested
// anonymously. Concurrent page
// loads share one backend call, and the last good list is kept in the store
// so the landing page still shows templates while the backend is down.
package catalog

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/ai-onboarding/internal/domain"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads templates from the backend.
type Fetcher interface {
	LibraryApps(ctx context.Context, fwd []*http.Cookie) ([]domain.Template, error)
}

// Cache keeps the last good template list.
type Cache interface {
	SaveTemplates(ctx context.Context, templates []domain.Template, fetchedAt time.Time) error
	LoadTemplates(ctx context.Context) ([]domain.Template, time.Time, error)
}

// Service lists templates with caching and request collapsing.
type Service struct {
	fetcher Fetcher
	cache   Cache
	policy  *bluemonday.Policy
	group   singleflight.Group
	now     func() time.Time
}

// New creates a catalog service. cache may be nil.
func New(fetcher Fetcher, cache Cache) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		policy:  bluemonday.StrictPolicy(),
		now:     time.Now,
	}
}

// List returns the current templates. When the backend fails, the cached
// list is returned instead and the failure is only logged. An error is
// returned only when neither source has anything.
//
// The catalog is public: the backend is called without visitor cookies, so
// one shared fetch and one cache row can serve every visitor.
func (s *Service) List(ctx context.Context) ([]domain.Template, error) {
	v, err, _ := s.group.Do("library_apps", func() (any, error) {
		// One visitor disconnecting must not fail the callers sharing this fetch.
		fetchCtx := context.WithoutCancel(ctx)
		templates, err := s.fetcher.LibraryApps(fetchCtx, nil)
		if err != nil {
			return nil, err
		}
		templates = s.sanitize(templates)
		s.store(fetchCtx, templates)
		return templates, nil
	})
	if err == nil {
		return v.([]domain.Template), nil
	}

	slog.Error("Error fetching templates", "error", err)

	cached, fetchedAt, cacheErr := s.load(ctx)
	if cacheErr != nil {
		slog.Error("Failed to load cached templates", "error", cacheErr)
		return nil, err
	}
	if cached == nil {
		return nil, err
	}
	slog.Info("Serving cached templates", "count", len(cached), "fetched_at", fetchedAt)
	return cached, nil
}

func (s *Service) store(ctx context.Context, templates []domain.Template) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveTemplates(ctx, templates, s.now()); err != nil {
		slog.Warn("Failed to cache templates", "error", err)
	}
}

func (s *Service) load(ctx context.Context) ([]domain.Template, time.Time, error) {
	if s.cache == nil {
		return nil, time.Time{}, nil
	}
	return s.cache.LoadTemplates(ctx)
}

// sanitize reduces backend-provided text to plain text and drops entries
// without an ID, which cannot be selected.
func (s *Service) sanitize(in []domain.Template) []domain.Template {
	out := make([]domain.Template, 0, len(in))
	for _, t := range in {
		if strings.TrimSpace(t.ID) == "" {
			continue
		}
		t.Name = s.plain(t.Name)
		t.Description = s.plain(t.Description)
		t.Category = s.plain(t.Category)
		widgets := make([]string, 0, len(t.Widgets))
		for _, w := range t.Widgets {
			if w = s.plain(w); w != "" {
				widgets = append(widgets, w)
			}
		}
		t.Widgets = widgets
		out = append(out, t)
	}
	return out
}

func (s *Service) plain(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}
