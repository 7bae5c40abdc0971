// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/ai-onboarding/internal/domain"
)

// Repository persists the template cache and the onboarding funnel log.
type Repository interface {
	// SaveTemplates replaces the cached template list.
	SaveTemplates(ctx context.Context, templates []domain.Template, fetchedAt time.Time) error

	// LoadTemplates returns the cached template list and when it was fetched.
	// It returns a nil slice and zero time when nothing is cached.
	LoadTemplates(ctx context.Context) ([]domain.Template, time.Time, error)

	// RecordEvent appends a funnel event.
	RecordEvent(ctx context.Context, event *domain.Event) error

	// EventsForVisitor lists a visitor's events, oldest first.
	EventsForVisitor(ctx context.Context, visitorID string) ([]domain.Event, error)

	// PruneEvents deletes events older than the retention window.
	PruneEvents(ctx context.Context, retention time.Duration) (int64, error)

	// PruneTemplateCache deletes cached templates older than maxAge.
	PruneTemplateCache(ctx context.Context, maxAge time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
