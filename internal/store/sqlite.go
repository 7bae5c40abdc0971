package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/ai-onboarding/internal/domain"
	"github.com/ashureev/ai-onboarding/internal/shared"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const libraryAppsKey = "library_apps"

var _ Repository = (*SQLiteStore)(nil)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	retry shared.RetryPolicy
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, retry: shared.DefaultRetryPolicy}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS template_cache (
		cache_key TEXT PRIMARY KEY,
		payload_json TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS onboarding_events (
		event_id TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_visitor ON onboarding_events(visitor_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_events_created ON onboarding_events(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveTemplates replaces the cached template list.
func (s *SQLiteStore) SaveTemplates(ctx context.Context, templates []domain.Template, fetchedAt time.Time) error {
	if templates == nil {
		templates = []domain.Template{}
	}
	payload, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}

	query := `
	INSERT INTO template_cache (cache_key, payload_json, fetched_at)
	VALUES (?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
		payload_json = excluded.payload_json,
		fetched_at = excluded.fetched_at`

	return shared.RetryOnConflict(ctx, "save_templates", s.retry, func() error {
		if _, err := s.db.ExecContext(ctx, query, libraryAppsKey, string(payload), fetchedAt.Unix()); err != nil {
			return fmt.Errorf("save templates: %w", err)
		}
		return nil
	})
}

// LoadTemplates returns the cached template list.
func (s *SQLiteStore) LoadTemplates(ctx context.Context) ([]domain.Template, time.Time, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload_json, fetched_at FROM template_cache WHERE cache_key = ?`, libraryAppsKey)

	var payload string
	var fetchedAt int64
	err := row.Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("scan template cache: %w", err)
	}

	var templates []domain.Template
	if err := json.Unmarshal([]byte(payload), &templates); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode template cache: %w", err)
	}
	return templates, time.Unix(fetchedAt, 0), nil
}

// RecordEvent appends a funnel event. A missing ID or timestamp is filled in.
func (s *SQLiteStore) RecordEvent(ctx context.Context, event *domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var detail interface{}
	if event.Detail != "" {
		detail = event.Detail
	}

	query := `
	INSERT INTO onboarding_events (event_id, visitor_id, kind, detail, created_at)
	VALUES (?, ?, ?, ?, ?)`

	return shared.RetryOnConflict(ctx, "record_event", s.retry, func() error {
		if _, err := s.db.ExecContext(ctx, query,
			event.ID, event.VisitorID, string(event.Kind), detail, event.CreatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("record event: %w", err)
		}
		return nil
	})
}

// EventsForVisitor lists a visitor's events, oldest first.
func (s *SQLiteStore) EventsForVisitor(ctx context.Context, visitorID string) ([]domain.Event, error) {
	query := `
		SELECT event_id, visitor_id, kind, detail, created_at
		FROM onboarding_events WHERE visitor_id = ?
		ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, visitorID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close event rows", "error", closeErr)
		}
	}()

	var events []domain.Event
	for rows.Next() {
		var ev domain.Event
		var kind string
		var detail sql.NullString
		var createdAt int64
		if err := rows.Scan(&ev.ID, &ev.VisitorID, &kind, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.Kind = domain.EventKind(kind)
		ev.Detail = detail.String
		ev.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// PruneEvents deletes events older than the retention window.
func (s *SQLiteStore) PruneEvents(ctx context.Context, retention time.Duration) (int64, error) {
	threshold := time.Now().Add(-retention).Unix()
	return s.deleteOlderThan(ctx, "prune_events", `DELETE FROM onboarding_events WHERE created_at < ?`, threshold)
}

// PruneTemplateCache deletes cached templates older than maxAge.
func (s *SQLiteStore) PruneTemplateCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	threshold := time.Now().Add(-maxAge).Unix()
	return s.deleteOlderThan(ctx, "prune_template_cache", `DELETE FROM template_cache WHERE fetched_at < ?`, threshold)
}

func (s *SQLiteStore) deleteOlderThan(ctx context.Context, op, query string, threshold int64) (int64, error) {
	var affected int64
	err := shared.RetryOnConflict(ctx, op, s.retry, func() error {
		result, err := s.db.ExecContext(ctx, query, threshold)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		return nil
	})
	return affected, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
