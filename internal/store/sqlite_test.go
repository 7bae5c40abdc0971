package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/ai-onboarding/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTemplateCacheRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, fetchedAt, err := s.LoadTemplates(ctx)
	if err != nil {
		t.Fatalf("LoadTemplates on empty cache failed: %v", err)
	}
	if got != nil || !fetchedAt.IsZero() {
		t.Fatalf("Expected empty cache, got %v at %v", got, fetchedAt)
	}

	want := []domain.Template{{
		ID:          "expense-tracker",
		Name:        "Expense tracker",
		Description: "Track spending",
		Category:    "finance",
		Widgets:     []string{"Table", "Chart"},
		Sources:     []domain.Source{{Name: "PostgreSQL", ID: "postgresql"}},
	}}
	now := time.Unix(1_700_000_000, 0)
	if err := s.SaveTemplates(ctx, want, now); err != nil {
		t.Fatalf("SaveTemplates failed: %v", err)
	}

	got, fetchedAt, err = s.LoadTemplates(ctx)
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("templates mismatch (-want +got):\n%s", diff)
	}
	if !fetchedAt.Equal(now) {
		t.Errorf("Expected fetchedAt %v, got %v", now, fetchedAt)
	}

	if err := s.SaveTemplates(ctx, nil, now.Add(time.Minute)); err != nil {
		t.Fatalf("SaveTemplates overwrite failed: %v", err)
	}
	got, _, err = s.LoadTemplates(ctx)
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected overwrite to empty list, got %v", got)
	}
}

func TestRecordEventAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &domain.Event{VisitorID: "anon_1", Kind: domain.EventPromptSubmitted, Detail: "len=12"}
	if err := s.RecordEvent(ctx, first); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	if first.ID == "" {
		t.Error("Expected RecordEvent to assign an ID")
	}
	if err := s.RecordEvent(ctx, &domain.Event{VisitorID: "anon_1", Kind: domain.EventSessionMissing}); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	if err := s.RecordEvent(ctx, &domain.Event{VisitorID: "anon_2", Kind: domain.EventSSOStarted}); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	events, err := s.EventsForVisitor(ctx, "anon_1")
	if err != nil {
		t.Fatalf("EventsForVisitor failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Kind != domain.EventPromptSubmitted || events[0].Detail != "len=12" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Kind != domain.EventSessionMissing || events[1].Detail != "" {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	if err := s.RecordEvent(ctx, &domain.Event{VisitorID: "anon_1", Kind: domain.EventLoginFailed, CreatedAt: old}); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	if err := s.RecordEvent(ctx, &domain.Event{VisitorID: "anon_1", Kind: domain.EventLoginSucceeded}); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	if err := s.SaveTemplates(ctx, []domain.Template{{ID: "t"}}, old); err != nil {
		t.Fatalf("SaveTemplates failed: %v", err)
	}

	n, err := s.PruneEvents(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneEvents failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 pruned event, got %d", n)
	}

	n, err = s.PruneTemplateCache(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneTemplateCache failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 pruned cache row, got %d", n)
	}

	templates, _, err := s.LoadTemplates(ctx)
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}
	if templates != nil {
		t.Errorf("Expected cache to be empty after prune, got %v", templates)
	}
}

func TestConnectionPragmas(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected journal_mode wal, got %q", mode)
	}

	// Each pooled connection must carry the busy timeout, not only the first.
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		conn, err := s.db.Conn(ctx)
		if err != nil {
			t.Fatalf("open conn %d: %v", i, err)
		}
		conns[i] = conn
	}
	for i, conn := range conns {
		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("query busy_timeout on conn %d: %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d: expected busy_timeout 5000, got %d", i, timeout)
		}
		_ = conn.Close()
	}
}
