package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePruner struct {
	eventRetention time.Duration
	cacheMaxAge    time.Duration
	eventCalls     int
	cacheCalls     int
	err            error
}

func (f *fakePruner) PruneEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.eventCalls++
	f.eventRetention = retention
	return 3, f.err
}

func (f *fakePruner) PruneTemplateCache(_ context.Context, maxAge time.Duration) (int64, error) {
	f.cacheCalls++
	f.cacheMaxAge = maxAge
	return 1, f.err
}

func TestPrunePassesWindows(t *testing.T) {
	p := &fakePruner{}
	prune(context.Background(), p, PruneConfig{EventRetention: 720 * time.Hour, CacheMaxAge: 24 * time.Hour})

	if p.eventRetention != 720*time.Hour || p.cacheMaxAge != 24*time.Hour {
		t.Errorf("unexpected windows: events=%v cache=%v", p.eventRetention, p.cacheMaxAge)
	}
}

func TestPruneSkipsDisabledWindows(t *testing.T) {
	p := &fakePruner{}
	prune(context.Background(), p, PruneConfig{})

	if p.eventCalls != 0 || p.cacheCalls != 0 {
		t.Errorf("Expected no prune calls, got events=%d cache=%d", p.eventCalls, p.cacheCalls)
	}
}

func TestPruneContinuesAfterError(t *testing.T) {
	p := &fakePruner{err: errors.New("database is locked")}
	prune(context.Background(), p, PruneConfig{EventRetention: time.Hour, CacheMaxAge: time.Hour})

	if p.eventCalls != 1 || p.cacheCalls != 1 {
		t.Errorf("Expected both prunes to run, got events=%d cache=%d", p.eventCalls, p.cacheCalls)
	}
}

func TestStartPruneWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	StartPruneWorker(ctx, &fakePruner{}, PruneConfig{Interval: time.Hour})
	cancel()
}
