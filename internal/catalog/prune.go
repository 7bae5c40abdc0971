package catalog

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes aged rows from the store.
type Pruner interface {
	PruneEvents(ctx context.Context, retention time.Duration) (int64, error)
	PruneTemplateCache(ctx context.Context, maxAge time.Duration) (int64, error)
}

// PruneConfig controls the prune worker.
type PruneConfig struct {
	Interval       time.Duration
	EventRetention time.Duration
	CacheMaxAge    time.Duration
}

// StartPruneWorker runs a background goroutine that periodically deletes
// funnel events past retention and template cache rows past their max age.
func StartPruneWorker(ctx context.Context, repo Pruner, cfg PruneConfig) {
	ticker := time.NewTicker(cfg.Interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Prune worker started", "interval", cfg.Interval, "event_retention", cfg.EventRetention, "cache_max_age", cfg.CacheMaxAge)

		for {
			select {
			case <-ticker.C:
				prune(ctx, repo, cfg)
			case <-ctx.Done():
				slog.Info("Prune worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func prune(ctx context.Context, repo Pruner, cfg PruneConfig) {
	if cfg.EventRetention > 0 {
		if deleted, err := repo.PruneEvents(ctx, cfg.EventRetention); err != nil {
			slog.Error("Prune worker failed to delete old events", "error", err)
		} else if deleted > 0 {
			slog.Info("Prune worker deleted old events", "count", deleted)
		}
	}

	if cfg.CacheMaxAge > 0 {
		if deleted, err := repo.PruneTemplateCache(ctx, cfg.CacheMaxAge); err != nil {
			slog.Error("Prune worker failed to expire template cache", "error", err)
		} else if deleted > 0 {
			slog.Info("Prune worker expired template cache", "count", deleted)
		}
	}
}
