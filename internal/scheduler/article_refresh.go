package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

// Refresher reloads a cached resource and reports how many items it holds.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// ArticleRefresher keeps the article front page warm
type ArticleRefresher struct {
	source        Refresher
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewArticleRefresher creates a new article refresher
func NewArticleRefresher(
	source Refresher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ArticleRefresher {
	return &ArticleRefresher{
		source:        source,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads once, then refreshes periodically and on manual trigger.
// A failed first load is logged, not fatal: listings degrade to empty.
func (ar *ArticleRefresher) Start(ctx context.Context) error {
	if ar.interval <= 0 {
		return fmt.Errorf("refresh interval must be > 0, got %v", ar.interval)
	}

	if err := ar.Reload(ctx); err != nil {
		ar.logger.Warn("initial article load failed", logger.Error(err))
	}

	// Start periodic reload
	ticker := time.NewTicker(ar.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := ar.Reload(ctx); err != nil {
					ar.logger.Error("failed to refresh articles",
						logger.Error(err))
				}
			case <-ar.manualTrigger:
				ar.logger.Info("manual article refresh triggered")
				if err := ar.Reload(ctx); err != nil {
					ar.logger.Error("failed to refresh articles",
						logger.Error(err))
				}
			case <-ar.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresher
func (ar *ArticleRefresher) Stop() {
	close(ar.stopCh)
}

// Reload fetches the front page once
func (ar *ArticleRefresher) Reload(ctx context.Context) error {
	start := time.Now()

	n, err := ar.source.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh articles: %w", err)
	}

	ar.logger.Info("articles refreshed",
		logger.Int("count", n),
		logger.Duration("took", time.Since(start)))
	return nil
}
