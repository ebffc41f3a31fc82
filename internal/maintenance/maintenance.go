// Package maintenance runs periodic background tasks as Go tickers.
// All scheduled work is driven from the API process since it is already a
// persistent, long-running service.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Store is the slice of the club store the maintenance tasks use.
type Store interface {
	ExpireStaleJoins(ctx context.Context, age time.Duration) (int64, error)
	PurgeOrphanJoins(ctx context.Context) (int64, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	ExpireInterval time.Duration // mark stale pending join requests expired
	PurgeInterval  time.Duration // remove join records whose match is gone
	JoinExpiryAge  time.Duration // pending age beyond which a join expires
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig(joinExpiryAge time.Duration) Config {
	return Config{
		ExpireInterval: 30 * time.Minute,
		PurgeInterval:  1 * time.Hour,
		JoinExpiryAge:  joinExpiryAge,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, store Store, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"expire", cfg.ExpireInterval,
		"purge", cfg.PurgeInterval,
		"join_expiry_age", cfg.JoinExpiryAge)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.ExpireInterval > 0 {
		t := time.NewTicker(cfg.ExpireInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { expireStaleJoins(ctx, store, cfg.JoinExpiryAge, logger) })
	}

	if cfg.PurgeInterval > 0 {
		t := time.NewTicker(cfg.PurgeInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeOrphanJoins(ctx, store, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// expireStaleJoins marks pending join requests older than the configured
// age as expired so they stop blocking a re-join.
func expireStaleJoins(ctx context.Context, store Store, age time.Duration, logger *slog.Logger) {
	n, err := store.ExpireStaleJoins(ctx, age)
	if err != nil {
		logger.Warn("Maintenance: failed to expire stale joins", "error", err)
	} else if n > 0 {
		logger.Info("Maintenance: expired stale joins", "count", n)
	}
}

// purgeOrphanJoins removes join records left behind when the fallback
// path deleted a match but its players step had failed.
func purgeOrphanJoins(ctx context.Context, store Store, logger *slog.Logger) {
	n, err := store.PurgeOrphanJoins(ctx)
	if err != nil {
		logger.Warn("Maintenance: failed to purge orphan joins", "error", err)
	} else if n > 0 {
		logger.Info("Maintenance: purged orphan joins", "count", n)
	}
}
