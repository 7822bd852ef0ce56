package transfer

import (
	"context"
	"log/slog"
	"time"
)

// SweepInterval is how often the watcher scans for overdue offers. Well
// under the offer window, so an unanswered request never lingers long past
// its deadline.
const SweepInterval = 10 * time.Second

// Watcher guarantees no pending request survives its deadline, whether or
// not any client ever asks about it again.
type Watcher struct {
	requests *Repository
	interval time.Duration
	logger   *slog.Logger
}

func NewWatcher(requests *Repository, logger *slog.Logger) *Watcher {
	return &Watcher{
		requests: requests,
		interval: SweepInterval,
		logger:   logger,
	}
}

// Run sweeps until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx, time.Now()); err != nil {
				w.logger.ErrorContext(ctx, "transfer expiry sweep failed", "error", err)
			}
		}
	}
}

// Sweep expires every unanswered pending request whose deadline has passed.
// Sweeping an already-terminal request is a no-op, so concurrent sweeps and
// a sweep racing a passenger response cannot corrupt state.
func (w *Watcher) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := w.requests.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		resolvedTotal.WithLabelValues("expired").Add(float64(n))
		w.logger.InfoContext(ctx, "expired overdue transfer requests", "count", n)
	}
	return n, nil
}
