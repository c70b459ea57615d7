package workers

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

type Refresher interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
	RefreshUser(ctx context.Context, userID string) *domain.Snapshot
}

type RefreshJob struct {
	UserID string
}

// RefreshWorker runs aggregation cycles in the background: one per queued
// job, plus one per tick for the logged in user when an interval is set.
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
	jobs      chan RefreshJob
	done      chan struct{}
	logger    *zap.Logger
}

func NewRefreshWorker(refresher Refresher, interval time.Duration, logger *zap.Logger) *RefreshWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
		jobs:      make(chan RefreshJob, 100),
		done:      make(chan struct{}),
		logger:    logger,
	}
}

func (w *RefreshWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)

		var tick <-chan time.Time
		if w.interval > 0 {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		w.logger.Info("[WORKER] refresh worker started", zap.Duration("interval", w.interval))
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-tick:
				w.refreshCurrent(ctx)
			case <-ctx.Done():
				w.logger.Info("[WORKER] refresh worker shutting down")
				return
			}
		}
	}()
}

// Done is closed once the worker goroutine has returned.
func (w *RefreshWorker) Done() <-chan struct{} {
	return w.done
}

// Enqueue never blocks; a full queue drops the job.
func (w *RefreshWorker) Enqueue(userID string) bool {
	select {
	case w.jobs <- RefreshJob{UserID: userID}:
		return true
	default:
		w.logger.Warn("[WORKER] queue full, dropping refresh", zap.String("user_id", userID))
		return false
	}
}

func (w *RefreshWorker) processJob(ctx context.Context, job RefreshJob) {
	if job.UserID == "" {
		return
	}
	w.report(job.UserID, w.refresher.RefreshUser(ctx, job.UserID))
}

func (w *RefreshWorker) refreshCurrent(ctx context.Context) {
	snap, err := w.refresher.Refresh(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthTokenMissing) {
			w.logger.Debug("[WORKER] no session, skipping tick")
			return
		}
		w.logger.Warn("[WORKER] scheduled refresh failed", zap.Error(err))
		return
	}
	w.report(snap.UserID, snap)
}

func (w *RefreshWorker) report(userID string, snap *domain.Snapshot) {
	switch {
	case snap == nil:
		return
	case snap.Failed():
		w.logger.Warn("[WORKER] refresh failed", zap.String("user_id", userID), zap.Error(snap.Err))
	case snap.Stale:
		w.logger.Debug("[WORKER] refresh superseded", zap.String("user_id", userID), zap.Uint64("generation", snap.Generation))
	default:
		w.logger.Info("[WORKER] refresh complete",
			zap.String("user_id", userID),
			zap.Uint64("generation", snap.Generation),
			zap.Int("new_badges", len(snap.NewBadges)),
			zap.String("warning", snap.Warning),
		)
	}
}
