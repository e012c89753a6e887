package workers

import (
	"context"
	"time"

	"mindStepsAPI/engine"
	"mindStepsAPI/internal/logger"
)

type WeeklyResetter interface {
	ResetWeeklyPoints(ctx context.Context) (int64, error)
}

// WeeklyResetWorker zeroes every user's weekly points at Monday 00:00 in
// loc. Ledger reads also clear stale weekly points, so a missed run only
// leaves rows untouched until their owner is next seen.
type WeeklyResetWorker struct {
	store WeeklyResetter
	loc   *time.Location
	log   *logger.Logger
	now   func() time.Time
}

func NewWeeklyResetWorker(store WeeklyResetter, loc *time.Location, log *logger.Logger) *WeeklyResetWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &WeeklyResetWorker{store: store, loc: loc, log: log, now: time.Now}
}

// NextReset is the first week boundary strictly after t.
func (w *WeeklyResetWorker) NextReset(t time.Time) time.Time {
	return engine.WeekStart(t.In(w.loc)).AddDate(0, 0, 7)
}

// Start runs the worker until ctx is cancelled.
func (w *WeeklyResetWorker) Start(ctx context.Context) {
	go func() {
		for {
			wait := w.NextReset(w.now()).Sub(w.now())
			timer := time.NewTimer(wait)
			w.log.Debug("weekly reset scheduled", "in", wait.String())

			select {
			case <-timer.C:
				w.RunOnce(ctx)
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}
	}()
}

func (w *WeeklyResetWorker) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	n, err := w.store.ResetWeeklyPoints(ctx)
	if err != nil {
		w.log.Error("weekly points reset failed", "error", err)
		return
	}
	w.log.Info("weekly points reset", "ledgers", n)
}
