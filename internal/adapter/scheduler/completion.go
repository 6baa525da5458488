package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type BookingCompleter interface {
	CompleteElapsedBookings(ctx context.Context, now time.Time) (int, error)
}

// CompletionWorker periodically moves Confirmed bookings whose stay has
// ended to Completed.
type CompletionWorker struct {
	completer BookingCompleter
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewCompletionWorker(completer BookingCompleter, interval time.Duration, logger *slog.Logger) *CompletionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CompletionWorker{
		completer: completer,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (w *CompletionWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("completion worker started", "interval", w.interval)

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("completion worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CompletionWorker) sweep(ctx context.Context) {
	completed, err := w.completer.CompleteElapsedBookings(ctx, w.now())
	if err != nil {
		w.logger.Error("completion sweep had failures", "completed", completed, "error", err)
		return
	}

	if completed > 0 {
		w.logger.Info("bookings completed", "count", completed)
	}
}
