package workers

import (
	"context"
	"log/slog"
	"time"

	"valoracademy/internal/http-api/service"
)

// SubscriptionSyncWorker periodically reconciles local subscription rows
// against Stripe. It is a safety net for webhook deliveries that were missed
// or arrived out of order.
type SubscriptionSyncWorker struct {
	subscriptionService service.SubscriptionService
	interval            time.Duration
	logger              *slog.Logger
}

func NewSubscriptionSyncWorker(subscriptionService service.SubscriptionService, interval time.Duration, logger *slog.Logger) *SubscriptionSyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionSyncWorker{
		subscriptionService: subscriptionService,
		interval:            interval,
		logger:              logger,
	}
}

// Start runs the sync loop until ctx is cancelled. Call in a goroutine.
func (w *SubscriptionSyncWorker) Start(ctx context.Context) {
	w.logger.Info("subscription sync worker started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("subscription sync worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SubscriptionSyncWorker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	result, err := w.subscriptionService.SyncAll(runCtx)
	if err != nil {
		w.logger.Error("subscription sync failed", "error", err)
		return
	}

	if result.Errors > 0 {
		w.logger.Warn("subscription sync finished with errors",
			"processed", result.Processed, "updated", result.Updated, "errors", result.Errors)
		return
	}
	w.logger.Info("subscription sync finished",
		"processed", result.Processed, "updated", result.Updated)
}
