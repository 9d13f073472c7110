package store

import (
	"context"
	"log/slog"
	"time"

	"xuper/internal/observability/metrics"
)

// RunJanitor purges expired verification codes every interval until ctx is
// done. It runs for the SQL and Redis code stores; Redis keys outlive their
// code by a grace window and are dropped here once the code has expired.
// Mongo relies on its TTL index instead.
func RunJanitor(ctx context.Context, codes VerificationStore, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("verification janitor stopped")
			return
		case <-ticker.C:
			n, err := codes.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				logger.Warn("purge expired verification codes", "error", err)
				continue
			}
			if n > 0 {
				metrics.VerificationCodesPurgedTotal.Add(float64(n))
				logger.Debug("purged expired verification codes", "count", n)
			}
		}
	}
}
