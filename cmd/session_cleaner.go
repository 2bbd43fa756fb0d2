package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pricegov/internal/services"
)

const (
	sessionCleanerInterval = 10 * time.Minute
	sessionCleanerTimeout  = 30 * time.Second
)

// startSessionCleaner drops expired refresh sessions until ctx is done.
func startSessionCleaner(ctx context.Context, svc *services.UserService, logger *zap.Logger) {
	if svc == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(sessionCleanerInterval)
		defer ticker.Stop()

		run := func() {
			runCtx, cancel := context.WithTimeout(ctx, sessionCleanerTimeout)
			defer cancel()

			cleared, err := svc.CleanExpiredSessions(runCtx)
			if err != nil {
				logger.Error("session cleaner: failed to clear expired sessions", zap.Error(err))
				return
			}
			if cleared > 0 {
				logger.Info("session cleaner: cleared expired sessions", zap.Int64("count", cleared))
			}
		}

		run()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
