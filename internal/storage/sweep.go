package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunSweeper purges expired sessions every interval until ctx is done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration, logger *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				logger.Warnw("sweep expired sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Debugw("swept expired sessions", "count", n)
			}
		}
	}
}
