package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunJanitor expires idle sessions every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if s.cfg.IdleTimeout() <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Expire(); n > 0 {
				logger.Info("Expired idle sessions", zap.Int("count", n), zap.Int("open", s.Len()))
			}
		}
	}
}
