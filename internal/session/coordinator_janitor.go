package session

import (
	"context"
	"time"
)

// StartJanitor periodically removes finished games past their retention and
// waiting games nobody has touched or connected to for the idle timeout.
// Playing games are never swept; they end through a result or a forfeit.
func (c *Coordinator) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = c.sweep(ctx, c.now())
			}
		}
	}()
}

func (c *Coordinator) sweep(ctx context.Context, now time.Time) int {
	removed := 0
	for _, id := range c.registry.IDs() {
		_ = c.withSession(ctx, id, func(s *Session) error {
			if !c.expired(s, now) {
				return nil
			}
			c.removeLocked(s)
			removed++
			return nil
		})
	}
	return removed
}

func (c *Coordinator) expired(s *Session, now time.Time) bool {
	if s.Status == StatusFinished {
		return now.Sub(s.FinishedAt) >= c.timing.FinishedRetention
	}
	if s.Status != StatusWaiting {
		return false
	}
	return !s.hasConnectedPlayer() && now.Sub(s.lastActivity) >= c.timing.IdleTimeout
}
