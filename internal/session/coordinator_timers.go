package session

import (
	"context"
	"time"
)

// armTurnTimer (re)starts the turn deadline. Each arm bumps the token so a
// callback from an older timer finds a mismatch and does nothing.
func (c *Coordinator) armTurnTimer(s *Session) {
	c.stopTurnTimer(s)
	token := s.turnToken
	id := s.ID
	limit := s.turnTimeLimit
	if limit <= 0 {
		limit = c.timing.TurnTimeout
	}
	s.turnTimer = time.AfterFunc(limit, func() { c.onTurnTimeout(id, token) })
}

func (c *Coordinator) stopTurnTimer(s *Session) {
	s.turnToken++
	if s.turnTimer != nil {
		s.turnTimer.Stop()
		s.turnTimer = nil
	}
}

func (c *Coordinator) onTurnTimeout(gameID string, token uint64) {
	_ = c.withSession(context.Background(), gameID, func(s *Session) error {
		if s.turnToken != token || s.turnTimer == nil {
			return nil
		}
		s.turnTimer = nil
		s.turnToken++
		if s.Status != StatusPlaying || s.State.GameOver {
			return nil
		}
		c.timeoutLocked(s)
		return nil
	})
}
