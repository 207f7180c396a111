package session

import (
	"time"

	"backgammon-arena/internal/backgammon"

	"github.com/rs/zerolog/log"
)

const (
	stallWindow     = 10
	stallMinSamples = 5
)

// recordMoveTime keeps the trailing move durations of a game and warns the
// mover once when the average crosses the stall threshold.
func (c *Coordinator) recordMoveTime(s *Session, mover backgammon.Player, now time.Time) {
	if s.lastMoveAt.IsZero() {
		s.lastMoveAt = now
		return
	}
	s.moveTimes = append(s.moveTimes, now.Sub(s.lastMoveAt))
	if len(s.moveTimes) > stallWindow {
		s.moveTimes = s.moveTimes[len(s.moveTimes)-stallWindow:]
	}
	s.lastMoveAt = now
	if s.stallingWarned || !stalling(s.moveTimes, c.timing.StallThreshold) {
		return
	}
	s.stallingWarned = true
	log.Info().Str("game_id", s.ID).Str("player", string(mover)).Msg("stalling warning issued")
	c.sendToPlayer(s, mover, Event{
		Type:    EventStallingWarning,
		Message: "Moves are taking unusually long. Please keep the game moving.",
	})
}

func stalling(samples []time.Duration, threshold time.Duration) bool {
	if len(samples) < stallMinSamples || threshold <= 0 {
		return false
	}
	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total/time.Duration(len(samples)) > threshold
}
