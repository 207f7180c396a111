package session

import (
	"context"
	"math"
	"time"

	"backgammon-arena/internal/backgammon"

	"github.com/rs/zerolog/log"
)

// Attach re-binds a returning player's connection to their game. A running
// grace period for that player is cancelled and the opponent told.
func (c *Coordinator) Attach(ctx context.Context, address string, conn Conn) (res JoinResult, err error) {
	defer func() { observeCommand("reconnect", err) }()
	gameID, ok := c.registry.LookupByPlayer(address)
	if !ok {
		return JoinResult{}, ErrGameNotFound
	}
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, ok := s.colorOf(address)
		if !ok {
			return ErrNotAPlayer
		}
		s.seat(color).Conn = conn
		res = JoinResult{GameID: s.ID, Color: color, Opponent: s.addressOf(color.Opponent()), Started: s.Status == StatusPlaying}
		if s.disconnectedPlayer == address {
			c.stopGrace(s)
			c.sendToPlayer(s, color.Opponent(), Event{Type: EventOpponentReconnected})
			log.Info().Str("game_id", s.ID).Str("player", address).Msg("player reconnected")
		}
		if s.Status == StatusPlaying {
			c.send(conn, Event{
				Type:      EventGameStart,
				GameID:    s.ID,
				Color:     color,
				White:     s.addressOf(backgammon.White),
				Black:     s.addressOf(backgammon.Black),
				GameState: stateRef(s.State),
			})
		} else {
			c.send(conn, Event{Type: EventGameCreated, GameID: s.ID, Color: color, WagerAmount: s.WagerAmount})
		}
		return nil
	})
	return res, err
}

// Detach clears a dropped connection from its seat and, for a game in
// progress, starts the disconnect grace period. A connection that was
// already replaced by a newer one is ignored.
func (c *Coordinator) Detach(ctx context.Context, address, connID string) error {
	gameID, ok := c.registry.LookupByPlayer(address)
	if !ok {
		return nil
	}
	return c.withSession(ctx, gameID, func(s *Session) error {
		color, ok := s.colorOf(address)
		if !ok {
			return nil
		}
		seat := s.seat(color)
		if seat.Conn == nil || seat.Conn.ID() != connID {
			return nil
		}
		seat.Conn = nil
		if s.Status == StatusPlaying && !s.State.GameOver {
			c.startGraceLocked(s, address)
		}
		return nil
	})
}

// startGraceLocked begins the forfeit countdown for address. When the other
// player is already counting down, that clock keeps running.
func (c *Coordinator) startGraceLocked(s *Session, address string) {
	if s.disconnectedPlayer != "" && s.disconnectedPlayer != address {
		return
	}
	c.stopGrace(s)
	color, _ := s.colorOf(address)
	s.disconnectedPlayer = address
	s.disconnectedAt = c.now()
	stop := make(chan struct{})
	s.graceStop = stop
	token := s.graceToken

	grace := c.timing.DisconnectGrace
	c.sendToPlayer(s, color.Opponent(), Event{
		Type:         EventOpponentDisconnecting,
		Player:       color,
		GraceSeconds: int(math.Ceil(grace.Seconds())),
	})
	log.Info().Str("game_id", s.ID).Str("player", address).Dur("grace", grace).Msg("player disconnected, grace started")
	go c.runGrace(s.ID, token, stop, grace, c.timing.CountdownInterval)
}

func (c *Coordinator) stopGrace(s *Session) {
	s.graceToken++
	if s.graceStop != nil {
		close(s.graceStop)
		s.graceStop = nil
	}
	s.disconnectedPlayer = ""
	s.disconnectedAt = time.Time{}
}

func (c *Coordinator) runGrace(gameID string, token uint64, stop <-chan struct{}, grace, interval time.Duration) {
	deadline := time.NewTimer(grace)
	ticker := time.NewTicker(interval)
	defer deadline.Stop()
	defer ticker.Stop()
	started := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-deadline.C:
			c.expireGrace(gameID, token)
			return
		case now := <-ticker.C:
			remaining := grace - now.Sub(started)
			if remaining <= 0 {
				continue
			}
			c.graceCountdown(gameID, token, int(math.Ceil(remaining.Seconds())))
		}
	}
}

func (c *Coordinator) graceCountdown(gameID string, token uint64, seconds int) {
	_ = c.withSession(context.Background(), gameID, func(s *Session) error {
		if s.graceToken != token || s.disconnectedPlayer == "" {
			return nil
		}
		color, ok := s.colorOf(s.disconnectedPlayer)
		if !ok {
			return nil
		}
		c.sendToPlayer(s, color.Opponent(), Event{Type: EventDisconnectCountdown, SecondsRemaining: seconds})
		return nil
	})
}

// expireGrace forfeits the game for the disconnected player. It runs under the
// game lock and re-checks the token, so a reconnect or a finish that won the
// race turns it into a no-op.
func (c *Coordinator) expireGrace(gameID string, token uint64) {
	_ = c.withSession(context.Background(), gameID, func(s *Session) error {
		if s.graceToken != token || s.disconnectedPlayer == "" {
			return nil
		}
		loser, ok := s.colorOf(s.disconnectedPlayer)
		address := s.disconnectedPlayer
		c.stopGrace(s)
		if !ok || s.Status != StatusPlaying {
			return nil
		}
		s.State = c.rules.Resign(s.State, loser, backgammon.ResultNormal)
		log.Info().Str("game_id", s.ID).Str("player", address).Msg("grace expired, player forfeits")
		c.finishLocked(s, "disconnect_forfeit")
		return nil
	})
}
