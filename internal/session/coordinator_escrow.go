package session

import (
	"context"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/escrow"

	"github.com/rs/zerolog/log"
)

type escrowTarget struct {
	white, black string
	wager        int64
	winner       string
	multiplier   int
}

// CreateEscrowForGame opens an escrow for a wagered game once both players
// can cover the wager. Gateway calls happen outside the game lock; failure
// leaves the session untouched and returns false.
func (c *Coordinator) CreateEscrowForGame(ctx context.Context, gameID string) bool {
	if c.escrow == nil {
		return false
	}
	var t escrowTarget
	err := c.withSession(ctx, gameID, func(s *Session) error {
		if s.Status != StatusPlaying || s.EscrowStatus != EscrowNone || s.WagerAmount <= 0 || s.escrowInFlight {
			return ErrEscrowState
		}
		if s.White == nil || s.Black == nil {
			return ErrEscrowState
		}
		s.escrowInFlight = true
		t = escrowTarget{white: s.White.Address, black: s.Black.Address, wager: s.WagerAmount}
		return nil
	})
	if err != nil {
		return false
	}

	ok := c.openEscrow(ctx, gameID, t)
	_ = c.withSession(context.Background(), gameID, func(s *Session) error {
		s.escrowInFlight = false
		if !ok || s.EscrowStatus != EscrowNone {
			return nil
		}
		s.EscrowStatus = EscrowPendingDeposits
		c.broadcast(s, Event{Type: EventEscrowCreated, WagerAmount: s.WagerAmount})
		c.persist(s)
		return nil
	})
	return ok
}

func (c *Coordinator) openEscrow(ctx context.Context, gameID string, t escrowTarget) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timing.EscrowTimeout)
	defer cancel()
	for _, addr := range []string{t.white, t.black} {
		bal, err := c.escrow.QueryBalance(ctx, addr)
		if err != nil {
			metricEscrowOps.WithLabelValues("balance", "error").Inc()
			log.Warn().Err(err).Str("game_id", gameID).Str("player", addr).Msg("escrow balance query failed")
			return false
		}
		if bal < t.wager {
			metricEscrowOps.WithLabelValues("create", "insufficient_balance").Inc()
			log.Info().Str("game_id", gameID).Str("player", addr).Int64("balance", bal).Int64("wager", t.wager).Msg("escrow skipped, balance below wager")
			return false
		}
	}
	if err := c.escrow.CreateEscrow(ctx, gameID, t.white, t.black, t.wager); err != nil {
		metricEscrowOps.WithLabelValues("create", "error").Inc()
		log.Error().Err(err).Str("game_id", gameID).Msg("create escrow failed")
		return false
	}
	metricEscrowOps.WithLabelValues("create", "ok").Inc()
	log.Info().Str("game_id", gameID).Int64("wager", t.wager).Msg("escrow created")
	return true
}

// MarkEscrowActive records that both deposits arrived. If the game already
// finished, settlement starts right away.
func (c *Coordinator) MarkEscrowActive(ctx context.Context, gameID string) error {
	settle := false
	err := c.withSession(ctx, gameID, func(s *Session) error {
		if s.EscrowStatus != EscrowPendingDeposits {
			return ErrEscrowState
		}
		s.EscrowStatus = EscrowActive
		c.broadcast(s, Event{Type: EventEscrowActive})
		c.persist(s)
		settle = s.Status == StatusFinished
		return nil
	})
	if err == nil && settle {
		go c.SettleEscrow(context.Background(), gameID)
	}
	return err
}

// SettleEscrow pays out an active escrow for a finished game. A failed call
// leaves the escrow active and the game result as it is.
func (c *Coordinator) SettleEscrow(ctx context.Context, gameID string) bool {
	if c.escrow == nil {
		return false
	}
	var t escrowTarget
	err := c.withSession(ctx, gameID, func(s *Session) error {
		if s.EscrowStatus != EscrowActive || s.Status != StatusFinished || s.escrowInFlight {
			return ErrEscrowState
		}
		winner := s.addressOf(s.State.Winner)
		if winner == "" {
			return ErrEscrowState
		}
		s.escrowInFlight = true
		t = escrowTarget{winner: winner, multiplier: escrow.Multiplier(resultOrNormal(s.State.ResultType), s.State.CubeValue)}
		return nil
	})
	if err != nil {
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timing.EscrowTimeout)
	settleErr := c.escrow.Settle(callCtx, gameID, t.winner, t.multiplier)
	cancel()
	if settleErr != nil {
		metricEscrowOps.WithLabelValues("settle", "error").Inc()
		log.Error().Err(settleErr).Str("game_id", gameID).Str("winner", t.winner).Int("multiplier", t.multiplier).Msg("settle escrow failed")
	} else {
		metricEscrowOps.WithLabelValues("settle", "ok").Inc()
		log.Info().Str("game_id", gameID).Str("winner", t.winner).Int("multiplier", t.multiplier).Msg("escrow settled")
	}

	_ = c.withSession(context.Background(), gameID, func(s *Session) error {
		s.escrowInFlight = false
		if settleErr != nil {
			return nil
		}
		s.EscrowStatus = EscrowSettled
		c.broadcast(s, Event{Type: EventEscrowSettled, Winner: s.State.Winner})
		return nil
	})
	return settleErr == nil
}

func (c *Coordinator) cancelEscrow(gameID string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timing.EscrowTimeout)
	defer cancel()
	if err := c.escrow.Cancel(ctx, gameID); err != nil {
		metricEscrowOps.WithLabelValues("cancel", "error").Inc()
		log.Error().Err(err).Str("game_id", gameID).Msg("cancel escrow failed")
		return
	}
	metricEscrowOps.WithLabelValues("cancel", "ok").Inc()
	log.Info().Str("game_id", gameID).Msg("escrow cancelled")
}

func resultOrNormal(r backgammon.ResultType) backgammon.ResultType {
	if r.Valid() {
		return r
	}
	return backgammon.ResultNormal
}
