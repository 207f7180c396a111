package session

import (
	"context"
	"fmt"

	"backgammon-arena/internal/backgammon"

	"github.com/rs/zerolog/log"
)

// Roll rolls the dice for the player on turn and arms the turn timer.
func (c *Coordinator) Roll(ctx context.Context, gameID, address string) (res RollResult, err error) {
	defer func() { observeCommand("roll_dice", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := playerIn(s, address)
		if err != nil {
			return err
		}
		if s.State.HasDice() {
			return ErrDiceAlreadyRolled
		}
		if color != s.State.CurrentPlayer {
			return ErrNotYourTurn
		}
		if s.pendingConfirmation != "" {
			return ErrAwaitingConfirmation
		}
		if s.pendingDouble != "" {
			return ErrDoublePending
		}

		turn := s.State.TurnNumber + 1
		pair, commitHash, serverSeed, err := c.drawDice(s.ID, turn, address)
		if err != nil {
			return err
		}
		next, err := c.rules.SetDice(s.State, pair[0], pair[1])
		if err != nil {
			return fmt.Errorf("apply dice: %w", err)
		}
		s.turnMoveStack = nil
		s.State = next
		now := c.now()
		s.turnStartedAt = now
		s.lastMoveAt = now
		legal := c.rules.LegalFirstMoves(next.Board, next.CurrentPlayer, next.MovesRemaining)
		c.armTurnTimer(s)

		if commitHash != "" {
			c.broadcast(s, Event{Type: EventDiceCommit, CommitHash: commitHash, TurnNumber: turn})
		}
		rolled := Event{
			Type:       EventDiceRolled,
			Dice:       []int{pair[0], pair[1]},
			Player:     color,
			GameState:  stateRef(next),
			CommitHash: commitHash,
			ServerSeed: serverSeed,
			TurnNumber: turn,
		}
		own := rolled
		own.LegalMoves = legal
		own.NeedsConfirmation = len(legal) == 0
		c.broadcastSplit(s, color, own, rolled)
		c.persist(s)

		res = RollResult{
			Dice:              pair,
			State:             next.Clone(),
			LegalMoves:        legal,
			NeedsConfirmation: len(legal) == 0,
			CommitHash:        commitHash,
			ServerSeed:        serverSeed,
		}
		return nil
	})
	return res, err
}

// drawDice commits and reveals through the fairness engine, falling back to
// plain crypto/rand dice if either step fails.
func (c *Coordinator) drawDice(gameID string, turn int, clientSeed string) ([2]int, string, string, error) {
	commit, err := c.dice.CreateTurnCommit(gameID, turn)
	if err == nil {
		reveal, revealErr := c.dice.RevealDice(gameID, turn, clientSeed)
		if revealErr == nil {
			return reveal.Dice, commit.CommitHash, reveal.ServerSeed, nil
		}
		err = revealErr
	}
	metricDiceFallbacks.Inc()
	log.Warn().Err(err).Str("game_id", gameID).Int("turn", turn).Msg("dice commit failed, using fallback roll")
	pair, err := c.fallbackDice()
	if err != nil {
		return [2]int{}, "", "", fmt.Errorf("fallback dice: %w", err)
	}
	return pair, "", "", nil
}

// Move applies one checker move. The mover may also be the player whose turn
// just auto-ended and who has not confirmed yet, after an undo.
func (c *Coordinator) Move(ctx context.Context, gameID, address string, from, to int) (res MoveResult, err error) {
	defer func() { observeCommand("move", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := playerIn(s, address)
		if err != nil {
			return err
		}
		if color != s.State.CurrentPlayer && s.pendingConfirmation != address {
			return ErrNotYourTurn
		}
		if !s.State.HasDice() {
			return ErrNoDice
		}
		next, move, ok := c.rules.MakeMove(s.State, from, to)
		if !ok {
			return ErrInvalidMove
		}
		s.turnMoveStack = append(s.turnMoveStack, s.State.Clone())
		s.State = next
		c.recordMoveTime(s, color, c.now())

		autoEnded := next.CurrentPlayer != color && !next.GameOver
		var legal []backgammon.Move
		if !autoEnded && !next.GameOver {
			legal = c.rules.LegalFirstMoves(next.Board, next.CurrentPlayer, next.MovesRemaining)
		}
		if autoEnded {
			s.pendingConfirmation = address
		} else if !next.GameOver {
			c.armTurnTimer(s)
		}

		made := Event{Type: EventMoveMade, Move: &move, Player: color, GameState: stateRef(next)}
		own := made
		own.LegalMoves = legal
		own.NeedsConfirmation = autoEnded
		others := made
		if !autoEnded {
			others.LegalMoves = legal
		}
		c.broadcastSplit(s, color, own, others)

		if next.GameOver {
			c.finishLocked(s, "game_over")
		} else {
			c.persist(s)
		}
		res = MoveResult{
			Move:          move,
			Player:        color,
			State:         next.Clone(),
			LegalMoves:    legal,
			TurnAutoEnded: autoEnded,
			GameOver:      next.GameOver,
		}
		return nil
	})
	return res, err
}

// EndTurn either confirms an auto-ended turn or, for the player on turn with
// no legal move left, passes the turn.
func (c *Coordinator) EndTurn(ctx context.Context, gameID, address string) (state backgammon.State, err error) {
	defer func() { observeCommand("end_turn", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := playerIn(s, address)
		if err != nil {
			return err
		}
		if s.pendingConfirmation == address {
			s.pendingConfirmation = ""
			s.turnMoveStack = nil
			c.stopTurnTimer(s)
		} else {
			if color != s.State.CurrentPlayer {
				return ErrNotYourTurn
			}
			if !s.State.HasDice() {
				return ErrNoDice
			}
			if c.rules.HasLegalMoves(s.State) {
				return ErrLegalMovesRemain
			}
			s.turnMoveStack = nil
			s.State = c.rules.EndTurn(s.State)
			c.stopTurnTimer(s)
		}
		c.broadcast(s, Event{
			Type:       EventTurnEnded,
			Player:     color,
			NextPlayer: s.State.CurrentPlayer,
			GameState:  stateRef(s.State),
		})
		c.persist(s)
		state = s.State.Clone()
		return nil
	})
	return state, err
}

// Undo restores the state before the last move of the current turn.
func (c *Coordinator) Undo(ctx context.Context, gameID, address string) (res UndoResult, err error) {
	defer func() { observeCommand("undo_move", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := playerIn(s, address)
		if err != nil {
			return err
		}
		pending := s.pendingConfirmation == address
		if !pending && s.pendingConfirmation != "" {
			return ErrAwaitingConfirmation
		}
		if !pending && color != s.State.CurrentPlayer {
			return ErrNotYourTurn
		}
		n := len(s.turnMoveStack)
		if n == 0 {
			return ErrNothingToUndo
		}
		s.State = s.turnMoveStack[n-1]
		s.turnMoveStack = s.turnMoveStack[:n-1]
		if pending && s.State.CurrentPlayer == color {
			s.pendingConfirmation = ""
		}
		legal := c.rules.LegalFirstMoves(s.State.Board, s.State.CurrentPlayer, s.State.MovesRemaining)
		c.armTurnTimer(s)

		c.broadcast(s, Event{
			Type:       EventMoveUndone,
			Player:     color,
			GameState:  stateRef(s.State),
			LegalMoves: legal,
		})
		c.persist(s)
		res = UndoResult{State: s.State.Clone(), LegalMoves: legal}
		return nil
	})
	return res, err
}

// timeoutLocked ends the turn on behalf of a player who let the turn timer
// run out: a pending confirmation is confirmed, otherwise the turn passes.
func (c *Coordinator) timeoutLocked(s *Session) {
	actor := s.State.CurrentPlayer
	if s.pendingConfirmation != "" {
		if color, ok := s.colorOf(s.pendingConfirmation); ok {
			actor = color
		}
		s.pendingConfirmation = ""
	} else {
		s.State = c.rules.EndTurn(s.State)
	}
	s.turnMoveStack = nil
	metricTurnTimeouts.Inc()
	log.Info().Str("game_id", s.ID).Str("player", string(actor)).Int("turn", s.State.TurnNumber).Msg("turn timed out")
	c.broadcast(s, Event{
		Type:       EventTurnEnded,
		Player:     actor,
		NextPlayer: s.State.CurrentPlayer,
		Reason:     "timeout",
		GameState:  stateRef(s.State),
	})
	c.persist(s)
}
