package session

import (
	"context"

	"backgammon-arena/internal/backgammon"
)

// Resign ends the game at once for a normal resignation. A gammon or
// backgammon resignation waits for the opponent to accept or reject it.
func (c *Coordinator) Resign(ctx context.Context, gameID, address string, resignType backgammon.ResultType) (res ResignResult, err error) {
	defer func() { observeCommand("resign", err) }()
	if resignType == "" {
		resignType = backgammon.ResultNormal
	}
	if !resignType.Valid() {
		return ResignResult{}, ErrInvalidResignType
	}
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := playerIn(s, address)
		if err != nil {
			return err
		}
		if s.pendingResignation != nil {
			return ErrResignationPending
		}
		if resignType == backgammon.ResultNormal {
			s.State = c.rules.Resign(s.State, color, resignType)
			res = ResignResult{Winner: s.State.Winner, ResultType: resignType}
			c.finishLocked(s, "resignation")
			return nil
		}
		s.pendingResignation = &PendingResignation{Player: address, ResignType: resignType}
		c.broadcast(s, Event{Type: EventResignOffered, Player: color, ResignType: resignType})
		c.persist(s)
		res = ResignResult{Pending: true, ResultType: resignType}
		return nil
	})
	return res, err
}

func (c *Coordinator) AcceptResignation(ctx context.Context, gameID, address string) (res ResignResult, err error) {
	defer func() { observeCommand("accept_resignation", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		pending, err := c.answerResignation(s, address)
		if err != nil {
			return err
		}
		loser, _ := s.colorOf(pending.Player)
		s.pendingResignation = nil
		s.State = c.rules.Resign(s.State, loser, pending.ResignType)
		res = ResignResult{Winner: s.State.Winner, ResultType: pending.ResignType}
		c.broadcast(s, Event{Type: EventResignAccepted, Winner: res.Winner, ResultType: res.ResultType})
		c.finishLocked(s, "resignation")
		return nil
	})
	return res, err
}

func (c *Coordinator) RejectResignation(ctx context.Context, gameID, address string) (err error) {
	defer func() { observeCommand("reject_resignation", err) }()
	return c.withSession(ctx, gameID, func(s *Session) error {
		if _, err := c.answerResignation(s, address); err != nil {
			return err
		}
		s.pendingResignation = nil
		c.broadcast(s, Event{Type: EventResignRejected})
		c.persist(s)
		return nil
	})
}

func (c *Coordinator) answerResignation(s *Session, address string) (PendingResignation, error) {
	if _, err := playerIn(s, address); err != nil {
		return PendingResignation{}, err
	}
	if s.pendingResignation == nil {
		return PendingResignation{}, ErrNoPendingResignation
	}
	if s.pendingResignation.Player == address {
		return PendingResignation{}, ErrOwnResignation
	}
	return *s.pendingResignation, nil
}
