package session

import (
	"context"

	"backgammon-arena/internal/backgammon"
)

// OfferDouble records a double offer and returns the cube value the opponent
// is asked to accept. The cube itself is unchanged until acceptance.
func (c *Coordinator) OfferDouble(ctx context.Context, gameID, address string) (value int, err error) {
	defer func() { observeCommand("offer_double", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := playerIn(s, address)
		if err != nil {
			return err
		}
		if s.pendingDouble != "" {
			return ErrDoublePending
		}
		if s.pendingConfirmation != "" || !c.rules.CanDouble(s.State, color) {
			return ErrCannotDouble
		}
		s.pendingDouble = address
		value = s.State.CubeValue * 2
		c.broadcast(s, Event{Type: EventDoubleOffered, Player: color, CubeValue: value})
		c.persist(s)
		return nil
	})
	return value, err
}

func (c *Coordinator) AcceptDouble(ctx context.Context, gameID, address string) (state backgammon.State, err error) {
	defer func() { observeCommand("accept_double", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := c.answerDouble(s, address)
		if err != nil {
			return err
		}
		s.State = c.rules.AcceptDouble(s.State, color)
		s.pendingDouble = ""
		c.broadcast(s, Event{
			Type:      EventDoubleAccepted,
			Player:    color,
			CubeValue: s.State.CubeValue,
			CubeOwner: s.State.CubeOwner,
			GameState: stateRef(s.State),
		})
		c.persist(s)
		state = s.State.Clone()
		return nil
	})
	return state, err
}

// RejectDouble concedes the game to the doubler at the current cube value.
func (c *Coordinator) RejectDouble(ctx context.Context, gameID, address string) (winner backgammon.Player, err error) {
	defer func() { observeCommand("reject_double", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := c.answerDouble(s, address)
		if err != nil {
			return err
		}
		s.State, winner = c.rules.RejectDouble(s.State, color)
		s.pendingDouble = ""
		c.broadcast(s, Event{Type: EventDoubleRejected, Player: color, Winner: winner, CubeValue: s.State.CubeValue})
		c.finishLocked(s, "double_rejected")
		return nil
	})
	return winner, err
}

func (c *Coordinator) answerDouble(s *Session, address string) (backgammon.Player, error) {
	color, err := playerIn(s, address)
	if err != nil {
		return "", err
	}
	if s.pendingDouble == "" {
		return "", ErrNoDoubleOffer
	}
	if s.pendingDouble == address {
		return "", ErrOwnDouble
	}
	return color, nil
}
