package session

import (
	"context"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/dice"

	"github.com/rs/zerolog/log"
)

// Create registers an empty waiting game.
func (c *Coordinator) Create(ctx context.Context, wager int64) (View, error) {
	if wager < 0 {
		return View{}, ErrInvalidWager
	}
	s := c.registry.Create(wager, c.rules.NewState(), c.timing.TurnTimeout)
	var v View
	err := c.withSession(ctx, s.ID, func(s *Session) error {
		v = s.view()
		return nil
	})
	return v, err
}

// CreateGame creates a game and seats address as white.
func (c *Coordinator) CreateGame(ctx context.Context, wager int64, address string, conn Conn) (v View, err error) {
	defer func() { observeCommand("create_game", err) }()
	if _, busy := c.registry.LookupByPlayer(address); busy {
		return View{}, ErrAlreadyInGame
	}
	created, err := c.Create(ctx, wager)
	if err != nil {
		return View{}, err
	}
	err = c.withSession(ctx, created.ID, func(s *Session) error {
		color, err := c.registry.Join(s, address, conn)
		if err != nil {
			return err
		}
		c.send(conn, Event{Type: EventGameCreated, GameID: s.ID, Color: color, WagerAmount: s.WagerAmount})
		v = s.view()
		return nil
	})
	if err != nil {
		_ = c.Remove(context.Background(), created.ID)
		return View{}, err
	}
	log.Info().Str("game_id", v.ID).Str("player", address).Int64("wager", wager).Msg("game created")
	return v, nil
}

// Join seats address in an existing game. A second distinct player starts it.
func (c *Coordinator) Join(ctx context.Context, gameID, address string, conn Conn) (res JoinResult, err error) {
	defer func() { observeCommand("join_game", err) }()
	err = c.withSession(ctx, gameID, func(s *Session) error {
		color, err := c.registry.Join(s, address, conn)
		if err != nil {
			return err
		}
		res = JoinResult{GameID: s.ID, Color: color, Opponent: s.addressOf(color.Opponent())}
		c.send(conn, Event{Type: EventGameJoined, GameID: s.ID, Color: color, Opponent: res.Opponent})
		if s.Status == StatusPlaying {
			res.Started = true
			c.startLocked(s)
		}
		return nil
	})
	return res, err
}

// AcceptChallenge creates a game for an accepted challenge, with the
// challenger as white and the accepting player as black.
func (c *Coordinator) AcceptChallenge(ctx context.Context, challenger string, challengerConn Conn, acceptor string, acceptorConn Conn, wager int64) (res JoinResult, err error) {
	defer func() { observeCommand("accept_challenge", err) }()
	if challenger == acceptor {
		return JoinResult{}, ErrCannotJoin
	}
	for _, addr := range []string{challenger, acceptor} {
		if _, busy := c.registry.LookupByPlayer(addr); busy {
			return JoinResult{}, ErrAlreadyInGame
		}
	}
	created, err := c.Create(ctx, wager)
	if err != nil {
		return JoinResult{}, err
	}
	err = c.withSession(ctx, created.ID, func(s *Session) error {
		if _, err := c.registry.Join(s, challenger, challengerConn); err != nil {
			return err
		}
		if _, err := c.registry.Join(s, acceptor, acceptorConn); err != nil {
			return err
		}
		res = JoinResult{GameID: s.ID, Color: backgammon.Black, Opponent: challenger, Started: true}
		c.startLocked(s)
		return nil
	})
	if err != nil {
		_ = c.Remove(context.Background(), created.ID)
		return JoinResult{}, err
	}
	return res, nil
}

func (c *Coordinator) startLocked(s *Session) {
	c.broadcast(s, Event{
		Type:        EventGameStart,
		White:       s.addressOf(backgammon.White),
		Black:       s.addressOf(backgammon.Black),
		WagerAmount: s.WagerAmount,
		GameState:   stateRef(s.State),
	})
	c.persist(s)
	log.Info().
		Str("game_id", s.ID).
		Str("white", s.addressOf(backgammon.White)).
		Str("black", s.addressOf(backgammon.Black)).
		Msg("game started")
	if c.escrow != nil && s.WagerAmount > 0 {
		go c.CreateEscrowForGame(context.Background(), s.ID)
	}
}

// Spectate attaches a read-only connection to a game.
func (c *Coordinator) Spectate(ctx context.Context, gameID string, conn Conn) error {
	return c.withSession(ctx, gameID, func(s *Session) error {
		s.spectators[conn.ID()] = conn
		c.send(conn, Event{Type: EventSpectateJoined, GameID: s.ID, GameState: stateRef(s.State)})
		return nil
	})
}

func (c *Coordinator) Unspectate(ctx context.Context, gameID, connID string) error {
	return c.withSession(ctx, gameID, func(s *Session) error {
		delete(s.spectators, connID)
		return nil
	})
}

// Remove drops a game: timers are cancelled unconditionally, index entries,
// dice history and the snapshot are deleted, and an unsettled escrow is
// cancelled.
func (c *Coordinator) Remove(ctx context.Context, gameID string) error {
	return c.withSession(ctx, gameID, func(s *Session) error {
		c.removeLocked(s)
		return nil
	})
}

func (c *Coordinator) removeLocked(s *Session) {
	c.stopTurnTimer(s)
	c.stopGrace(s)
	c.registry.Remove(s.ID)
	c.dice.Forget(s.ID)
	c.dropSnapshot(s.ID)
	if c.escrow != nil && (s.EscrowStatus == EscrowPendingDeposits || s.EscrowStatus == EscrowActive) {
		go c.cancelEscrow(s.ID)
	}
	log.Info().Str("game_id", s.ID).Str("status", string(s.Status)).Msg("game removed")
}

func (c *Coordinator) View(ctx context.Context, gameID string) (View, error) {
	var v View
	err := c.withSession(ctx, gameID, func(s *Session) error {
		v = s.view()
		return nil
	})
	return v, err
}

func (c *Coordinator) LookupByPlayer(address string) (string, bool) {
	return c.registry.LookupByPlayer(address)
}

// DiceHistory returns the revealed dice audit trail of a live game.
func (c *Coordinator) DiceHistory(ctx context.Context, gameID string) ([]dice.Record, error) {
	var out []dice.Record
	err := c.withSession(ctx, gameID, func(s *Session) error {
		out = c.dice.History(s.ID)
		return nil
	})
	return out, err
}
