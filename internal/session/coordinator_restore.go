package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backgammon-arena/internal/backgammon"

	"github.com/rs/zerolog/log"
)

var errMalformedSnapshot = errors.New("malformed snapshot")

// Restore reloads games that were in progress from the snapshot store.
// Players come back without a connection and must reconnect. Entries that do
// not decode or validate are skipped one by one.
func (c *Coordinator) Restore(ctx context.Context) (int, error) {
	if c.snapshots == nil {
		return 0, nil
	}
	entries, err := c.snapshots.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}
	restored := 0
	for key, raw := range entries {
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			log.Warn().Err(err).Str("game_id", key).Msg("skip undecodable snapshot")
			continue
		}
		if snap.Status != StatusPlaying {
			continue
		}
		if err := validSnapshot(key, snap); err != nil {
			log.Warn().Err(err).Str("game_id", key).Msg("skip invalid snapshot")
			continue
		}
		s := c.sessionFromSnapshot(snap)
		if err := c.registry.Insert(s); err != nil {
			log.Warn().Err(err).Str("game_id", key).Msg("skip conflicting snapshot")
			continue
		}
		c.dice.Load(s.ID, snap.DiceHistory)
		if s.State.HasDice() || s.pendingConfirmation != "" {
			_ = c.withSession(ctx, s.ID, func(s *Session) error {
				c.armTurnTimer(s)
				return nil
			})
		}
		restored++
	}
	log.Info().Int("restored", restored).Int("stored", len(entries)).Msg("snapshot restore finished")
	return restored, nil
}

func validSnapshot(key string, snap Snapshot) error {
	switch {
	case snap.ID == "" || snap.ID != key:
		return fmt.Errorf("%w: id %q under key %q", errMalformedSnapshot, snap.ID, key)
	case snap.White == "" || snap.Black == "" || snap.White == snap.Black:
		return fmt.Errorf("%w: players %q/%q", errMalformedSnapshot, snap.White, snap.Black)
	case !snap.State.CurrentPlayer.Valid():
		return fmt.Errorf("%w: current player %q", errMalformedSnapshot, snap.State.CurrentPlayer)
	case snap.State.CubeValue < 1 || snap.State.CubeValue > backgammon.MaxCubeValue:
		return fmt.Errorf("%w: cube %d", errMalformedSnapshot, snap.State.CubeValue)
	}
	return nil
}

func (c *Coordinator) sessionFromSnapshot(snap Snapshot) *Session {
	now := c.now()
	s := &Session{
		ID:                  snap.ID,
		State:               snap.State,
		White:               &Seat{Address: snap.White},
		Black:               &Seat{Address: snap.Black},
		Status:              StatusPlaying,
		WagerAmount:         snap.WagerAmount,
		EscrowStatus:        snap.EscrowStatus,
		CreatedAt:           snap.CreatedAt,
		spectators:          map[string]Conn{},
		turnMoveStack:       snap.TurnMoveStack,
		pendingConfirmation: snap.PendingConfirmation,
		pendingDouble:       snap.PendingDouble,
		pendingResignation:  snap.PendingResignation,
		turnTimeLimit:       c.timing.TurnTimeout,
		lastActivity:        now,
	}
	if s.EscrowStatus == "" {
		s.EscrowStatus = EscrowNone
	}
	if s.State.MoveHistory == nil {
		s.State.MoveHistory = snap.MoveHistory
	}
	return s
}
