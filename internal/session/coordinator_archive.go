package session

import (
	"context"
	"encoding/json"
	"time"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/escrow"
	"backgammon-arena/internal/store"

	"github.com/rs/zerolog/log"
)

const archiveTimeout = 5 * time.Second

func (c *Coordinator) matchResultOf(s *Session) store.MatchResult {
	winner := s.State.Winner
	result := resultOrNormal(s.State.ResultType)
	moves, err := json.Marshal(s.State.MoveHistory)
	if err != nil {
		moves = []byte("[]")
	}
	rolls, err := json.Marshal(c.dice.History(s.ID))
	if err != nil {
		rolls = []byte("[]")
	}
	return store.MatchResult{
		ID:            store.NewIDAt(s.FinishedAt),
		GameID:        s.ID,
		WhiteAddress:  s.addressOf(backgammon.White),
		BlackAddress:  s.addressOf(backgammon.Black),
		WinnerAddress: s.addressOf(winner),
		LoserAddress:  s.addressOf(winner.Opponent()),
		WinnerColor:   string(winner),
		ResultType:    string(result),
		EndReason:     s.EndReason,
		CubeValue:     s.State.CubeValue,
		WagerAmount:   s.WagerAmount,
		Multiplier:    escrow.Multiplier(result, s.State.CubeValue),
		MoveHistory:   moves,
		DiceHistory:   rolls,
		StartedAt:     s.CreatedAt,
		FinishedAt:    s.FinishedAt,
	}
}

func (c *Coordinator) recordResult(r store.MatchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := c.results.RecordMatchResult(ctx, r); err != nil {
		log.Error().Err(err).Str("game_id", r.GameID).Msg("archive match result failed")
	}
}
