package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// MatchResult is the archived outcome of one finished game. MoveHistory and
// DiceHistory are stored verbatim as JSON.
type MatchResult struct {
	ID            string          `json:"id"`
	GameID        string          `json:"game_id"`
	WhiteAddress  string          `json:"white_address"`
	BlackAddress  string          `json:"black_address"`
	WinnerAddress string          `json:"winner_address"`
	LoserAddress  string          `json:"loser_address"`
	WinnerColor   string          `json:"winner_color"`
	ResultType    string          `json:"result_type"`
	EndReason     string          `json:"end_reason"`
	CubeValue     int             `json:"cube_value"`
	WagerAmount   int64           `json:"wager_amount"`
	Multiplier    int             `json:"multiplier"`
	MoveHistory   json.RawMessage `json:"move_history"`
	DiceHistory   json.RawMessage `json:"dice_history"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
}

// DecodeDice unmarshals the archived dice audit into out.
func (r MatchResult) DecodeDice(out any) error {
	if len(r.DiceHistory) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.DiceHistory, out); err != nil {
		return fmt.Errorf("decode dice history: %w", err)
	}
	return nil
}

const matchColumns = `id, game_id, white_address, black_address, winner_address, loser_address,
	winner_color, result_type, end_reason, cube_value, wager_amount, multiplier,
	move_history, dice_history, started_at, finished_at`

// RecordMatchResult archives a result. Game ids are short codes that get
// reused, so a match is identified by its game id and start time; recording
// the same match twice keeps the first row.
func (s *Store) RecordMatchResult(ctx context.Context, r MatchResult) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	if len(r.MoveHistory) == 0 {
		r.MoveHistory = json.RawMessage("[]")
	}
	if len(r.DiceHistory) == 0 {
		r.DiceHistory = json.RawMessage("[]")
	}
	_, err := s.Pool.Exec(ctx, `INSERT INTO match_results (`+matchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (game_id, started_at) DO NOTHING`,
		r.ID, r.GameID, r.WhiteAddress, r.BlackAddress, r.WinnerAddress, r.LoserAddress,
		r.WinnerColor, r.ResultType, r.EndReason, r.CubeValue, r.WagerAmount, r.Multiplier,
		[]byte(r.MoveHistory), []byte(r.DiceHistory), r.StartedAt, r.FinishedAt)
	if err != nil {
		return fmt.Errorf("record match %s: %w", r.GameID, err)
	}
	return nil
}

// GetMatchByGame returns the most recent match played under the game id.
func (s *Store) GetMatchByGame(ctx context.Context, gameID string) (*MatchResult, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM match_results
		WHERE game_id = $1
		ORDER BY finished_at DESC, id DESC
		LIMIT 1`, gameID)
	r, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListMatchesByPlayer returns the most recent matches the address played in.
func (s *Store) ListMatchesByPlayer(ctx context.Context, address string, limit, offset int) ([]MatchResult, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+matchColumns+` FROM match_results
		WHERE white_address = $1 OR black_address = $1
		ORDER BY finished_at DESC, id DESC
		LIMIT $2 OFFSET $3`, address, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MatchResult{}
	for rows.Next() {
		r, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanMatch(row pgx.Row) (MatchResult, error) {
	var r MatchResult
	var moves, dice []byte
	err := row.Scan(&r.ID, &r.GameID, &r.WhiteAddress, &r.BlackAddress, &r.WinnerAddress, &r.LoserAddress,
		&r.WinnerColor, &r.ResultType, &r.EndReason, &r.CubeValue, &r.WagerAmount, &r.Multiplier,
		&moves, &dice, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return MatchResult{}, err
	}
	r.MoveHistory = json.RawMessage(moves)
	r.DiceHistory = json.RawMessage(dice)
	return r, nil
}
