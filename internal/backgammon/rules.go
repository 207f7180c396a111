package backgammon

import (
	"errors"
	"fmt"
)

var ErrInvalidDie = errors.New("invalid_die")

// NewState returns the opening position with white to roll and a centered cube.
func NewState() State {
	return State{
		Board:          InitialBoard(),
		CurrentPlayer:  White,
		MovesRemaining: []int{},
		MoveHistory:    []TurnRecord{},
		CubeValue:      1,
	}
}

// SetDice starts the current player's turn with the given roll. Doubles yield
// four moves.
func SetDice(s State, d1, d2 int) (State, error) {
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return s, fmt.Errorf("%w: %d, %d", ErrInvalidDie, d1, d2)
	}
	out := s.Clone()
	out.Dice = []int{d1, d2}
	if d1 == d2 {
		out.MovesRemaining = []int{d1, d1, d1, d1}
	} else {
		out.MovesRemaining = []int{d1, d2}
	}
	out.TurnNumber = s.TurnNumber + 1
	return out, nil
}

// MakeMove validates and applies one checker move for the current player. It
// returns the new state and the move with the die it consumed; ok is false
// when the move is not the first step of any legal sequence.
func MakeMove(s State, from, to int) (State, Move, bool) {
	if s.GameOver || len(s.MovesRemaining) == 0 {
		return s, Move{}, false
	}
	p := s.CurrentPlayer

	die := 0
	for _, seq := range MoveSequences(s.Board, p, s.MovesRemaining) {
		if len(seq) > 0 && seq[0].From == from && seq[0].To == to {
			die = seq[0].Die
			break
		}
	}
	if die == 0 {
		return s, Move{}, false
	}

	board := ApplySingleMove(s.Board, p, from, to)
	remaining := make([]int, 0, len(s.MovesRemaining)-1)
	used := false
	for _, d := range s.MovesRemaining {
		if !used && d == die {
			used = true
			continue
		}
		remaining = append(remaining, d)
	}

	over, winner, result := CheckGameOver(board)

	endTurn := len(remaining) == 0
	if !endTurn {
		longest := 0
		for _, seq := range MoveSequences(board, p, remaining) {
			longest = max(longest, len(seq))
		}
		endTurn = longest == 0
	}

	move := Move{From: from, To: to, Die: die}
	out := s.Clone()
	out.Board = board
	out.MoveHistory = appendToHistory(out.MoveHistory, s, move)
	out.GameOver = over
	out.Winner = winner
	out.ResultType = result
	if endTurn {
		out.Dice = nil
		out.MovesRemaining = []int{}
		if !over {
			out.CurrentPlayer = p.Opponent()
		}
	} else {
		out.MovesRemaining = remaining
	}
	return out, move, true
}

func appendToHistory(history []TurnRecord, s State, m Move) []TurnRecord {
	if n := len(history); n > 0 {
		last := history[n-1]
		if last.TurnNumber == s.TurnNumber && last.Player == s.CurrentPlayer {
			last.Moves = append(append([]Move(nil), last.Moves...), m)
			history[n-1] = last
			return history
		}
	}
	rec := TurnRecord{TurnNumber: s.TurnNumber, Player: s.CurrentPlayer, Moves: []Move{m}}
	if s.HasDice() {
		rec.Dice = [2]int{s.Dice[0], s.Dice[1]}
	}
	return append(history, rec)
}

// EndTurn passes the turn to the opponent, discarding any unused dice.
func EndTurn(s State) State {
	if s.GameOver {
		return s
	}
	out := s.Clone()
	out.Dice = nil
	out.MovesRemaining = []int{}
	out.CurrentPlayer = s.CurrentPlayer.Opponent()
	return out
}

// HasLegalMoves reports whether the current player can still move a checker.
func HasLegalMoves(s State) bool {
	if len(s.MovesRemaining) == 0 {
		return false
	}
	for _, seq := range MoveSequences(s.Board, s.CurrentPlayer, s.MovesRemaining) {
		if len(seq) > 0 {
			return true
		}
	}
	return false
}

// CheckGameOver detects a finished game and grades it. A loser who has borne
// nothing off is gammoned, and backgammoned if a checker remains on the bar or
// in the winner's home board.
func CheckGameOver(b Board) (bool, Player, ResultType) {
	if b.WhiteOff == TotalCheckers {
		if b.BlackOff > 0 {
			return true, White, ResultNormal
		}
		stuck := b.Points[BlackBar] < 0
		for i := 1; i <= 6 && !stuck; i++ {
			stuck = b.Points[i] < 0
		}
		if stuck {
			return true, White, ResultBackgammon
		}
		return true, White, ResultGammon
	}
	if b.BlackOff == TotalCheckers {
		if b.WhiteOff > 0 {
			return true, Black, ResultNormal
		}
		stuck := b.Points[WhiteBar] > 0
		for i := 19; i <= 24 && !stuck; i++ {
			stuck = b.Points[i] > 0
		}
		if stuck {
			return true, Black, ResultBackgammon
		}
		return true, Black, ResultGammon
	}
	return false, "", ""
}

// CanDouble reports whether p may offer the cube: before rolling on their own
// turn, holding or sharing the cube, and below the cap.
func CanDouble(s State, p Player) bool {
	if s.GameOver || s.HasDice() || s.CurrentPlayer != p {
		return false
	}
	if s.CubeValue >= MaxCubeValue {
		return false
	}
	return s.CubeOwner == "" || s.CubeOwner == p
}

// AcceptDouble doubles the cube and hands ownership to the acceptor.
func AcceptDouble(s State, acceptor Player) State {
	out := s.Clone()
	out.CubeValue = s.CubeValue * 2
	out.CubeOwner = acceptor
	return out
}

// RejectDouble ends the game in favour of the doubler at the current cube value.
func RejectDouble(s State, rejector Player) (State, Player) {
	winner := rejector.Opponent()
	return finish(s, winner, ResultNormal), winner
}

// Resign ends the game with loser conceding at the given result type.
func Resign(s State, loser Player, result ResultType) State {
	if !result.Valid() {
		result = ResultNormal
	}
	return finish(s, loser.Opponent(), result)
}

func finish(s State, winner Player, result ResultType) State {
	out := s.Clone()
	out.GameOver = true
	out.Winner = winner
	out.ResultType = result
	return out
}
