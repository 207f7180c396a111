// Package backgammon is a pure rules library for standard backgammon. Every
// function takes and returns values; nothing here keeps state between calls.
package backgammon

type Player string

const (
	White Player = "white"
	Black Player = "black"
)

func (p Player) Opponent() Player {
	if p == White {
		return Black
	}
	return White
}

func (p Player) Valid() bool {
	return p == White || p == Black
}

type ResultType string

const (
	ResultNormal     ResultType = "normal"
	ResultGammon     ResultType = "gammon"
	ResultBackgammon ResultType = "backgammon"
)

// Multiplier is the stake multiple a result is worth before the cube.
func (r ResultType) Multiplier() int {
	switch r {
	case ResultBackgammon:
		return 3
	case ResultGammon:
		return 2
	default:
		return 1
	}
}

func (r ResultType) Valid() bool {
	return r == ResultNormal || r == ResultGammon || r == ResultBackgammon
}

const (
	WhiteBar      = 0
	BlackBar      = 25
	WhiteOffPoint = 0
	BlackOffPoint = 25
	TotalCheckers = 15
	NumPoints     = 24
	MaxCubeValue  = 64
)

// Board holds 26 slots: 0 is the white bar, 1-24 the points, 25 the black
// bar. Positive counts are white checkers, negative are black.
type Board struct {
	Points   [26]int `json:"points"`
	WhiteOff int     `json:"white_off"`
	BlackOff int     `json:"black_off"`
}

// Move uses 0 as the white bear-off target and 25 as the black one.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
	Die  int `json:"die"`
}

type TurnRecord struct {
	TurnNumber int    `json:"turn_number"`
	Player     Player `json:"player"`
	Dice       [2]int `json:"dice"`
	Moves      []Move `json:"moves"`
}

type State struct {
	Board          Board        `json:"board"`
	CurrentPlayer  Player       `json:"current_player"`
	Dice           []int        `json:"dice"`
	MovesRemaining []int        `json:"moves_remaining"`
	GameOver       bool         `json:"game_over"`
	Winner         Player       `json:"winner,omitempty"`
	ResultType     ResultType   `json:"result_type,omitempty"`
	TurnNumber     int          `json:"turn_number"`
	MoveHistory    []TurnRecord `json:"move_history"`
	CubeValue      int          `json:"cube_value"`
	CubeOwner      Player       `json:"cube_owner,omitempty"`
}

// HasDice reports whether the current player has rolled this turn.
func (s State) HasDice() bool {
	return len(s.Dice) == 2
}

// Clone returns a deep copy sharing no slices with s.
func (s State) Clone() State {
	out := s
	out.Dice = cloneInts(s.Dice)
	out.MovesRemaining = cloneInts(s.MovesRemaining)
	if s.MoveHistory != nil {
		out.MoveHistory = make([]TurnRecord, len(s.MoveHistory))
		for i, rec := range s.MoveHistory {
			rec.Moves = append([]Move(nil), rec.Moves...)
			out.MoveHistory[i] = rec
		}
	}
	return out
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}
