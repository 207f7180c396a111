package session

import "backgammon-arena/internal/backgammon"

const (
	EventGameCreated           = "game_created"
	EventGameJoined            = "game_joined"
	EventGameStart             = "game_start"
	EventSpectateJoined        = "spectate_joined"
	EventDiceCommit            = "dice_commit"
	EventDiceRolled            = "dice_rolled"
	EventMoveMade              = "move_made"
	EventMoveUndone            = "move_undone"
	EventTurnEnded             = "turn_ended"
	EventGameOver              = "game_over"
	EventDoubleOffered         = "double_offered"
	EventDoubleAccepted        = "double_accepted"
	EventDoubleRejected        = "double_rejected"
	EventResignOffered         = "resign_offered"
	EventResignAccepted        = "resign_accepted"
	EventResignRejected        = "resign_rejected"
	EventOpponentDisconnecting = "opponent_disconnecting"
	EventDisconnectCountdown   = "disconnect_countdown"
	EventOpponentReconnected   = "opponent_reconnected"
	EventEscrowCreated         = "escrow_created"
	EventEscrowActive          = "escrow_active"
	EventEscrowSettled         = "escrow_settled"
	EventStallingWarning       = "stalling_warning"
	EventError                 = "error"
)

// Event is the single outbound message shape. Unused fields are omitted on
// the wire.
type Event struct {
	Type              string                `json:"type"`
	GameID            string                `json:"game_id,omitempty"`
	Color             backgammon.Player     `json:"color,omitempty"`
	White             string                `json:"white,omitempty"`
	Black             string                `json:"black,omitempty"`
	Opponent          string                `json:"opponent,omitempty"`
	Player            backgammon.Player     `json:"player,omitempty"`
	Dice              []int                 `json:"dice,omitempty"`
	GameState         *backgammon.State     `json:"game_state,omitempty"`
	LegalMoves        []backgammon.Move     `json:"legal_moves,omitempty"`
	NeedsConfirmation bool                  `json:"needs_confirmation,omitempty"`
	Move              *backgammon.Move      `json:"move,omitempty"`
	NextPlayer        backgammon.Player     `json:"next_player,omitempty"`
	Winner            backgammon.Player     `json:"winner,omitempty"`
	ResultType        backgammon.ResultType `json:"result_type,omitempty"`
	Reason            string                `json:"reason,omitempty"`
	CubeValue         int                   `json:"cube_value,omitempty"`
	CubeOwner         backgammon.Player     `json:"cube_owner,omitempty"`
	ResignType        backgammon.ResultType `json:"resign_type,omitempty"`
	GraceSeconds      int                   `json:"grace_seconds,omitempty"`
	SecondsRemaining  int                   `json:"seconds_remaining,omitempty"`
	CommitHash        string                `json:"commit_hash,omitempty"`
	ServerSeed        string                `json:"server_seed,omitempty"`
	TurnNumber        int                   `json:"turn_number,omitempty"`
	WagerAmount       int64                 `json:"wager_amount,omitempty"`
	Message           string                `json:"message,omitempty"`
	Code              string                `json:"code,omitempty"`
}

func stateRef(s backgammon.State) *backgammon.State {
	c := s.Clone()
	return &c
}
