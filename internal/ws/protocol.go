package ws

import "backgammon-arena/internal/backgammon"

const (
	CmdAuth              = "auth"
	CmdCreateGame        = "create_game"
	CmdJoinGame          = "join_game"
	CmdSpectate          = "spectate"
	CmdRollDice          = "roll_dice"
	CmdMove              = "move"
	CmdEndTurn           = "end_turn"
	CmdUndoMove          = "undo_move"
	CmdResign            = "resign"
	CmdAcceptResignation = "accept_resignation"
	CmdRejectResignation = "reject_resignation"
	CmdAcceptResign      = "accept_resign"
	CmdRejectResign      = "reject_resign"
	CmdOfferDouble       = "offer_double"
	CmdAcceptDouble      = "accept_double"
	CmdRejectDouble      = "reject_double"
	CmdAcceptChallenge   = "accept_challenge"
)

// Command is every inbound message. Fields a command does not use are
// ignored.
type Command struct {
	Type              string                `json:"type"`
	Address           string                `json:"address,omitempty"`
	GameID            string                `json:"game_id,omitempty"`
	WagerAmount       int64                 `json:"wager_amount,omitempty"`
	From              int                   `json:"from"`
	To                int                   `json:"to"`
	ResignType        backgammon.ResultType `json:"resign_type,omitempty"`
	ChallengerAddress string                `json:"challenger_address,omitempty"`
}

type AuthResult struct {
	Type    string `json:"type"`
	Address string `json:"address"`
	GameID  string `json:"game_id,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

const (
	codeInvalidMessage   = "invalid_message"
	codeUnknownCommand   = "unknown_command"
	codeNotAuthenticated = "not_authenticated"
	codeInvalidAddress   = "invalid_address"
	// a socket stays bound to the first address it authenticated as
	codeAddressMismatch = "already_authenticated"
)
