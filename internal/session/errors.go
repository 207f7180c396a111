package session

import "errors"

// Every rejection is a no-op on the session. The error text doubles as the
// code reported to clients.
var (
	ErrGameNotFound         = errors.New("game_not_found")
	ErrGameNotPlaying       = errors.New("game_not_playing")
	ErrNotAPlayer           = errors.New("not_a_player")
	ErrNotYourTurn          = errors.New("not_your_turn")
	ErrDiceAlreadyRolled    = errors.New("dice_already_rolled")
	ErrNoDice               = errors.New("dice_not_rolled")
	ErrAwaitingConfirmation = errors.New("awaiting_confirmation")
	ErrInvalidMove          = errors.New("invalid_move")
	ErrLegalMovesRemain     = errors.New("legal_moves_remain")
	ErrNothingToUndo        = errors.New("nothing_to_undo")
	ErrCannotDouble         = errors.New("cannot_double")
	ErrDoublePending        = errors.New("double_pending")
	ErrNoDoubleOffer        = errors.New("no_double_offer")
	ErrOwnDouble            = errors.New("cannot_answer_own_double")
	ErrInvalidResignType    = errors.New("invalid_resign_type")
	ErrResignationPending   = errors.New("resignation_pending")
	ErrNoPendingResignation = errors.New("no_pending_resignation")
	ErrOwnResignation       = errors.New("cannot_answer_own_resignation")
	ErrCannotJoin           = errors.New("cannot_join")
	ErrAlreadyInGame        = errors.New("already_in_game")
	ErrInvalidWager         = errors.New("invalid_wager")
	ErrEscrowState          = errors.New("escrow_state_invalid")
)

// Code returns the client-facing code for err, or internal_error for
// anything that is not a session rejection.
func Code(err error) string {
	for _, known := range []error{
		ErrGameNotFound, ErrGameNotPlaying, ErrNotAPlayer, ErrNotYourTurn,
		ErrDiceAlreadyRolled, ErrNoDice, ErrAwaitingConfirmation, ErrInvalidMove,
		ErrLegalMovesRemain, ErrNothingToUndo, ErrCannotDouble, ErrDoublePending,
		ErrNoDoubleOffer, ErrOwnDouble, ErrInvalidResignType, ErrResignationPending,
		ErrNoPendingResignation, ErrOwnResignation, ErrCannotJoin, ErrAlreadyInGame,
		ErrInvalidWager, ErrEscrowState,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal_error"
}
