package backgammon

// Engine exposes the package functions as a method set so callers can depend
// on an interface instead of the package.
type Engine struct{}

func (Engine) NewState() State                            { return NewState() }
func (Engine) SetDice(s State, d1, d2 int) (State, error) { return SetDice(s, d1, d2) }
func (Engine) MakeMove(s State, from, to int) (State, Move, bool) {
	return MakeMove(s, from, to)
}
func (Engine) EndTurn(s State) State      { return EndTurn(s) }
func (Engine) HasLegalMoves(s State) bool { return HasLegalMoves(s) }
func (Engine) LegalFirstMoves(b Board, p Player, dice []int) []Move {
	return LegalFirstMoves(b, p, dice)
}
func (Engine) CanDouble(s State, p Player) bool            { return CanDouble(s, p) }
func (Engine) AcceptDouble(s State, acceptor Player) State { return AcceptDouble(s, acceptor) }
func (Engine) RejectDouble(s State, rejector Player) (State, Player) {
	return RejectDouble(s, rejector)
}
func (Engine) Resign(s State, loser Player, result ResultType) State {
	return Resign(s, loser, result)
}
