package backgammon

// InitialBoard is the standard starting position. White moves from 24 toward
// 1 with home board 1-6; black moves from 1 toward 24 with home board 19-24.
func InitialBoard() Board {
	var b Board
	b.Points[24] = 2
	b.Points[13] = 5
	b.Points[8] = 3
	b.Points[6] = 5
	b.Points[1] = -2
	b.Points[12] = -5
	b.Points[17] = -3
	b.Points[19] = -5
	return b
}

func (b Board) CheckerCount(point int, p Player) int {
	v := b.Points[point]
	if p == White {
		if v > 0 {
			return v
		}
		return 0
	}
	if v < 0 {
		return -v
	}
	return 0
}

// Blocked reports whether the opponent holds point with two or more checkers.
func (b Board) Blocked(point int, p Player) bool {
	if point < 1 || point > NumPoints {
		return false
	}
	v := b.Points[point]
	if p == White {
		return v <= -2
	}
	return v >= 2
}

func BarIndex(p Player) int {
	if p == White {
		return WhiteBar
	}
	return BlackBar
}

func (b Board) BarCount(p Player) int {
	return b.CheckerCount(BarIndex(p), p)
}

// CanBearOff reports whether every checker of p is inside its home board.
func (b Board) CanBearOff(p Player) bool {
	if b.BarCount(p) > 0 {
		return false
	}
	if p == White {
		for i := 7; i <= 24; i++ {
			if b.Points[i] > 0 {
				return false
			}
		}
		return true
	}
	for i := 1; i <= 18; i++ {
		if b.Points[i] < 0 {
			return false
		}
	}
	return true
}

// CheckersOnBoard counts checkers of p still in play, bar included.
func (b Board) CheckersOnBoard(p Player) int {
	n := 0
	for i := 0; i <= 25; i++ {
		n += b.CheckerCount(i, p)
	}
	return n
}

// PipCount is the total distance p still has to travel to bear everything off.
func (b Board) PipCount(p Player) int {
	pips := 0
	if p == White {
		if b.Points[WhiteBar] > 0 {
			pips += b.Points[WhiteBar] * 25
		}
		for i := 1; i <= NumPoints; i++ {
			if b.Points[i] > 0 {
				pips += b.Points[i] * i
			}
		}
		return pips
	}
	if b.Points[BlackBar] < 0 {
		pips += -b.Points[BlackBar] * 25
	}
	for i := 1; i <= NumPoints; i++ {
		if b.Points[i] < 0 {
			pips += -b.Points[i] * (25 - i)
		}
	}
	return pips
}
