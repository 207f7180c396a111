package backgammon

// makeBoard builds a board from sparse point counts. Borne-off counts default
// to whatever is missing from fifteen.
func makeBoard(points map[int]int, whiteOff, blackOff int) Board {
	var b Board
	white, black := 0, 0
	for idx, n := range points {
		b.Points[idx] = n
		if n > 0 {
			white += n
		} else {
			black -= n
		}
	}
	b.WhiteOff = whiteOff
	if whiteOff < 0 {
		b.WhiteOff = TotalCheckers - white
	}
	b.BlackOff = blackOff
	if blackOff < 0 {
		b.BlackOff = TotalCheckers - black
	}
	return b
}

func hasMove(moves []Move, from, to int) bool {
	for _, m := range moves {
		if m.From == from && m.To == to {
			return true
		}
	}
	return false
}

func longest(seqs [][]Move) int {
	n := 0
	for _, s := range seqs {
		n = max(n, len(s))
	}
	return n
}
