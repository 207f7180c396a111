package backgammon

import "fmt"

func destination(from, die int, p Player) int {
	if p == White {
		if from == WhiteBar {
			return 25 - die
		}
		return from - die
	}
	if from == BlackBar {
		return die
	}
	return from + die
}

// singleMoveTarget checks one checker step in isolation. Bar-first and
// maximum-usage rules are enforced at the sequence level.
func singleMoveTarget(b Board, p Player, from, die int) (int, bool) {
	dest := destination(from, die, p)

	if (p == White && dest <= 0) || (p == Black && dest >= 25) {
		if !b.CanBearOff(p) {
			return dest, false
		}
		if p == White {
			if dest == 0 {
				return WhiteOffPoint, true
			}
			for i := from + 1; i <= 6; i++ {
				if b.Points[i] > 0 {
					return WhiteOffPoint, false
				}
			}
			return WhiteOffPoint, true
		}
		if dest == 25 {
			return BlackOffPoint, true
		}
		for i := from - 1; i >= 19; i-- {
			if b.Points[i] < 0 {
				return BlackOffPoint, false
			}
		}
		return BlackOffPoint, true
	}

	if dest < 1 || dest > NumPoints {
		return dest, false
	}
	if b.Blocked(dest, p) {
		return dest, false
	}
	if from == WhiteBar || from == BlackBar {
		if b.BarCount(p) <= 0 {
			return dest, false
		}
	} else if b.CheckerCount(from, p) <= 0 {
		return dest, false
	}
	return dest, true
}

// ApplySingleMove moves one checker of p, hitting a lone opposing checker on
// the destination. It does not validate legality.
func ApplySingleMove(b Board, p Player, from, to int) Board {
	if p == White {
		b.Points[from]--
	} else {
		b.Points[from]++
	}

	if p == White && to == WhiteOffPoint {
		b.WhiteOff++
		return b
	}
	if p == Black && to == BlackOffPoint {
		b.BlackOff++
		return b
	}

	if p == White && b.Points[to] == -1 {
		b.Points[to] = 0
		b.Points[BlackBar]--
	} else if p == Black && b.Points[to] == 1 {
		b.Points[to] = 0
		b.Points[WhiteBar]++
	}

	if p == White {
		b.Points[to]++
	} else {
		b.Points[to]--
	}
	return b
}

// MoveSequences returns every complete legal ordering of checker moves for
// the remaining dice. Only sequences using the maximum number of dice survive,
// and when a single die of a non-double can be played the higher one must be.
func MoveSequences(b Board, p Player, dice []int) [][]Move {
	var results [][]Move

	var walk func(cur Board, remaining []int, path []Move)
	walk = func(cur Board, remaining []int, path []Move) {
		if len(remaining) == 0 {
			results = append(results, append([]Move(nil), path...))
			return
		}

		anyMove := false
		bar := BarIndex(p)
		onBar := cur.BarCount(p) > 0
		tried := make(map[int]bool, len(remaining))

		for di, die := range remaining {
			if tried[die] {
				continue
			}
			tried[die] = true

			rest := make([]int, 0, len(remaining)-1)
			rest = append(rest, remaining[:di]...)
			rest = append(rest, remaining[di+1:]...)

			if onBar {
				if to, ok := singleMoveTarget(cur, p, bar, die); ok {
					anyMove = true
					next := ApplySingleMove(cur, p, bar, to)
					walk(next, rest, append(path, Move{From: bar, To: to, Die: die}))
				}
				continue
			}

			for i := 1; i <= NumPoints; i++ {
				pt := i
				if p == White {
					pt = 25 - i
				}
				if cur.CheckerCount(pt, p) <= 0 {
					continue
				}
				if to, ok := singleMoveTarget(cur, p, pt, die); ok {
					anyMove = true
					next := ApplySingleMove(cur, p, pt, to)
					walk(next, rest, append(path, Move{From: pt, To: to, Die: die}))
				}
			}
		}

		if !anyMove {
			results = append(results, append([]Move(nil), path...))
		}
	}
	walk(b, dice, make([]Move, 0, len(dice)))

	maxUsed := 0
	for _, r := range results {
		if len(r) > maxUsed {
			maxUsed = len(r)
		}
	}
	best := make([][]Move, 0, len(results))
	for _, r := range results {
		if len(r) == maxUsed {
			best = append(best, r)
		}
	}

	if maxUsed == 1 && len(dice) == 2 && dice[0] != dice[1] {
		higher := max(dice[0], dice[1])
		withHigher := make([][]Move, 0, len(best))
		for _, r := range best {
			if r[0].Die == higher {
				withHigher = append(withHigher, r)
			}
		}
		if len(withHigher) > 0 {
			best = withHigher
		}
	}

	seen := make(map[string]bool, len(best))
	out := make([][]Move, 0, len(best))
	for _, seq := range best {
		key := sequenceKey(seq)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, seq)
	}
	return out
}

func sequenceKey(seq []Move) string {
	key := ""
	for _, m := range seq {
		key += fmt.Sprintf("%d-%d-%d|", m.From, m.To, m.Die)
	}
	return key
}

// LegalFirstMoves lists the distinct opening steps of every legal sequence,
// which is what a client needs to highlight movable checkers.
func LegalFirstMoves(b Board, p Player, dice []int) []Move {
	seqs := MoveSequences(b, p, dice)
	seen := make(map[Move]bool)
	moves := make([]Move, 0)
	for _, seq := range seqs {
		if len(seq) == 0 {
			continue
		}
		if !seen[seq[0]] {
			seen[seq[0]] = true
			moves = append(moves, seq[0])
		}
	}
	return moves
}
