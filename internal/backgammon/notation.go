package backgammon

import (
	"strconv"
	"strings"
)

// FormatMove renders a move in the usual "13/7" style from the mover's point
// of view, with "bar" and "off" for the ends.
func FormatMove(m Move, p Player) string {
	return pointName(m.From, p, true) + "/" + pointName(m.To, p, false)
}

func pointName(idx int, p Player, source bool) string {
	if p == White {
		if idx == WhiteBar && source {
			return "bar"
		}
		if idx == WhiteOffPoint && !source {
			return "off"
		}
		return strconv.Itoa(idx)
	}
	if idx == BlackBar && source {
		return "bar"
	}
	if idx == BlackOffPoint && !source {
		return "off"
	}
	return strconv.Itoa(25 - idx)
}

// FormatTurn renders a turn record as "31: 8/5 6/5".
func FormatTurn(rec TurnRecord) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(rec.Dice[0]))
	sb.WriteString(strconv.Itoa(rec.Dice[1]))
	sb.WriteString(":")
	for _, m := range rec.Moves {
		sb.WriteString(" ")
		sb.WriteString(FormatMove(m, rec.Player))
	}
	return sb.String()
}
