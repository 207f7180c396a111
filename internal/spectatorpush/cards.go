package spectatorpush

import (
	"fmt"
	"strconv"

	"backgammon-arena/internal/session"
	"backgammon-arena/internal/spectatorpush/platforms"
)

const cardFooter = "backgammon-arena"

// Card renders h for chat. Turn-level events (dice, moves, timers) are not
// highlights and return false.
func Card(h Highlight) (platforms.Card, bool) {
	game := shortGameID(h.GameID)
	white, black := orDash(h.White), orDash(h.Black)
	card := platforms.Card{At: h.At, Footer: cardFooter}

	switch h.Kind {
	case session.EventGameStart:
		card.Title = "New game " + game
		card.Summary = white + " vs " + black
		card.Body = fmt.Sprintf("%s (white) faces %s (black).", white, black)
		card.Tone = platforms.ToneInfo
		card.Facts = []platforms.Fact{{Label: "White", Value: white}, {Label: "Black", Value: black}}
		if h.Wager > 0 {
			card.Facts = append(card.Facts, platforms.Fact{Label: "Wager", Value: strconv.FormatInt(h.Wager, 10)})
		}
	case session.EventDoubleAccepted:
		taker := seatName(h, h.Actor)
		card.Title = "Cube turned in " + game
		card.Summary = fmt.Sprintf("%s takes at %d", taker, h.Cube)
		card.Body = fmt.Sprintf("%s accepted the double, the cube is on %d.", taker, h.Cube)
		card.Tone = platforms.ToneWarn
		card.Facts = []platforms.Fact{{Label: "Cube", Value: strconv.Itoa(h.Cube)}}
	case session.EventGameOver:
		winner := seatName(h, h.Winner)
		result := h.Result
		if result == "" {
			result = "normal"
		}
		card.Title = "Game " + game + " finished"
		card.Summary = fmt.Sprintf("%s wins (%s)", winner, result)
		card.Body = fmt.Sprintf("%s wins a %s game, %s.", winner, result, reasonText(h.Reason))
		card.Tone = platforms.ToneGood
		if h.Reason == "disconnect_forfeit" {
			card.Tone = platforms.ToneBad
		}
		card.Facts = []platforms.Fact{
			{Label: "Winner", Value: winner},
			{Label: "Result", Value: result},
			{Label: "Cube", Value: cubeText(h.Cube)},
		}
	case session.EventEscrowSettled:
		if h.Wager == 0 {
			return platforms.Card{}, false
		}
		winner := seatName(h, h.Winner)
		card.Title = "Wager settled for " + game
		card.Summary = fmt.Sprintf("escrow of %d paid to %s", h.Wager, winner)
		card.Body = card.Summary + "."
		card.Tone = platforms.ToneGood
		card.Facts = []platforms.Fact{{Label: "Winner", Value: winner}, {Label: "Wager", Value: strconv.FormatInt(h.Wager, 10)}}
	default:
		return platforms.Card{}, false
	}
	return card, true
}

// seatName turns a color into the seated address when the roster knows it.
func seatName(h Highlight, color string) string {
	switch color {
	case "white":
		if h.White != "" {
			return h.White
		}
	case "black":
		if h.Black != "" {
			return h.Black
		}
	case "":
		return "-"
	}
	return color
}

func reasonText(reason string) string {
	switch reason {
	case "resignation":
		return "by resignation"
	case "double_rejected":
		return "on a dropped double"
	case "disconnect_forfeit":
		return "by forfeit after a disconnect"
	default:
		return "over the board"
	}
}

func cubeText(v int) string {
	if v <= 0 {
		return "1"
	}
	return strconv.Itoa(v)
}

func shortGameID(id string) string {
	if id == "" {
		return "?"
	}
	if len(id) > 10 {
		return id[:10]
	}
	return id
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
