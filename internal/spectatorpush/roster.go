package spectatorpush

import (
	"sync"
	"time"

	"backgammon-arena/internal/session"
)

type seating struct {
	white, black string
	wager        int64
	seen         time.Time
}

// roster remembers who sits in each game, since most events only carry
// colors. Wagered games are kept until escrow settles; entries older than
// maxAge are swept on each game start.
type roster struct {
	mu     sync.Mutex
	maxAge time.Duration
	games  map[string]seating
}

func newRoster(maxAge time.Duration) *roster {
	return &roster{maxAge: maxAge, games: map[string]seating{}}
}

func (r *roster) highlight(ev session.Event, now time.Time) Highlight {
	h := Highlight{
		Kind:   ev.Type,
		At:     now,
		GameID: ev.GameID,
		White:  ev.White,
		Black:  ev.Black,
		Actor:  string(ev.Player),
		Winner: string(ev.Winner),
		Result: string(ev.ResultType),
		Reason: ev.Reason,
		Cube:   ev.CubeValue,
		Wager:  ev.WagerAmount,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.Type == session.EventGameStart {
		r.sweep(now)
		r.games[ev.GameID] = seating{white: ev.White, black: ev.Black, wager: ev.WagerAmount, seen: now}
	}
	seat, ok := r.games[ev.GameID]
	if ok {
		if h.White == "" {
			h.White = seat.white
		}
		if h.Black == "" {
			h.Black = seat.black
		}
		if h.Wager == 0 {
			h.Wager = seat.wager
		}
	}
	switch {
	case ev.Type == session.EventEscrowSettled:
		delete(r.games, ev.GameID)
	case ev.Type == session.EventGameOver && ok && seat.wager == 0:
		delete(r.games, ev.GameID)
	}
	return h
}

func (r *roster) sweep(now time.Time) {
	for id, seat := range r.games {
		if now.Sub(seat.seen) > r.maxAge {
			delete(r.games, id)
		}
	}
}

func (r *roster) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}
