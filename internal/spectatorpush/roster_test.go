package spectatorpush

import (
	"testing"
	"time"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/session"
)

func TestRosterKeepsWageredGamesUntilSettled(t *testing.T) {
	r := newRoster(time.Hour)
	now := time.Unix(5000, 0)
	r.highlight(session.Event{Type: session.EventGameStart, GameID: "g1", White: "alice", Black: "bob", WagerAmount: 50}, now)

	over := r.highlight(session.Event{Type: session.EventGameOver, GameID: "g1", Winner: backgammon.Black}, now)
	if over.White != "alice" || over.Wager != 50 {
		t.Fatalf("game_over highlight = %+v", over)
	}
	settled := r.highlight(session.Event{Type: session.EventEscrowSettled, GameID: "g1", Winner: backgammon.Black}, now)
	if settled.Black != "bob" || settled.Wager != 50 {
		t.Fatalf("settled highlight = %+v", settled)
	}
	if r.size() != 0 {
		t.Fatalf("roster size = %d after settlement", r.size())
	}
}

func TestRosterSweepsStaleGames(t *testing.T) {
	r := newRoster(time.Minute)
	start := time.Unix(5000, 0)
	r.highlight(session.Event{Type: session.EventGameStart, GameID: "old", WagerAmount: 5}, start)
	r.highlight(session.Event{Type: session.EventGameStart, GameID: "new"}, start.Add(2*time.Minute))
	if r.size() != 1 {
		t.Fatalf("roster size = %d, want 1", r.size())
	}
}
