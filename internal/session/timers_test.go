package session

import (
	"context"
	"testing"
	"time"

	"backgammon-arena/internal/backgammon"
)

func TestTurnTimeoutFiresOnce(t *testing.T) {
	timing := fastTiming()
	timing.TurnTimeout = 30 * time.Millisecond
	c := newTestCoordinator(t, Options{Timing: timing})
	id, _, connB := startGame(t, c, 0)

	if _, err := c.Roll(context.Background(), id, addrA); err != nil {
		t.Fatalf("roll: %v", err)
	}
	waitFor(t, "timeout turn_ended", func() bool { return connB.count(EventTurnEnded) > 0 })
	time.Sleep(4 * timing.TurnTimeout)

	if n := connB.count(EventTurnEnded); n != 1 {
		t.Fatalf("turn_ended count = %d", n)
	}
	ev, _ := connB.last(EventTurnEnded)
	if ev.Reason != "timeout" || ev.Player != backgammon.White || ev.NextPlayer != backgammon.Black {
		t.Fatalf("turn_ended = %+v", ev)
	}
	v := mustView(t, c, id)
	if v.State.CurrentPlayer != backgammon.Black || v.State.HasDice() || v.Status != StatusPlaying {
		t.Fatalf("state after timeout = %+v", v.State)
	}
}

func TestTurnTimeoutConfirmsPendingTurn(t *testing.T) {
	timing := fastTiming()
	timing.TurnTimeout = 40 * time.Millisecond
	c := newTestCoordinator(t, Options{Timing: timing})
	id, _, connB := startGame(t, c, 0)
	ctx := context.Background()

	if _, err := c.Roll(ctx, id, addrA); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, err := c.Move(ctx, id, addrA, 8, 5); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := c.Move(ctx, id, addrA, 6, 5); err != nil {
		t.Fatalf("move: %v", err)
	}
	waitFor(t, "pending turn confirmed", func() bool { return mustView(t, c, id).PendingConfirmation == "" })

	v := mustView(t, c, id)
	if v.State.CurrentPlayer != backgammon.Black || v.UndoDepth != 0 {
		t.Fatalf("view after timeout = %+v", v)
	}
	if n := connB.count(EventTurnEnded); n != 1 {
		t.Fatalf("turn_ended count = %d", n)
	}
}

func TestStaleTurnTimerIsIgnored(t *testing.T) {
	c := newTestCoordinator(t, Options{})
	id, _, connB := startGame(t, c, 0)
	ctx := context.Background()

	if _, err := c.Roll(ctx, id, addrA); err != nil {
		t.Fatalf("roll: %v", err)
	}
	var stale uint64
	_ = c.withSession(ctx, id, func(s *Session) error {
		stale = s.turnToken
		return nil
	})
	if _, err := c.Move(ctx, id, addrA, 8, 5); err != nil {
		t.Fatalf("move: %v", err)
	}
	c.onTurnTimeout(id, stale)

	if n := connB.count(EventTurnEnded); n != 0 {
		t.Fatalf("stale timer ended the turn")
	}
	if v := mustView(t, c, id); v.State.CurrentPlayer != backgammon.White || !v.State.HasDice() {
		t.Fatalf("stale timer changed state: %+v", v.State)
	}
}

func TestRemoveCancelsTimers(t *testing.T) {
	timing := fastTiming()
	timing.TurnTimeout = 30 * time.Millisecond
	timing.DisconnectGrace = 30 * time.Millisecond
	timing.CountdownInterval = 10 * time.Millisecond
	c := newTestCoordinator(t, Options{Timing: timing})
	id, connA, connB := startGame(t, c, 0)
	ctx := context.Background()

	if _, err := c.Roll(ctx, id, addrA); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if err := c.Detach(ctx, addrA, connA.ID()); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := c.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	before := len(connB.all())
	time.Sleep(100 * time.Millisecond)
	if after := len(connB.all()); after != before {
		t.Fatalf("events after remove: %d -> %d", before, after)
	}
	if _, err := c.View(ctx, id); err != ErrGameNotFound {
		t.Fatalf("view removed err = %v", err)
	}
}

func TestReconnectWithinGraceKeepsGame(t *testing.T) {
	timing := fastTiming()
	timing.DisconnectGrace = 80 * time.Millisecond
	timing.CountdownInterval = 20 * time.Millisecond
	c := newTestCoordinator(t, Options{Timing: timing})
	id, connA, connB := startGame(t, c, 0)
	ctx := context.Background()

	if err := c.Detach(ctx, addrA, connA.ID()); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if ev, ok := connB.last(EventOpponentDisconnecting); !ok || ev.Player != backgammon.White {
		t.Fatalf("opponent_disconnecting = %+v, %v", ev, ok)
	}
	if v := mustView(t, c, id); v.DisconnectedPlayer != addrA {
		t.Fatalf("disconnected player = %q", v.DisconnectedPlayer)
	}

	fresh := newConn("conn-a2")
	res, err := c.Attach(ctx, addrA, fresh)
	if err != nil || res.GameID != id || res.Color != backgammon.White {
		t.Fatalf("attach = %+v, %v", res, err)
	}
	time.Sleep(2 * timing.DisconnectGrace)

	v := mustView(t, c, id)
	if v.Status != StatusPlaying || v.DisconnectedPlayer != "" {
		t.Fatalf("view after reconnect = %+v", v)
	}
	if connB.count(EventOpponentReconnected) != 1 || connB.count(EventGameOver) != 0 {
		t.Fatalf("opponent events = %+v", connB.all())
	}
	if fresh.count(EventGameStart) != 1 {
		t.Fatalf("reconnected player missed the game state")
	}
}

func TestGraceExpiryForfeitsOnce(t *testing.T) {
	timing := fastTiming()
	timing.DisconnectGrace = 60 * time.Millisecond
	timing.CountdownInterval = 15 * time.Millisecond
	c := newTestCoordinator(t, Options{Timing: timing})
	id, connA, connB := startGame(t, c, 0)
	ctx := context.Background()

	if err := c.Detach(ctx, addrA, connA.ID()); err != nil {
		t.Fatalf("detach: %v", err)
	}
	waitFor(t, "forfeit", func() bool { return mustView(t, c, id).Status == StatusFinished })
	time.Sleep(2 * timing.DisconnectGrace)

	v := mustView(t, c, id)
	if v.State.Winner != backgammon.Black || v.EndReason != "disconnect_forfeit" || v.DisconnectedPlayer != "" {
		t.Fatalf("view after forfeit = %+v", v)
	}
	if n := connB.count(EventGameOver); n != 1 {
		t.Fatalf("game_over count = %d", n)
	}
	if connB.count(EventDisconnectCountdown) == 0 {
		t.Fatalf("no countdown events")
	}
	c.expireGrace(id, 0)
	if n := connB.count(EventGameOver); n != 1 {
		t.Fatalf("game_over after late expiry = %d", n)
	}
}

func TestDetachOfReplacedConnectionIsIgnored(t *testing.T) {
	c := newTestCoordinator(t, Options{})
	id, connA, _ := startGame(t, c, 0)
	ctx := context.Background()

	if _, err := c.Attach(ctx, addrA, newConn("conn-a2")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := c.Detach(ctx, addrA, connA.ID()); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if v := mustView(t, c, id); v.DisconnectedPlayer != "" {
		t.Fatalf("old connection started a grace period")
	}
}
