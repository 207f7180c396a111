package session

import (
	"testing"
	"time"
)

func TestStallingNeedsEnoughSamples(t *testing.T) {
	slow := []time.Duration{30 * time.Second, 30 * time.Second, 30 * time.Second, 30 * time.Second}
	if stalling(slow, 20*time.Second) {
		t.Fatalf("four samples flagged")
	}
	slow = append(slow, 30*time.Second)
	if !stalling(slow, 20*time.Second) {
		t.Fatalf("five slow samples not flagged")
	}
	fast := []time.Duration{time.Second, time.Second, time.Second, time.Second, 90 * time.Second}
	if stalling(fast, 20*time.Second) {
		t.Fatalf("mean %v flagged", 94*time.Second/5)
	}
}

func TestStallingWarningIsSentOnce(t *testing.T) {
	timing := fastTiming()
	timing.StallThreshold = 10 * time.Second
	c := newTestCoordinator(t, Options{Timing: timing})
	conn := newConn("a")
	s := &Session{ID: "1234", White: &Seat{Address: addrA, Conn: conn}, Black: &Seat{Address: addrB}}

	t0 := time.Unix(1_700_000_000, 0)
	s.lastMoveAt = t0
	for i := 1; i <= 8; i++ {
		c.recordMoveTime(s, "white", t0.Add(time.Duration(i)*11*time.Second))
	}
	if n := conn.count(EventStallingWarning); n != 1 {
		t.Fatalf("stalling warnings = %d", n)
	}
	if len(s.moveTimes) != 8 {
		t.Fatalf("samples = %d", len(s.moveTimes))
	}
	for i := 9; i <= 20; i++ {
		c.recordMoveTime(s, "white", t0.Add(time.Duration(i)*11*time.Second))
	}
	if len(s.moveTimes) != stallWindow {
		t.Fatalf("window = %d", len(s.moveTimes))
	}
}
