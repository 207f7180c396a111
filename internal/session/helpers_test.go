package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/dice"
	"backgammon-arena/internal/store"
)

const (
	addrA = "bg1playeraaaa"
	addrB = "bg1playerbbbb"
)

// countingRules counts EndTurn calls that go through the Rules interface.
type countingRules struct {
	backgammon.Engine
	endTurns atomic.Int32
}

func (r *countingRules) EndTurn(s backgammon.State) backgammon.State {
	r.endTurns.Add(1)
	return r.Engine.EndTurn(s)
}

type recordingConn struct {
	id     string
	mu     sync.Mutex
	events []Event
}

func newConn(id string) *recordingConn {
	return &recordingConn{id: id}
}

func (r *recordingConn) ID() string { return r.id }

func (r *recordingConn) Send(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingConn) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recordingConn) count(typ string) int {
	n := 0
	for _, ev := range r.all() {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (r *recordingConn) last(typ string) (Event, bool) {
	evs := r.all()
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type == typ {
			return evs[i], true
		}
	}
	return Event{}, false
}

// scriptedDice hands out a fixed sequence of rolls, then repeats the last.
type scriptedDice struct {
	mu      sync.Mutex
	rolls   [][2]int
	next    int
	fail    bool
	history map[string][]dice.Record
}

func newScriptedDice(rolls ...[2]int) *scriptedDice {
	return &scriptedDice{rolls: rolls, history: map[string][]dice.Record{}}
}

func (d *scriptedDice) CreateTurnCommit(gameID string, turn int) (dice.Commit, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return dice.Commit{}, errors.New("entropy unavailable")
	}
	return dice.Commit{TurnNumber: turn, CommitHash: "commit"}, nil
}

func (d *scriptedDice) RevealDice(gameID string, turn int, clientSeed string) (dice.Reveal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pair := d.rolls[len(d.rolls)-1]
	if d.next < len(d.rolls) {
		pair = d.rolls[d.next]
		d.next++
	}
	d.history[gameID] = append(d.history[gameID], dice.Record{TurnNumber: turn, ClientSeed: clientSeed, Dice: pair})
	return dice.Reveal{Dice: pair, ServerSeed: "seed", CommitHash: "commit"}, nil
}

func (d *scriptedDice) History(gameID string) []dice.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dice.Record(nil), d.history[gameID]...)
}

func (d *scriptedDice) Load(gameID string, records []dice.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history[gameID] = append([]dice.Record(nil), records...)
}

func (d *scriptedDice) Forget(gameID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.history, gameID)
}

type memSnapshots struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	failing bool
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{data: map[string][]byte{}}
}

func (m *memSnapshots) Save(_ context.Context, id string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("redis down")
	}
	m.saves++
	m.data[id] = append([]byte(nil), raw...)
	return nil
}

func (m *memSnapshots) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memSnapshots) ListActive(context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (m *memSnapshots) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[id]
	return ok
}

type fakeEscrow struct {
	mu         sync.Mutex
	balances   map[string]int64
	createErr  error
	settleErr  error
	created    []string
	settled    map[string]int
	settledTo  map[string]string
	cancelled  []string
	settleHits int
}

func newFakeEscrow() *fakeEscrow {
	return &fakeEscrow{
		balances:  map[string]int64{},
		settled:   map[string]int{},
		settledTo: map[string]string{},
	}
}

func (f *fakeEscrow) QueryBalance(_ context.Context, addr string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[addr], nil
}

func (f *fakeEscrow) CreateEscrow(_ context.Context, gameID, _, _ string, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, gameID)
	return nil
}

func (f *fakeEscrow) Settle(_ context.Context, gameID, winner string, multiplier int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settleHits++
	if f.settleErr != nil {
		return f.settleErr
	}
	f.settled[gameID] = multiplier
	f.settledTo[gameID] = winner
	return nil
}

func (f *fakeEscrow) Cancel(_ context.Context, gameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, gameID)
	return nil
}

type memResults struct {
	mu      sync.Mutex
	records []store.MatchResult
}

func (m *memResults) RecordMatchResult(_ context.Context, r store.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memResults) all() []store.MatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.MatchResult(nil), m.records...)
}

func fastTiming() Timing {
	return Timing{
		TurnTimeout:       time.Hour,
		DisconnectGrace:   time.Hour,
		CountdownInterval: time.Hour,
		StallThreshold:    time.Hour,
		FinishedRetention: time.Hour,
		IdleTimeout:       time.Hour,
		PersistTimeout:    time.Second,
		EscrowTimeout:     time.Second,
	}
}

func newTestCoordinator(t *testing.T, opts Options) *Coordinator {
	t.Helper()
	if opts.Dice == nil {
		opts.Dice = newScriptedDice([2]int{3, 1})
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = fastTiming()
	}
	c := NewCoordinator(opts)
	t.Cleanup(c.Close)
	return c
}

// startGame seats addrA as white and addrB as black.
func startGame(t *testing.T, c *Coordinator, wager int64) (string, *recordingConn, *recordingConn) {
	t.Helper()
	ctx := context.Background()
	connA, connB := newConn("conn-a"), newConn("conn-b")
	v, err := c.CreateGame(ctx, wager, addrA, connA)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	res, err := c.Join(ctx, v.ID, addrB, connB)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !res.Started || res.Color != backgammon.Black {
		t.Fatalf("join result = %+v", res)
	}
	return v.ID, connA, connB
}

func mustView(t *testing.T, c *Coordinator, id string) View {
	t.Helper()
	v, err := c.View(context.Background(), id)
	if err != nil {
		t.Fatalf("view %s: %v", id, err)
	}
	return v
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
