package session

import (
	"context"
	"encoding/json"
	"time"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/dice"
	"backgammon-arena/internal/escrow"

	"github.com/rs/zerolog/log"
)

type Options struct {
	Rules     Rules
	Dice      DiceSource
	Snapshots SnapshotStore
	Escrow    escrow.Client
	Results   ResultRecorder
	Observer  EventObserver
	Timing    Timing
}

type Coordinator struct {
	registry  *Registry
	locks     *KeyedLock
	rules     Rules
	dice      DiceSource
	snapshots SnapshotStore
	escrow    escrow.Client
	results   ResultRecorder
	observer  EventObserver
	timing    Timing

	now          func() time.Time
	fallbackDice func() ([2]int, error)
}

func NewCoordinator(opts Options) *Coordinator {
	c := &Coordinator{
		registry:     NewRegistry(),
		locks:        NewKeyedLock(),
		rules:        opts.Rules,
		dice:         opts.Dice,
		snapshots:    opts.Snapshots,
		escrow:       opts.Escrow,
		results:      opts.Results,
		observer:     opts.Observer,
		timing:       opts.Timing.withDefaults(),
		now:          time.Now,
		fallbackDice: dice.RandomPair,
	}
	if c.rules == nil {
		c.rules = backgammon.Engine{}
	}
	if c.dice == nil {
		c.dice = dice.NewEngine()
	}
	return c
}

func (c *Coordinator) Timing() Timing {
	return c.timing
}

// withSession runs fn under the game's lock with the live session.
func (c *Coordinator) withSession(ctx context.Context, gameID string, fn func(s *Session) error) error {
	return c.locks.WithLock(ctx, gameID, func() error {
		s, ok := c.registry.Get(gameID)
		if !ok {
			return ErrGameNotFound
		}
		return fn(s)
	})
}

// playerIn resolves address to a color in a playing session.
func playerIn(s *Session, address string) (backgammon.Player, error) {
	if s.Status != StatusPlaying {
		return "", ErrGameNotPlaying
	}
	color, ok := s.colorOf(address)
	if !ok {
		return "", ErrNotAPlayer
	}
	return color, nil
}

func (c *Coordinator) send(conn Conn, ev Event) {
	if conn == nil {
		return
	}
	if err := conn.Send(ev); err != nil {
		log.Debug().Err(err).Str("conn_id", conn.ID()).Str("event", ev.Type).Msg("drop event for closed connection")
	}
}

func (c *Coordinator) sendToPlayer(s *Session, p backgammon.Player, ev Event) {
	ev.GameID = s.ID
	if seat := s.seat(p); seat != nil {
		c.send(seat.Conn, ev)
	}
}

func (c *Coordinator) broadcast(s *Session, ev Event) {
	ev.GameID = s.ID
	for _, seat := range []*Seat{s.White, s.Black} {
		if seat != nil {
			c.send(seat.Conn, ev)
		}
	}
	for _, conn := range s.spectators {
		c.send(conn, ev)
	}
	c.observe(ev)
}

// broadcastSplit sends own to actor and others to everybody else.
func (c *Coordinator) broadcastSplit(s *Session, actor backgammon.Player, own, others Event) {
	c.sendToPlayer(s, actor, own)
	c.sendToPlayer(s, actor.Opponent(), others)
	others.GameID = s.ID
	for _, conn := range s.spectators {
		c.send(conn, others)
	}
	c.observe(others)
}

func (c *Coordinator) observe(ev Event) {
	if c.observer != nil {
		c.observer.Observe(ev)
	}
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	ID                  string                  `json:"id"`
	State               backgammon.State        `json:"match_state"`
	WagerAmount         int64                   `json:"wager_amount"`
	Status              Status                  `json:"status"`
	EscrowStatus        EscrowStatus            `json:"escrow_status"`
	White               string                  `json:"white"`
	Black               string                  `json:"black"`
	TurnMoveStack       []backgammon.State      `json:"turn_move_stack"`
	PendingConfirmation string                  `json:"pending_confirmation,omitempty"`
	PendingDouble       string                  `json:"pending_double,omitempty"`
	PendingResignation  *PendingResignation     `json:"pending_resignation,omitempty"`
	MoveHistory         []backgammon.TurnRecord `json:"move_history"`
	DiceHistory         []dice.Record           `json:"dice_history"`
	CreatedAt           time.Time               `json:"created_at"`
	SavedAt             time.Time               `json:"saved_at"`
}

func (c *Coordinator) snapshotOf(s *Session) Snapshot {
	stack := make([]backgammon.State, len(s.turnMoveStack))
	for i, st := range s.turnMoveStack {
		stack[i] = st.Clone()
	}
	snap := Snapshot{
		ID:                  s.ID,
		State:               s.State.Clone(),
		WagerAmount:         s.WagerAmount,
		Status:              s.Status,
		EscrowStatus:        s.EscrowStatus,
		White:               s.addressOf(backgammon.White),
		Black:               s.addressOf(backgammon.Black),
		TurnMoveStack:       stack,
		PendingConfirmation: s.pendingConfirmation,
		PendingDouble:       s.pendingDouble,
		MoveHistory:         s.State.MoveHistory,
		DiceHistory:         c.dice.History(s.ID),
		CreatedAt:           s.CreatedAt,
		SavedAt:             c.now(),
	}
	if s.pendingResignation != nil {
		pr := *s.pendingResignation
		snap.PendingResignation = &pr
	}
	return snap
}

// persist writes the current snapshot. Failures are logged and swallowed.
func (c *Coordinator) persist(s *Session) {
	s.lastActivity = c.now()
	if c.snapshots == nil || s.Status != StatusPlaying {
		return
	}
	raw, err := json.Marshal(c.snapshotOf(s))
	if err != nil {
		metricSnapshotFailures.WithLabelValues("encode").Inc()
		log.Warn().Err(err).Str("game_id", s.ID).Msg("encode snapshot failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timing.PersistTimeout)
	defer cancel()
	if err := c.snapshots.Save(ctx, s.ID, raw); err != nil {
		metricSnapshotFailures.WithLabelValues("save").Inc()
		log.Warn().Err(err).Str("game_id", s.ID).Msg("save snapshot failed")
	}
}

func (c *Coordinator) dropSnapshot(gameID string) {
	if c.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timing.PersistTimeout)
	defer cancel()
	if err := c.snapshots.Delete(ctx, gameID); err != nil {
		metricSnapshotFailures.WithLabelValues("delete").Inc()
		log.Warn().Err(err).Str("game_id", gameID).Msg("delete snapshot failed")
	}
}

// finishLocked moves s to finished after s.State has been replaced with a
// game-over state. It stops timers, clears negotiation state, frees the
// players for new games and hands the result to the archive and escrow.
func (c *Coordinator) finishLocked(s *Session, reason string) {
	if s.Status == StatusFinished {
		return
	}
	s.Status = StatusFinished
	s.FinishedAt = c.now()
	s.EndReason = reason
	s.lastActivity = s.FinishedAt
	c.stopTurnTimer(s)
	c.stopGrace(s)
	s.turnMoveStack = nil
	s.pendingConfirmation = ""
	s.pendingDouble = ""
	s.pendingResignation = nil
	c.registry.Release(s)
	c.dropSnapshot(s.ID)
	metricGamesFinished.WithLabelValues(reason).Inc()

	c.broadcast(s, Event{
		Type:       EventGameOver,
		White:      s.addressOf(backgammon.White),
		Black:      s.addressOf(backgammon.Black),
		Winner:     s.State.Winner,
		ResultType: s.State.ResultType,
		Reason:     reason,
		CubeValue:  s.State.CubeValue,
		GameState:  stateRef(s.State),
	})
	log.Info().
		Str("game_id", s.ID).
		Str("winner", string(s.State.Winner)).
		Str("result_type", string(s.State.ResultType)).
		Int("cube", s.State.CubeValue).
		Str("reason", reason).
		Msg("game finished")

	if c.results != nil {
		rec := c.matchResultOf(s)
		go c.recordResult(rec)
	}
	if c.escrow != nil && s.EscrowStatus == EscrowActive {
		go c.SettleEscrow(context.Background(), s.ID)
	}
}

// Close stops every timer. Sessions stay in memory.
func (c *Coordinator) Close() {
	for _, id := range c.registry.IDs() {
		_ = c.withSession(context.Background(), id, func(s *Session) error {
			c.stopTurnTimer(s)
			c.stopGrace(s)
			return nil
		})
	}
}
