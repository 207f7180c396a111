// Package session runs live backgammon games: seating, the turn state
// machine, cube and resignation negotiation, turn and disconnect timers,
// crash-recovery snapshots and escrow hand-off. Every mutation of a game
// happens under that game's entry in a FIFO keyed lock.
package session

import (
	"context"
	"time"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/dice"
	"backgammon-arena/internal/store"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

type EscrowStatus string

const (
	EscrowNone            EscrowStatus = "none"
	EscrowPendingDeposits EscrowStatus = "pending_deposits"
	EscrowActive          EscrowStatus = "active"
	EscrowSettled         EscrowStatus = "settled"
	EscrowCancelled       EscrowStatus = "cancelled"
)

// Conn is an attached client connection. Send is called while the game lock
// is held and must not block.
type Conn interface {
	ID() string
	Send(Event) error
}

// Rules is the stateless rules engine the coordinator drives. backgammon.Engine
// implements it.
type Rules interface {
	NewState() backgammon.State
	SetDice(s backgammon.State, d1, d2 int) (backgammon.State, error)
	MakeMove(s backgammon.State, from, to int) (backgammon.State, backgammon.Move, bool)
	EndTurn(s backgammon.State) backgammon.State
	HasLegalMoves(s backgammon.State) bool
	LegalFirstMoves(b backgammon.Board, p backgammon.Player, dice []int) []backgammon.Move
	CanDouble(s backgammon.State, p backgammon.Player) bool
	AcceptDouble(s backgammon.State, acceptor backgammon.Player) backgammon.State
	RejectDouble(s backgammon.State, rejector backgammon.Player) (backgammon.State, backgammon.Player)
	Resign(s backgammon.State, loser backgammon.Player, result backgammon.ResultType) backgammon.State
}

type DiceSource interface {
	CreateTurnCommit(gameID string, turnNumber int) (dice.Commit, error)
	RevealDice(gameID string, turnNumber int, clientSeed string) (dice.Reveal, error)
	History(gameID string) []dice.Record
	Load(gameID string, records []dice.Record)
	Forget(gameID string)
}

// SnapshotStore is a best-effort TTL key-value store for crash recovery.
type SnapshotStore interface {
	Save(ctx context.Context, gameID string, data []byte) error
	Delete(ctx context.Context, gameID string) error
	ListActive(ctx context.Context) (map[string][]byte, error)
}

type ResultRecorder interface {
	RecordMatchResult(ctx context.Context, r store.MatchResult) error
}

// EventObserver sees every broadcast event, spectator view, with GameID set.
// Observe runs under the game's lock and must not block.
type EventObserver interface {
	Observe(ev Event)
}

type Seat struct {
	Address string
	Conn    Conn
}

type PendingResignation struct {
	Player     string                `json:"player"`
	ResignType backgammon.ResultType `json:"resign_type"`
}

// Session is one game. All fields are guarded by the game's lock.
type Session struct {
	ID           string
	State        backgammon.State
	White        *Seat
	Black        *Seat
	Status       Status
	WagerAmount  int64
	EscrowStatus EscrowStatus
	CreatedAt    time.Time
	FinishedAt   time.Time
	EndReason    string

	spectators map[string]Conn

	turnMoveStack       []backgammon.State
	pendingConfirmation string
	pendingDouble       string
	pendingResignation  *PendingResignation

	turnTimeLimit time.Duration
	turnTimer     *time.Timer
	turnToken     uint64

	disconnectedPlayer string
	disconnectedAt     time.Time
	graceStop          chan struct{}
	graceToken         uint64

	turnStartedAt  time.Time
	lastMoveAt     time.Time
	moveTimes      []time.Duration
	stallingWarned bool

	lastActivity   time.Time
	escrowInFlight bool
}

func (s *Session) colorOf(address string) (backgammon.Player, bool) {
	if s.White != nil && s.White.Address == address {
		return backgammon.White, true
	}
	if s.Black != nil && s.Black.Address == address {
		return backgammon.Black, true
	}
	return "", false
}

func (s *Session) seat(p backgammon.Player) *Seat {
	if p == backgammon.White {
		return s.White
	}
	return s.Black
}

func (s *Session) addressOf(p backgammon.Player) string {
	if seat := s.seat(p); seat != nil {
		return seat.Address
	}
	return ""
}

func (s *Session) hasConnectedPlayer() bool {
	return (s.White != nil && s.White.Conn != nil) || (s.Black != nil && s.Black.Conn != nil)
}

// View is a read-only copy of a session for callers outside the lock.
type View struct {
	ID                  string              `json:"id"`
	Status              Status              `json:"status"`
	White               string              `json:"white,omitempty"`
	Black               string              `json:"black,omitempty"`
	WagerAmount         int64               `json:"wager_amount"`
	EscrowStatus        EscrowStatus        `json:"escrow_status"`
	State               backgammon.State    `json:"game_state"`
	PendingConfirmation string              `json:"pending_confirmation,omitempty"`
	PendingDouble       string              `json:"pending_double,omitempty"`
	PendingResignation  *PendingResignation `json:"pending_resignation,omitempty"`
	DisconnectedPlayer  string              `json:"disconnected_player,omitempty"`
	UndoDepth           int                 `json:"undo_depth"`
	Spectators          int                 `json:"spectators"`
	EndReason           string              `json:"end_reason,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	FinishedAt          *time.Time          `json:"finished_at,omitempty"`
}

func (s *Session) view() View {
	v := View{
		ID:                  s.ID,
		Status:              s.Status,
		White:               s.addressOf(backgammon.White),
		Black:               s.addressOf(backgammon.Black),
		WagerAmount:         s.WagerAmount,
		EscrowStatus:        s.EscrowStatus,
		State:               s.State.Clone(),
		PendingConfirmation: s.pendingConfirmation,
		PendingDouble:       s.pendingDouble,
		DisconnectedPlayer:  s.disconnectedPlayer,
		UndoDepth:           len(s.turnMoveStack),
		Spectators:          len(s.spectators),
		EndReason:           s.EndReason,
		CreatedAt:           s.CreatedAt,
	}
	if s.pendingResignation != nil {
		pr := *s.pendingResignation
		v.PendingResignation = &pr
	}
	if !s.FinishedAt.IsZero() {
		t := s.FinishedAt
		v.FinishedAt = &t
	}
	return v
}

type JoinResult struct {
	GameID   string
	Color    backgammon.Player
	Opponent string
	Started  bool
}

type RollResult struct {
	Dice              [2]int
	State             backgammon.State
	LegalMoves        []backgammon.Move
	NeedsConfirmation bool
	CommitHash        string
	ServerSeed        string
}

type MoveResult struct {
	Move          backgammon.Move
	Player        backgammon.Player
	State         backgammon.State
	LegalMoves    []backgammon.Move
	TurnAutoEnded bool
	GameOver      bool
}

type UndoResult struct {
	State      backgammon.State
	LegalMoves []backgammon.Move
}

type ResignResult struct {
	Pending    bool
	Winner     backgammon.Player
	ResultType backgammon.ResultType
}

// Timing holds every duration the coordinator uses. Zero fields fall back to
// DefaultTiming.
type Timing struct {
	TurnTimeout       time.Duration
	DisconnectGrace   time.Duration
	CountdownInterval time.Duration
	StallThreshold    time.Duration
	FinishedRetention time.Duration
	IdleTimeout       time.Duration
	PersistTimeout    time.Duration
	EscrowTimeout     time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		TurnTimeout:       60 * time.Second,
		DisconnectGrace:   30 * time.Second,
		CountdownInterval: 5 * time.Second,
		StallThreshold:    20 * time.Second,
		FinishedRetention: 10 * time.Minute,
		IdleTimeout:       2 * time.Hour,
		PersistTimeout:    2 * time.Second,
		EscrowTimeout:     30 * time.Second,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.TurnTimeout <= 0 {
		t.TurnTimeout = d.TurnTimeout
	}
	if t.DisconnectGrace <= 0 {
		t.DisconnectGrace = d.DisconnectGrace
	}
	if t.CountdownInterval <= 0 {
		t.CountdownInterval = d.CountdownInterval
	}
	if t.StallThreshold <= 0 {
		t.StallThreshold = d.StallThreshold
	}
	if t.FinishedRetention <= 0 {
		t.FinishedRetention = d.FinishedRetention
	}
	if t.IdleTimeout <= 0 {
		t.IdleTimeout = d.IdleTimeout
	}
	if t.PersistTimeout <= 0 {
		t.PersistTimeout = d.PersistTimeout
	}
	if t.EscrowTimeout <= 0 {
		t.EscrowTimeout = d.EscrowTimeout
	}
	return t
}
