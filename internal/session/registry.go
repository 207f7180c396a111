package session

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"sync"
	"time"

	"backgammon-arena/internal/backgammon"
)

const idAttempts = 100

// Registry indexes live sessions by id and seated players by address. Its
// mutex only guards the maps; session fields stay under the game lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	byPlayer map[string]string
	code     func() int
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: map[string]*Session{},
		byPlayer: map[string]string{},
		code:     randomCode,
		now:      time.Now,
	}
}

// randomCode draws a four digit game code in [1000, 9999].
func randomCode() int {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return 1000 + int(time.Now().UnixNano()%9000)
	}
	return 1000 + int(n.Int64())
}

func (r *Registry) nextIDLocked() string {
	for i := 0; i < idAttempts; i++ {
		id := strconv.Itoa(r.code())
		if _, taken := r.sessions[id]; !taken {
			return id
		}
	}
	for {
		id := strconv.Itoa(r.code()) + strconv.FormatInt(r.now().UnixNano()%1000, 10)
		if _, taken := r.sessions[id]; !taken {
			return id
		}
	}
}

// Create registers a new waiting session.
func (r *Registry) Create(wager int64, state backgammon.State, turnLimit time.Duration) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	s := &Session{
		ID:            r.nextIDLocked(),
		State:         state,
		Status:        StatusWaiting,
		WagerAmount:   wager,
		EscrowStatus:  EscrowNone,
		CreatedAt:     now,
		spectators:    map[string]Conn{},
		turnTimeLimit: turnLimit,
		lastActivity:  now,
	}
	r.sessions[s.ID] = s
	metricSessionsLive.Inc()
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) LookupByPlayer(address string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPlayer[address]
	return id, ok
}

// Join seats address in s. The first player takes white, a second distinct
// player takes black and starts the game. Caller holds the game lock.
func (r *Registry) Join(s *Session, address string, conn Conn) (backgammon.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if other, ok := r.byPlayer[address]; ok && other != s.ID {
		return "", ErrAlreadyInGame
	}
	if s.Status == StatusFinished {
		return "", ErrCannotJoin
	}
	switch {
	case s.White == nil:
		s.White = &Seat{Address: address, Conn: conn}
		r.byPlayer[address] = s.ID
		return backgammon.White, nil
	case s.Black == nil && s.White.Address != address:
		s.Black = &Seat{Address: address, Conn: conn}
		r.byPlayer[address] = s.ID
		s.Status = StatusPlaying
		return backgammon.Black, nil
	}
	return "", ErrCannotJoin
}

// Release frees the player index entries that point at s.
func (r *Registry) Release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked(s)
}

func (r *Registry) releaseLocked(s *Session) {
	for _, seat := range []*Seat{s.White, s.Black} {
		if seat != nil && r.byPlayer[seat.Address] == s.ID {
			delete(r.byPlayer, seat.Address)
		}
	}
}

func (r *Registry) Remove(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	r.releaseLocked(s)
	delete(r.sessions, id)
	metricSessionsLive.Dec()
	return s, true
}

// Insert adds a restored session. It fails if the id or either player is
// already taken.
func (r *Registry) Insert(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[s.ID]; taken {
		return ErrCannotJoin
	}
	for _, seat := range []*Seat{s.White, s.Black} {
		if seat == nil {
			continue
		}
		if _, busy := r.byPlayer[seat.Address]; busy {
			return ErrAlreadyInGame
		}
	}
	r.sessions[s.ID] = s
	if s.Status != StatusFinished {
		for _, seat := range []*Seat{s.White, s.Black} {
			if seat != nil {
				r.byPlayer[seat.Address] = s.ID
			}
		}
	}
	metricSessionsLive.Inc()
	return nil
}

func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
