// Package dice implements commit-reveal dice for backgammon turns. The server
// publishes sha256(serverSeed) before the roll and reveals the seed with the
// dice, so either player can recompute both afterwards.
package dice

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"math/big"
	"sort"
	"strconv"
	"sync"
)

var (
	ErrNoCommit        = errors.New("dice_commit_not_found")
	ErrAlreadyRevealed = errors.New("dice_already_revealed")
)

const (
	seedBytes = 32
	// largest multiple of 6 that fits in a byte
	acceptBelow = 252
)

// Record is one audited turn. Dice is zero until the turn is revealed.
type Record struct {
	TurnNumber int    `json:"turn_number"`
	ServerSeed string `json:"server_seed"`
	ClientSeed string `json:"client_seed"`
	CommitHash string `json:"commit_hash"`
	Dice       [2]int `json:"dice"`
}

func (r Record) Revealed() bool {
	return r.Dice[0] != 0
}

type Commit struct {
	TurnNumber int    `json:"turn_number"`
	CommitHash string `json:"commit_hash"`
}

type Reveal struct {
	Dice       [2]int `json:"dice"`
	ServerSeed string `json:"server_seed"`
	CommitHash string `json:"commit_hash"`
}

// Engine keeps one append-only record sequence per game.
type Engine struct {
	mu    sync.Mutex
	games map[string]map[int]*Record
	rand  io.Reader
}

func NewEngine() *Engine {
	return &Engine{games: map[string]map[int]*Record{}, rand: rand.Reader}
}

// CreateTurnCommit draws a fresh server seed for the turn and returns only its
// hash. A second commit for the same turn replaces an unrevealed one.
func (e *Engine) CreateTurnCommit(gameID string, turnNumber int) (Commit, error) {
	buf := make([]byte, seedBytes)
	if _, err := io.ReadFull(e.rand, buf); err != nil {
		return Commit{}, err
	}
	seed := hex.EncodeToString(buf)
	rec := &Record{TurnNumber: turnNumber, ServerSeed: seed, CommitHash: CommitHash(seed)}

	e.mu.Lock()
	defer e.mu.Unlock()
	turns := e.games[gameID]
	if turns == nil {
		turns = map[int]*Record{}
		e.games[gameID] = turns
	}
	if prev := turns[turnNumber]; prev != nil && prev.Revealed() {
		return Commit{}, ErrAlreadyRevealed
	}
	turns[turnNumber] = rec
	return Commit{TurnNumber: turnNumber, CommitHash: rec.CommitHash}, nil
}

// RevealDice derives the dice for a committed turn and records the client seed.
func (e *Engine) RevealDice(gameID string, turnNumber int, clientSeed string) (Reveal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.games[gameID][turnNumber]
	if rec == nil {
		return Reveal{}, ErrNoCommit
	}
	if rec.Revealed() {
		return Reveal{}, ErrAlreadyRevealed
	}
	rec.ClientSeed = clientSeed
	rec.Dice = Derive(rec.ServerSeed, clientSeed, turnNumber)
	return Reveal{Dice: rec.Dice, ServerSeed: rec.ServerSeed, CommitHash: rec.CommitHash}, nil
}

// History returns the revealed turns of a game ordered by turn number.
func (e *Engine) History(gameID string) []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Record, 0, len(e.games[gameID]))
	for _, rec := range e.games[gameID] {
		if rec.Revealed() {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TurnNumber < out[j].TurnNumber })
	return out
}

// Load seeds a game's history from previously revealed records, e.g. after a
// restart. Existing records for the same turns are overwritten.
func (e *Engine) Load(gameID string, records []Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	turns := e.games[gameID]
	if turns == nil {
		turns = map[int]*Record{}
		e.games[gameID] = turns
	}
	for _, r := range records {
		rec := r
		turns[rec.TurnNumber] = &rec
	}
}

func (e *Engine) Forget(gameID string) {
	e.mu.Lock()
	delete(e.games, gameID)
	e.mu.Unlock()
}

func CommitHash(serverSeed string) string {
	sum := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(sum[:])
}

// Derive maps the seeds and turn number to two dice. Bytes of
// sha256(serverSeed + clientSeed + turnNumber) are read in order and any byte
// >= 252 is skipped, so each face keeps exactly 42 of the 252 accepted values.
// If a digest runs out, the next block is sha256 of the same input followed by
// ":" and a block counter starting at 1.
func Derive(serverSeed, clientSeed string, turnNumber int) [2]int {
	input := serverSeed + clientSeed + strconv.Itoa(turnNumber)
	sum := sha256.Sum256([]byte(input))
	var out [2]int
	n := 0
	for block := 1; ; block++ {
		for _, b := range sum {
			if b >= acceptBelow {
				continue
			}
			out[n] = int(b)%6 + 1
			n++
			if n == len(out) {
				return out
			}
		}
		sum = sha256.Sum256([]byte(input + ":" + strconv.Itoa(block)))
	}
}

// Verify recomputes the commitment and the dice of a revealed record.
func Verify(r Record) bool {
	if CommitHash(r.ServerSeed) != r.CommitHash {
		return false
	}
	return Derive(r.ServerSeed, r.ClientSeed, r.TurnNumber) == r.Dice
}

// RandomPair draws two uniform dice from crypto/rand.
func RandomPair() ([2]int, error) {
	var out [2]int
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(6))
		if err != nil {
			return out, err
		}
		out[i] = int(n.Int64()) + 1
	}
	return out, nil
}
