// Package spectatorpush relays match highlights (starts, cube turns, results,
// settlements) to chat webhooks.
package spectatorpush

import "time"

type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeGame   Scope = "game"
	ScopePlayer Scope = "player"
)

// Target is one webhook. Match holds the game id or player address for the
// game and player scopes. An empty Events list accepts every highlight.
type Target struct {
	Platform string   `json:"platform"`
	URL      string   `json:"url"`
	Secret   string   `json:"secret,omitempty"`
	Scope    Scope    `json:"scope,omitempty"`
	Match    string   `json:"match,omitempty"`
	Events   []string `json:"events,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
}

func (t Target) key() string {
	return t.Platform + " " + t.URL + " " + string(t.Scope) + " " + t.Match
}

func (t Target) accepts(h Highlight) bool {
	switch t.Scope {
	case ScopeAll:
	case ScopeGame:
		if t.Match != h.GameID {
			return false
		}
	case ScopePlayer:
		if t.Match != h.White && t.Match != h.Black {
			return false
		}
	default:
		return false
	}
	if len(t.Events) == 0 {
		return true
	}
	for _, e := range t.Events {
		if e == h.Kind {
			return true
		}
	}
	return false
}

type Config struct {
	Enabled          bool
	Targets          []Target
	Workers          int
	MaxRetries       int
	BackoffBase      time.Duration
	BackoffMax       time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
	SendTimeout      time.Duration
	QueueSize        int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 500 * time.Millisecond
	}
	if c.BackoffMax < c.BackoffBase {
		c.BackoffMax = 30 * time.Second
	}
	if c.BreakerThreshold <= 0 {
		c.BreakerThreshold = 3
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = 30 * time.Second
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 5 * time.Second
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	return c
}

// Highlight is the slice of a session event worth telling spectators about,
// with the seats filled in from the game start.
type Highlight struct {
	Kind   string
	At     time.Time
	GameID string
	White  string
	Black  string
	Actor  string
	Winner string
	Result string
	Reason string
	Cube   int
	Wager  int64
}

type job struct {
	target  Target
	hl      Highlight
	attempt int
}
