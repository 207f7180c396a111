package spectatorpush

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"backgammon-arena/internal/config"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed targets.schema.json
var targetsSchemaJSON string

var targetsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("targets.schema.json", targetsSchemaJSON)
})

// ConfigFromServer builds the push config. Targets are only read, and must
// validate, when push is enabled. The config file path wins over inline JSON.
func ConfigFromServer(cfg config.ServerConfig) (Config, error) {
	out := Config{
		Enabled:     cfg.SpectatorPushEnabled,
		Workers:     cfg.SpectatorPushWorkers,
		MaxRetries:  cfg.SpectatorPushRetryMax,
		BackoffBase: cfg.SpectatorPushRetryBase,
	}.withDefaults()
	if !out.Enabled {
		return out, nil
	}

	raw := strings.TrimSpace(cfg.SpectatorPushConfigJSON)
	if path := strings.TrimSpace(cfg.SpectatorPushConfigPath); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read push targets: %w", err)
		}
		raw = strings.TrimSpace(string(b))
	}
	if raw == "" {
		return out, nil
	}
	targets, err := ParseTargets([]byte(raw))
	if err != nil {
		return Config{}, err
	}
	out.Targets = targets
	return out, nil
}

// ParseTargets validates raw against the target schema, then drops disabled
// targets and lowercases platform and event names.
func ParseTargets(raw []byte) ([]Target, error) {
	schema, err := targetsSchema()
	if err != nil {
		return nil, fmt.Errorf("compile push target schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse push targets: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid push targets: %w", err)
	}
	var targets []Target
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("parse push targets: %w", err)
	}

	out := targets[:0]
	for _, t := range targets {
		if t.Disabled {
			continue
		}
		t.Platform = strings.ToLower(strings.TrimSpace(t.Platform))
		if t.Scope == "" {
			t.Scope = ScopeAll
		}
		for i, e := range t.Events {
			t.Events[i] = strings.ToLower(strings.TrimSpace(e))
		}
		out = append(out, t)
	}
	return out, nil
}

type breakerState struct {
	failures  int
	openUntil time.Time
}

// breaker stops sending to a target for cooldown after threshold failures
// in a row.
type breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	state     map[string]breakerState
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{threshold: threshold, cooldown: cooldown, state: map[string]breakerState{}}
}

// openFor returns how long the breaker for key stays open, zero when closed.
func (b *breaker) openFor(key string, now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if until := b.state[key].openUntil; now.Before(until) {
		return until.Sub(now)
	}
	return 0
}

func (b *breaker) record(key string, now time.Time, failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !failed {
		delete(b.state, key)
		return
	}
	st := b.state[key]
	st.failures++
	if st.failures >= b.threshold {
		st = breakerState{openUntil: now.Add(b.cooldown)}
		metricPushJobs.WithLabelValues("breaker_opened").Inc()
	}
	b.state[key] = st
}
