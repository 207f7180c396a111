// Package platforms renders highlight cards into chat webhook payloads.
package platforms

import (
	"context"
	"time"
)

// Fact is one short labelled value shown under the card body.
type Fact struct {
	Label string
	Value string
}

// Tone picks the accent colour each platform uses for a card.
type Tone string

const (
	ToneInfo Tone = "info"
	ToneWarn Tone = "warn"
	ToneGood Tone = "good"
	ToneBad  Tone = "bad"
)

type Card struct {
	Title   string
	Summary string
	Body    string
	Tone    Tone
	At      time.Time
	Footer  string
	Facts   []Fact
}

type Destination struct {
	URL    string
	Secret string
}

type Sender interface {
	Send(ctx context.Context, dst Destination, card Card) error
}

// Registry returns every built-in sender keyed by platform name, sharing one
// HTTP client with the given per-request timeout.
func Registry(timeout time.Duration) map[string]Sender {
	p := newPoster(timeout)
	return map[string]Sender{
		"discord": discord{p},
		"feishu":  feishu{p, time.Now},
		"slack":   slack{p},
	}
}
