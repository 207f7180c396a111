package platforms

import (
	"context"
	"time"
)

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Content string         `json:"content"`
	Embeds  []discordEmbed `json:"embeds"`
}

var discordColors = map[Tone]int{
	ToneInfo: 0x5865F2,
	ToneWarn: 0xFEE75C,
	ToneGood: 0x57F287,
	ToneBad:  0xED4245,
}

type discord struct{ p poster }

func (d discord) Send(ctx context.Context, dst Destination, card Card) error {
	embed := discordEmbed{Title: card.Title, Description: card.Body, Color: discordColors[card.Tone]}
	if !card.At.IsZero() {
		embed.Timestamp = card.At.UTC().Format(time.RFC3339)
	}
	if card.Footer != "" {
		embed.Footer = &discordFooter{Text: card.Footer}
	}
	for _, f := range card.Facts {
		embed.Fields = append(embed.Fields, discordField{Name: f.Label, Value: f.Value, Inline: true})
	}
	return d.p.post(ctx, dst.URL, nil, discordPayload{Content: card.Summary, Embeds: []discordEmbed{embed}})
}
