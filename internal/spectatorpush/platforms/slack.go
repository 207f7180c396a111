package platforms

import (
	"context"
	"strings"
)

type slackPayload struct {
	Text string `json:"text"`
}

// slack posts a plain mrkdwn message to an incoming webhook.
type slack struct{ p poster }

func (s slack) Send(ctx context.Context, dst Destination, card Card) error {
	var b strings.Builder
	b.WriteString("*" + card.Title + "*")
	if card.Summary != "" {
		b.WriteString("\n" + card.Summary)
	}
	for _, f := range card.Facts {
		b.WriteString("\n> " + f.Label + ": " + f.Value)
	}
	return s.p.post(ctx, dst.URL, nil, slackPayload{Text: b.String()})
}
