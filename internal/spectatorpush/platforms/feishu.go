package platforms

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

type feishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content,omitempty"`
}

type feishuCard struct {
	Header struct {
		Title    feishuText `json:"title"`
		Template string     `json:"template"`
	} `json:"header"`
	Elements []feishuText `json:"elements"`
}

type feishuPayload struct {
	Timestamp string     `json:"timestamp,omitempty"`
	Sign      string     `json:"sign,omitempty"`
	MsgType   string     `json:"msg_type"`
	Card      feishuCard `json:"card"`
}

type feishu struct {
	p   poster
	now func() time.Time
}

func (f feishu) Send(ctx context.Context, dst Destination, card Card) error {
	payload := feishuPayload{MsgType: "interactive"}
	payload.Card.Header.Title = feishuText{Tag: "plain_text", Content: card.Title}
	payload.Card.Header.Template = feishuTemplates[card.Tone]
	if payload.Card.Header.Template == "" {
		payload.Card.Header.Template = "blue"
	}

	body := card.Body
	if body == "" {
		body = card.Summary
	}
	payload.Card.Elements = append(payload.Card.Elements, feishuText{Tag: "markdown", Content: body})
	if len(card.Facts) > 0 {
		lines := make([]string, 0, len(card.Facts))
		for _, fact := range card.Facts {
			lines = append(lines, "**"+fact.Label+"**: "+fact.Value)
		}
		payload.Card.Elements = append(payload.Card.Elements, feishuText{Tag: "markdown", Content: strings.Join(lines, "\n")})
	}

	if secret := strings.TrimSpace(dst.Secret); secret != "" {
		ts := strconv.FormatInt(f.now().Unix(), 10)
		payload.Timestamp = ts
		payload.Sign = feishuSign(ts, secret)
	}
	return f.p.post(ctx, dst.URL, nil, payload)
}

// feishuSign is the custom-bot signature: HMAC-SHA256 keyed with
// "timestamp\nsecret" over an empty message, base64 encoded.
func feishuSign(timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(timestamp+"\n"+secret))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

var feishuTemplates = map[Tone]string{
	ToneInfo: "blue",
	ToneWarn: "yellow",
	ToneGood: "green",
	ToneBad:  "red",
}
