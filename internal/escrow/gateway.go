package escrow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Gateway struct {
	inner   *http.Client
	baseURL string
	apiKey  string
	denom   string
}

func NewGateway(baseURL, apiKey, denom string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		inner:   &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		denom:   denom,
	}
}

type balanceResponse struct {
	Amount string `json:"amount"`
}

func (g *Gateway) QueryBalance(ctx context.Context, address string) (int64, error) {
	endpoint := g.baseURL + "/balances/" + url.PathEscape(address)
	if g.denom != "" {
		endpoint += "?denom=" + url.QueryEscape(g.denom)
	}
	_, raw, err := g.send(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	var out balanceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("decode balance: %w", err)
	}
	if out.Amount == "" {
		return 0, nil
	}
	amount, err := strconv.ParseInt(out.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance %q: %w", out.Amount, err)
	}
	return amount, nil
}

func (g *Gateway) CreateEscrow(ctx context.Context, gameID, playerA, playerB string, amount int64) error {
	_, _, err := g.send(ctx, http.MethodPost, g.baseURL+"/escrows", map[string]any{
		"game_id":      gameID,
		"player_a":     playerA,
		"player_b":     playerB,
		"wager_amount": strconv.FormatInt(amount, 10),
		"denom":        g.denom,
	})
	return err
}

func (g *Gateway) Settle(ctx context.Context, gameID, winner string, multiplier int) error {
	body := map[string]any{"winner": winner}
	if multiplier > 1 {
		body["multiplier"] = strconv.Itoa(multiplier)
	}
	_, _, err := g.send(ctx, http.MethodPost, g.escrowURL(gameID)+"/settle", body)
	return err
}

func (g *Gateway) Cancel(ctx context.Context, gameID string) error {
	_, _, err := g.send(ctx, http.MethodPost, g.escrowURL(gameID)+"/cancel", map[string]any{})
	return err
}

func (g *Gateway) escrowURL(gameID string) string {
	return g.baseURL + "/escrows/" + url.PathEscape(gameID)
}

func (g *Gateway) send(ctx context.Context, method, endpoint string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.inner.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, nil, readErr
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, raw, nil
	}
	return resp.StatusCode, raw, fmt.Errorf("escrow gateway %s %s failed with status %d", method, endpoint, resp.StatusCode)
}
