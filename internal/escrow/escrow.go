// Package escrow talks to the settlement gateway that holds wagered funds for
// a match. The gateway is an HTTP front for the on-chain escrow contract.
package escrow

import (
	"context"

	"backgammon-arena/internal/backgammon"
)

type Client interface {
	QueryBalance(ctx context.Context, address string) (int64, error)
	CreateEscrow(ctx context.Context, gameID, playerA, playerB string, amount int64) error
	Settle(ctx context.Context, gameID, winner string, multiplier int) error
	Cancel(ctx context.Context, gameID string) error
}

// Multiplier is the number of wagers the winner collects: the result multiple
// (1, 2 or 3) times the cube value.
func Multiplier(result backgammon.ResultType, cubeValue int) int {
	if cubeValue < 1 {
		cubeValue = 1
	}
	return result.Multiplier() * cubeValue
}
