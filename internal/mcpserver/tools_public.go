package mcpserver

import (
	"context"
	"errors"

	"backgammon-arena/internal/dice"
	"backgammon-arena/internal/session"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublicTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_game",
			mcp.WithDescription("Get the live view of a game"),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
		),
		s.handleGetGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_dice_history",
			mcp.WithDescription("Get the commit-reveal dice audit of a game, each record verified"),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
		),
		s.handleGetDiceHistory,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"find_player_game",
			mcp.WithDescription("Find the live game a player is seated in"),
			mcp.WithString("address", mcp.Required(), mcp.Description("Player address")),
		),
		s.handleFindPlayerGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_player_matches",
			mcp.WithDescription("List a player's finished matches, newest first"),
			mcp.WithString("address", mcp.Required(), mcp.Description("Player address")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 20, max 100")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListPlayerMatches,
	)
}

func (s *Server) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	v, err := s.coord.View(ctx, gameID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(v), nil
}

type auditRecord struct {
	dice.Record
	Verified bool `json:"verified"`
}

func (s *Server) handleGetDiceHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	records, err := s.coord.DiceHistory(ctx, gameID)
	source := "live"
	if errors.Is(err, session.ErrGameNotFound) && s.archive != nil {
		records, err = s.archivedDice(ctx, gameID)
		source = "archive"
	}
	if err != nil {
		return mapDomainError(err), nil
	}
	out := make([]auditRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, auditRecord{Record: rec, Verified: dice.Verify(rec)})
	}
	return toolResult(map[string]any{"game_id": gameID, "source": source, "records": out}), nil
}

func (s *Server) archivedDice(ctx context.Context, gameID string) ([]dice.Record, error) {
	m, err := s.archive.GetMatchByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var records []dice.Record
	if err := m.DecodeDice(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Server) handleFindPlayerGame(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := request.RequireString("address")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	gameID, ok := s.coord.LookupByPlayer(normalizeAddress(address))
	if !ok {
		return toolError("not_found", "player is not seated in a live game"), nil
	}
	return toolResult(map[string]any{"address": address, "game_id": gameID}), nil
}

func (s *Server) handleListPlayerMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := request.RequireString("address")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	if s.archive == nil {
		return toolError("archive_disabled", "match archive is not configured"), nil
	}
	limit, offset := clampPagination(request.GetInt("limit", defaultPageLimit), request.GetInt("offset", 0))
	items, err := s.archive.ListMatchesByPlayer(ctx, normalizeAddress(address), limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"address": address, "items": items, "limit": limit, "offset": offset}), nil
}
