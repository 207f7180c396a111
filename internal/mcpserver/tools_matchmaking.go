package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerMatchmakingTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_game",
			mcp.WithDescription("Create a game and take the white seat"),
			mcp.WithString("address", mcp.Required(), mcp.Description("Player address")),
			mcp.WithNumber("wager_amount", mcp.Description("Wager per point, default 0")),
		),
		s.handleCreateGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"join_game",
			mcp.WithDescription("Join a waiting game; the second player starts it"),
			mcp.WithString("address", mcp.Required(), mcp.Description("Player address")),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
		),
		s.handleJoinGame,
	)
}

func (s *Server) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := request.RequireString("address")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	address = normalizeAddress(address)
	if address == "" {
		return toolError("invalid_address", "address is required"), nil
	}
	wager := int64(request.GetFloat("wager_amount", 0))
	v, err := s.coord.CreateGame(ctx, wager, address, nil)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(v), nil
}

func (s *Server) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := request.RequireString("address")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	address = normalizeAddress(address)
	if address == "" {
		return toolError("invalid_address", "address is required"), nil
	}
	res, err := s.coord.Join(ctx, gameID, address, nil)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"game_id":  res.GameID,
		"color":    res.Color,
		"opponent": res.Opponent,
		"started":  res.Started,
	}), nil
}
