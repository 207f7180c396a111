package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGameplayTools() {
	seat := []mcp.ToolOption{
		mcp.WithString("address", mcp.Required(), mcp.Description("Player address")),
		mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
	}
	tool := func(name, desc string, extra ...mcp.ToolOption) mcp.Tool {
		opts := append([]mcp.ToolOption{mcp.WithDescription(desc)}, seat...)
		return mcp.NewTool(name, append(opts, extra...)...)
	}

	s.mcpServer.AddTool(tool("roll_dice", "Roll for the player on turn"), s.handleRoll)
	s.mcpServer.AddTool(tool("move", "Move one checker by one die",
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Source point, 0/25 for the bar")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Destination point, 0/25 for bearing off")),
	), s.handleMove)
	s.mcpServer.AddTool(tool("end_turn", "Confirm an auto-ended turn or pass with no legal move"), s.handleEndTurn)
	s.mcpServer.AddTool(tool("undo_move", "Undo the last move of the current turn"), s.handleUndo)
}

// seatArgs pulls the address and game id every gameplay tool requires.
func seatArgs(request mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	address, err := request.RequireString("address")
	if err != nil {
		return "", "", toolError("invalid_request", err.Error())
	}
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return "", "", toolError("invalid_request", err.Error())
	}
	return normalizeAddress(address), gameID, nil
}

func (s *Server) handleRoll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, gameID, errResp := seatArgs(request)
	if errResp != nil {
		return errResp, nil
	}
	res, err := s.coord.Roll(ctx, gameID, address)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"dice":               res.Dice,
		"game_state":         res.State,
		"legal_moves":        res.LegalMoves,
		"needs_confirmation": res.NeedsConfirmation,
		"commit_hash":        res.CommitHash,
		"server_seed":        res.ServerSeed,
	}), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, gameID, errResp := seatArgs(request)
	if errResp != nil {
		return errResp, nil
	}
	from, err := request.RequireInt("from")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	to, err := request.RequireInt("to")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	res, err := s.coord.Move(ctx, gameID, address, from, to)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"move":            res.Move,
		"player":          res.Player,
		"game_state":      res.State,
		"legal_moves":     res.LegalMoves,
		"turn_auto_ended": res.TurnAutoEnded,
		"game_over":       res.GameOver,
	}), nil
}

func (s *Server) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, gameID, errResp := seatArgs(request)
	if errResp != nil {
		return errResp, nil
	}
	state, err := s.coord.EndTurn(ctx, gameID, address)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"game_state": state}), nil
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, gameID, errResp := seatArgs(request)
	if errResp != nil {
		return errResp, nil
	}
	res, err := s.coord.Undo(ctx, gameID, address)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"game_state": res.State, "legal_moves": res.LegalMoves}), nil
}
