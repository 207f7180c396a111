package mcpserver

import (
	"errors"
	"fmt"

	"backgammon-arena/internal/session"
	"backgammon-arena/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

// mapDomainError reports session sentinels by their code; anything else is
// internal and its text is not leaked.
func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, store.ErrNotFound):
		return toolError("not_found", err.Error())
	}
	code := session.Code(err)
	if code == "internal_error" {
		return toolError(code, "internal error")
	}
	return toolError(code, err.Error())
}
