// Package mcpserver exposes live games and the match archive as MCP tools so
// agents can follow and play matches without holding a WebSocket open.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"backgammon-arena/internal/session"
	"backgammon-arena/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Archive is the finished-match read side. Nil disables the archive tools'
// history lookups.
type Archive interface {
	GetMatchByGame(ctx context.Context, gameID string) (*store.MatchResult, error)
	ListMatchesByPlayer(ctx context.Context, address string, limit, offset int) ([]store.MatchResult, error)
}

type Server struct {
	coord   *session.Coordinator
	archive Archive

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(coord *session.Coordinator, archive Archive) *Server {
	mcpSrv := server.NewMCPServer(
		"backgammon-arena",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		coord:      coord,
		archive:    archive,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPublicTools()
	s.registerMatchmakingTools()
	s.registerGameplayTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"game://{game_id}/state",
			"game_state",
			mcp.WithTemplateDescription("Live game view by game id"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.jsonResource("game://", "/state", func(ctx context.Context, id string) (any, error) {
			return s.coord.View(ctx, id)
		}),
	)
	if s.archive == nil {
		return
	}
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"match://{game_id}",
			"match_result",
			mcp.WithTemplateDescription("Archived result of a finished game"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.jsonResource("match://", "", func(ctx context.Context, id string) (any, error) {
			return s.archive.GetMatchByGame(ctx, id)
		}),
	)
}

// jsonResource serves the value load returns for the id between prefix and
// suffix in the requested URI.
func (s *Server) jsonResource(prefix, suffix string, load func(context.Context, string) (any, error)) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := req.Params.URI
		id, ok := idFromURI(uri, prefix, suffix)
		if !ok {
			return nil, fmt.Errorf("unsupported resource uri %q", uri)
		}
		v, err := load(ctx, id)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(payload)},
		}, nil
	}
}

func idFromURI(uri, prefix, suffix string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, suffix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
