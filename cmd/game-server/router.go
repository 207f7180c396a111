package main

import (
	"backgammon-arena/internal/config"
	"backgammon-arena/internal/mcpserver"
	"backgammon-arena/internal/session"
	httptransport "backgammon-arena/internal/transport/http"
	"backgammon-arena/internal/ws"

	"github.com/go-chi/chi/v5"
)

func newRouter(cfg config.ServerConfig, coord *session.Coordinator, archive httptransport.MatchArchive, pingers map[string]httptransport.Pinger) *chi.Mux {
	return httptransport.NewRouter(httptransport.Deps{
		Coordinator: coord,
		WS:          ws.NewServer(coord).HandleWS,
		MCP:         mcpserver.New(coord, archive).Handler(),
		Archive:     archive,
		Pingers:     pingers,
		AdminAPIKey: cfg.AdminAPIKey,
	})
}

func logRoutes(r chi.Router) {
	httptransport.LogRoutes(r)
}
