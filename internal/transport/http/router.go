package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"backgammon-arena/internal/session"
	"backgammon-arena/internal/spectatorgateway"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Deps struct {
	Coordinator *session.Coordinator
	WS          http.HandlerFunc
	MCP         http.Handler
	Archive     MatchArchive
	Pingers     map[string]Pinger
	AdminAPIKey string
}

func NewRouter(d Deps) *chi.Mux {
	games := NewGameHandlers(d.Coordinator, d.Archive)
	admin := NewAdminHandlers(d.Coordinator, d.Pingers)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", admin.Health())
	r.Handle("/metrics", promhttp.Handler())
	if d.WS != nil {
		r.Get("/ws", d.WS)
	}
	if d.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", d.MCP)
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", d.MCP)
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", d.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/games/{game_id}", games.Game())
		r.Get("/games/{game_id}/dice", games.Dice())
		r.Get("/games/{game_id}/events", spectatorgateway.EventsHandler(d.Coordinator))
		r.Get("/games/{game_id}/history", games.History())
		r.Get("/players/{address}/matches", games.PlayerMatches())

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.AdminAPIKey))
			r.Use(BodyCaptureMiddleware(4096))
			r.Post("/games/{game_id}/escrow/active", admin.EscrowActive())
			r.Delete("/games/{game_id}", admin.RemoveGame())
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
