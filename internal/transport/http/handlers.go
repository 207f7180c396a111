package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"backgammon-arena/internal/dice"
	"backgammon-arena/internal/session"
	"backgammon-arena/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MatchArchive is the read side of the finished-match store.
type MatchArchive interface {
	GetMatchByGame(ctx context.Context, gameID string) (*store.MatchResult, error)
	ListMatchesByPlayer(ctx context.Context, address string, limit, offset int) ([]store.MatchResult, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type GameHandlers struct {
	coord   *session.Coordinator
	archive MatchArchive
}

func NewGameHandlers(coord *session.Coordinator, archive MatchArchive) *GameHandlers {
	return &GameHandlers{coord: coord, archive: archive}
}

func (h *GameHandlers) Game() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.coord.View(r.Context(), chi.URLParam(r, "game_id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, v)
	}
}

type auditRecord struct {
	dice.Record
	Verified bool `json:"verified"`
}

// Dice serves the dice audit trail: from memory for a live game, from the
// archive once the game is gone.
func (h *GameHandlers) Dice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "game_id")
		records, err := h.coord.DiceHistory(r.Context(), gameID)
		source := "live"
		if errors.Is(err, session.ErrGameNotFound) && h.archive != nil {
			records, err = h.archivedDice(r.Context(), gameID)
			source = "archive"
		}
		if err != nil {
			writeSessionError(w, err)
			return
		}
		out := make([]auditRecord, 0, len(records))
		for _, rec := range records {
			out = append(out, auditRecord{Record: rec, Verified: dice.Verify(rec)})
		}
		WriteJSON(w, http.StatusOK, map[string]any{"game_id": gameID, "source": source, "records": out})
	}
}

func (h *GameHandlers) archivedDice(ctx context.Context, gameID string) ([]dice.Record, error) {
	m, err := h.archive.GetMatchByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var records []dice.Record
	if err := m.DecodeDice(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (h *GameHandlers) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.archive == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "archive_disabled")
			return
		}
		m, err := h.archive.GetMatchByGame(r.Context(), chi.URLParam(r, "game_id"))
		if err != nil {
			metricArchiveQueries.WithLabelValues("history", outcomeOf(err)).Inc()
			writeSessionError(w, err)
			return
		}
		metricArchiveQueries.WithLabelValues("history", "ok").Inc()
		WriteJSON(w, http.StatusOK, m)
	}
}

func (h *GameHandlers) PlayerMatches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := strings.TrimSpace(chi.URLParam(r, "address"))
		current, _ := h.coord.LookupByPlayer(address)
		if h.archive == nil {
			WriteJSON(w, http.StatusOK, map[string]any{"address": address, "current_game": current, "items": []store.MatchResult{}})
			return
		}
		limit, offset := ParsePagination(r)
		items, err := h.archive.ListMatchesByPlayer(r.Context(), address, limit, offset)
		if err != nil {
			metricArchiveQueries.WithLabelValues("player_matches", "error").Inc()
			log.Error().Err(err).Str("player", address).Msg("list matches failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		metricArchiveQueries.WithLabelValues("player_matches", "ok").Inc()
		WriteJSON(w, http.StatusOK, map[string]any{
			"address":      address,
			"current_game": current,
			"items":        items,
			"limit":        limit,
			"offset":       offset,
		})
	}
}

type AdminHandlers struct {
	coord   *session.Coordinator
	pingers map[string]Pinger
}

func NewAdminHandlers(coord *session.Coordinator, pingers map[string]Pinger) *AdminHandlers {
	return &AdminHandlers{coord: coord, pingers: pingers}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"ok": true}
		status := http.StatusOK
		for name, p := range h.pingers {
			if err := p.Ping(r.Context()); err != nil {
				body[name] = "down"
				body["ok"] = false
				status = http.StatusServiceUnavailable
				continue
			}
			body[name] = "up"
		}
		WriteJSON(w, status, body)
	}
}

func (h *AdminHandlers) EscrowActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "game_id")
		if err := h.coord.MarkEscrowActive(r.Context(), gameID); err != nil {
			writeSessionError(w, err)
			return
		}
		log.Info().Str("game_id", gameID).Msg("escrow deposits confirmed")
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "game_id": gameID})
	}
}

func (h *AdminHandlers) RemoveGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "game_id")
		if err := h.coord.Remove(r.Context(), gameID); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "game_id": gameID})
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrGameNotFound), errors.Is(err, store.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "game_not_found")
	case errors.Is(err, session.ErrEscrowState):
		WriteHTTPError(w, http.StatusConflict, session.ErrEscrowState.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

func outcomeOf(err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return "not_found"
	}
	return "error"
}
