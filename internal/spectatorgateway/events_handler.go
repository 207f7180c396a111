// Package spectatorgateway streams a live game to read-only viewers over
// server-sent events.
package spectatorgateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"backgammon-arena/internal/session"
	"backgammon-arena/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var pingInterval = 15 * time.Second

const streamBuffer = 64

// stream is a session.Conn that queues events for one SSE response.
type stream struct {
	id string

	mu     sync.Mutex
	closed bool
	ch     chan session.Event
}

func newStream() *stream {
	return &stream{id: "sse_" + store.NewID(), ch: make(chan session.Event, streamBuffer)}
}

func (s *stream) ID() string { return s.id }

func (s *stream) Send(ev session.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStreamClosed
	}
	select {
	case s.ch <- ev:
		return nil
	default:
		metricSpectatorDropped.Inc()
		return errStreamFull
	}
}

func (s *stream) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

var (
	errStreamClosed = errors.New("stream_closed")
	errStreamFull   = errors.New("stream_buffer_full")
)

func EventsHandler(coord *session.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "game_id")
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		st := newStream()
		if err := coord.Spectate(r.Context(), gameID, st); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, session.ErrGameNotFound) {
				status = http.StatusNotFound
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": session.Code(err)})
			return
		}
		metricSpectatorConnectionsTotal.Inc()
		metricSpectatorConnectionsActive.Inc()
		defer func() {
			st.close()
			_ = coord.Unspectate(context.Background(), gameID, st.ID())
			metricSpectatorConnectionsActive.Dec()
		}()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		seq := 0
		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-st.ch:
				seq++
				if err := writeSSE(w, strconv.Itoa(seq), ev.Type, ev); err != nil {
					log.Debug().Err(err).Str("game_id", gameID).Msg("spectator stream write failed")
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if err := writeSSE(w, "", "ping", map[string]any{"ts": time.Now().UnixMilli()}); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, id, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
