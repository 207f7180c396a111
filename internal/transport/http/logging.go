package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"backgammon-arena/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// APILogMiddleware writes one JSON line per request into the same sink as the
// zerolog logger, tagged with the chi route pattern and game id when present.
func APILogMiddleware() func(http.Handler) http.Handler {
	logger := slog.New(slog.NewJSONHandler(logging.Writer(), nil))
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:              slog.LevelInfo,
		Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
		LogRequestBody:     func(*http.Request) bool { return false },
		LogResponseBody:    func(*http.Request) bool { return false },
		LogRequestHeaders:  []string{},
		LogResponseHeaders: []string{},
		LogExtraAttrs:      requestAttrs,
	})
}

func requestAttrs(req *http.Request, _ string, _ int) []slog.Attr {
	route := req.URL.Path
	attrs := []slog.Attr{
		slog.String("request_id", chimw.GetReqID(req.Context())),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	}
	if rc := chi.RouteContext(req.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			route = p
		}
		if id := rc.URLParam("game_id"); id != "" {
			attrs = append(attrs, slog.String("game_id", id))
		}
	}
	return append(attrs, slog.String("route", route))
}

// BodyCaptureMiddleware adds request and response bodies, each cut at limit
// bytes, to the request log line. Streams and upgrades pass through untouched.
func BodyCaptureMiddleware(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isStreamRequest(r) {
				next.ServeHTTP(w, r)
				return
			}
			reqBody := &cappedBuffer{limit: limit}
			r.Body = struct {
				io.Reader
				io.Closer
			}{io.TeeReader(r.Body, reqBody), r.Body}
			respBody := &cappedBuffer{limit: limit}
			next.ServeHTTP(&teeResponseWriter{ResponseWriter: w, tee: respBody}, r)

			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", reqBody.logValue()),
				slog.Bool("request_body_truncated", reqBody.cut),
				slog.Any("response_body", respBody.logValue()),
				slog.Bool("response_body_truncated", respBody.cut),
			)
		})
	}
}

type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
	cut   bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if room < len(p) {
		b.cut = true
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

// logValue decodes JSON bodies so they nest in the log line.
func (b *cappedBuffer) logValue() any {
	raw := b.buf.Bytes()
	if len(raw) == 0 {
		return ""
	}
	var v any
	if !b.cut && json.Unmarshal(raw, &v) == nil {
		return v
	}
	return string(raw)
}

type teeResponseWriter struct {
	http.ResponseWriter
	tee io.Writer
}

func (w *teeResponseWriter) Write(p []byte) (int, error) {
	_, _ = w.tee.Write(p)
	return w.ResponseWriter.Write(p)
}

func isStreamRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") ||
		strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
