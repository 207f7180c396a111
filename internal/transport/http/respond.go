package httptransport

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, map[string]any{"ok": false, "error": code})
}

// AdminAuthMiddleware accepts the key as X-Admin-Key or a bearer token. An
// empty key leaves the admin routes open.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" && !CheckAdminAuth(r, adminKey) {
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CheckAdminAuth(r *http.Request, adminKey string) bool {
	presented := r.Header.Get("X-Admin-Key")
	if presented == "" {
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			presented = token
		}
	}
	return presented != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) == 1
}

// ParsePagination reads limit and offset, clamping limit to [1, 100].
// Unparseable values fall back to the defaults.
func ParsePagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit = queryInt(q.Get("limit"), defaultPageSize)
	offset = queryInt(q.Get("offset"), 0)
	limit = min(max(limit, 1), maxPageSize)
	offset = max(offset, 0)
	return limit, offset
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
