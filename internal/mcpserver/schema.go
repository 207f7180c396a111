package mcpserver

import "strings"

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func clampPagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func normalizeAddress(v string) string {
	return strings.TrimSpace(v)
}
