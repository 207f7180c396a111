package store

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Archive rows, ws connections and SSE streams are keyed by ULIDs, so ids
// sort by the instant they were minted.

// NewID returns a ULID for the current instant.
func NewID() string {
	return ulid.Make().String()
}

// NewIDAt returns a ULID stamped with at. Archived matches use their finish
// time so id order follows finished_at.
func NewIDAt(at time.Time) string {
	if at.IsZero() {
		return NewID()
	}
	return ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}
