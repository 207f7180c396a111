package store

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestNewIDIsUniqueAndOrdered(t *testing.T) {
	prev := ""
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		if id <= prev {
			t.Fatalf("id %s not after %s", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestNewIDAtCarriesTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := ulid.Parse(NewIDAt(at))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := ulid.Time(id.Time()); !got.Equal(at) {
		t.Fatalf("timestamp = %v, want %v", got, at)
	}
	if NewIDAt(at.Add(-time.Hour)) >= NewIDAt(at) {
		t.Fatal("earlier finish sorted after later one")
	}
	if NewIDAt(time.Time{}) == "" {
		t.Fatal("zero time gave empty id")
	}
}
