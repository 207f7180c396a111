package testutil

import (
	"context"
	"testing"
	"time"

	"backgammon-arena/internal/config"
	"backgammon-arena/internal/store"

	"github.com/redis/go-redis/v9"
)

// OpenTestSnapshots connects to TEST_REDIS_URL and skips the test when it is
// unset or unreachable. Keys the test saves are not removed automatically.
func OpenTestSnapshots(t *testing.T, ttl time.Duration) *store.SnapshotStore {
	t.Helper()
	cfg, err := config.LoadTestRedis()
	if err != nil {
		t.Skipf("skip test redis: %v", err)
	}
	opts, err := redis.ParseURL(cfg.TestRedisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	st := store.NewSnapshotStoreWithClient(redis.NewClient(opts), ttl)
	if err := st.Ping(context.Background()); err != nil {
		_ = st.Close()
		t.Skipf("skip test redis: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}
