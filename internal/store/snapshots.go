package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "bg:game:"

// SnapshotStore keeps the latest serialized snapshot of each live game in
// Redis for crash recovery. Entries expire after ttl.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotStore(redisURL string, ttl time.Duration) (*SnapshotStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = 1
	return NewSnapshotStoreWithClient(redis.NewClient(opts), ttl), nil
}

func NewSnapshotStoreWithClient(rdb *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SnapshotStore{rdb: rdb, ttl: ttl}
}

func (s *SnapshotStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.rdb.Ping(ctx).Err()
}

func (s *SnapshotStore) Close() error {
	return s.rdb.Close()
}

// Save overwrites the snapshot for gameID and refreshes its TTL.
func (s *SnapshotStore) Save(ctx context.Context, gameID string, data []byte) error {
	if err := s.rdb.Set(ctx, snapshotKeyPrefix+gameID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", gameID, err)
	}
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, gameID string) error {
	if err := s.rdb.Del(ctx, snapshotKeyPrefix+gameID).Err(); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	return nil
}

// ListActive returns every stored snapshot keyed by game id. Entries that
// expire during the scan are left out.
func (s *SnapshotStore) ListActive(ctx context.Context) (map[string][]byte, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, snapshotKeyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		out[strings.TrimPrefix(keys[i], snapshotKeyPrefix)] = []byte(raw)
	}
	return out, nil
}
