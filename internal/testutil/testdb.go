package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backgammon-arena/internal/config"
	"backgammon-arena/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OpenTestStore opens TEST_POSTGRES_DSN inside a throwaway schema with the
// match tables migrated. It skips the test when the DSN is unset. The returned
// func drops the schema.
func OpenTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	ctx := context.Background()
	schema := pgx.Identifier{fmt.Sprintf("test_%d", time.Now().UnixNano())}.Sanitize()

	admin, err := pgx.Connect(ctx, cfg.TestPostgresDSN)
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		_ = admin.Close(ctx)
		t.Fatalf("create schema: %v", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.TestPostgresDSN)
	if err != nil {
		_ = admin.Close(ctx)
		t.Fatalf("parse test dsn: %v", err)
	}
	poolCfg.ConnConfig.RuntimeParams["search_path"] = schema
	poolCfg.MaxConns = 4

	dropSchema := func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		_ = admin.Close(context.Background())
	}
	st, err := store.OpenConfig(ctx, poolCfg)
	if err != nil {
		dropSchema()
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		dropSchema()
		t.Fatalf("migrate: %v", err)
	}
	return st, func() {
		st.Close()
		dropSchema()
	}
}
