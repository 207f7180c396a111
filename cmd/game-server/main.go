package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"backgammon-arena/internal/config"
	"backgammon-arena/internal/escrow"
	"backgammon-arena/internal/logging"
	"backgammon-arena/internal/session"
	"backgammon-arena/internal/spectatorpush"
	"backgammon-arena/internal/store"
	httptransport "backgammon-arena/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	appCfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(appCfg.Log)
	cfg := appCfg.Server

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pingers := map[string]httptransport.Pinger{}
	opts := session.Options{Timing: timingFrom(cfg)}

	snaps, err := store.NewSnapshotStore(cfg.RedisURL, cfg.SnapshotTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("snapshot store init failed")
	}
	defer snaps.Close()
	if err := snaps.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("redis_url", cfg.RedisURL).Msg("redis ping failed; snapshots are best effort")
	}
	opts.Snapshots = snaps
	pingers["redis"] = snaps

	var archive httptransport.MatchArchive
	if cfg.PostgresDSN != "" {
		st, err := store.Open(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
		if err != nil {
			log.Fatal().Err(err).Msg("store init failed")
		}
		defer st.Close()
		if err := st.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		if cfg.PostgresMigrate {
			if err := st.Migrate(ctx); err != nil {
				log.Fatal().Err(err).Msg("db migrate failed")
			}
		}
		opts.Results = st
		archive = st
		pingers["db"] = st
	} else {
		log.Info().Msg("POSTGRES_DSN empty; match archive disabled")
	}

	if cfg.EscrowGatewayURL != "" {
		opts.Escrow = escrow.NewGateway(cfg.EscrowGatewayURL, cfg.EscrowAPIKey, cfg.EscrowDenom, cfg.EscrowTimeout)
	} else {
		log.Info().Msg("ESCROW_GATEWAY_URL empty; wagers are not escrowed")
	}

	pushCfg, err := spectatorpush.ConfigFromServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("spectator push config failed")
	}
	if pushCfg.Enabled {
		push := spectatorpush.NewManager(pushCfg)
		push.Start(ctx)
		opts.Observer = push
	}

	coord := session.NewCoordinator(opts)
	defer coord.Close()
	restored, err := coord.Restore(ctx)
	if err != nil {
		log.Error().Err(err).Msg("restore from snapshots failed")
	} else if restored > 0 {
		log.Info().Int("games", restored).Msg("restored games from snapshots")
	}
	coord.StartJanitor(ctx, cfg.JanitorInterval)

	r := newRouter(cfg, coord, archive, pingers)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func timingFrom(cfg config.ServerConfig) session.Timing {
	return session.Timing{
		TurnTimeout:       cfg.TurnTimeLimit,
		DisconnectGrace:   cfg.DisconnectGrace,
		CountdownInterval: cfg.CountdownInterval,
		StallThreshold:    cfg.StallThreshold,
		FinishedRetention: cfg.FinishedRetention,
		IdleTimeout:       cfg.SnapshotTTL,
		EscrowTimeout:     cfg.EscrowTimeout,
	}
}
