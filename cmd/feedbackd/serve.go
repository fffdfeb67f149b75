package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/codedsnow/feedback-api/docs"
	"github.com/codedsnow/feedback-api/internal/cache"
	"github.com/codedsnow/feedback-api/internal/config"
	httpapi "github.com/codedsnow/feedback-api/internal/http"
	"github.com/codedsnow/feedback-api/internal/jobs"
	"github.com/codedsnow/feedback-api/internal/observability"
	"github.com/codedsnow/feedback-api/internal/policy"
	"github.com/codedsnow/feedback-api/internal/repo"
	"github.com/codedsnow/feedback-api/internal/sysutil"
)

const (
	shutdownGrace = 15 * time.Second
	cachePingWait = 2 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// runServe wires configuration, storage, cache, policy and the router, then
// serves until SIGINT/SIGTERM and drains in-flight requests.
func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty, nil)
	gin.SetMode(cfg.GinMode)

	shutdownTracing, err := observability.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.OTEL.Enabled {
		if err := observability.InstrumentDB(db); err != nil {
			return err
		}
	}

	table, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return err
	}
	global, scoped := table.Summary()
	log.Info().Int("global_keys", global).Int("scoped_keys", scoped).Str("file", cfg.PolicyFile).Msg("policy loaded")

	store, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	sched, err := jobs.New(db, cfg.IdempotencyPurgeSchedule)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		sched.Stop(sctx)
	}()

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{DB: db, Policies: table, Cache: store}, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Str("db", cfg.DB.Driver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openCache returns the fetchall cache: Redis when REDIS_URL is set, Nop
// otherwise. An unreachable server is logged but not fatal; the cache only
// ever falls through to the database.
func openCache(ctx context.Context, cfg config.Config) (cache.Store, func(), error) {
	if cfg.RedisURL == "" {
		return cache.Nop{}, func() {}, nil
	}
	rc, err := cache.NewRedis(cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, cachePingWait)
	defer cancel()
	if err := rc.Ping(pctx); err != nil {
		log.Warn().Err(err).Str("addr", rc.Client.Options().Addr).Msg("redis unreachable; fetchall reads go to the database until it recovers")
	} else {
		log.Info().Dur("ttl", cfg.CacheTTL).Msg("fetchall cache enabled")
	}
	return rc, func() { _ = rc.Close() }, nil
}
