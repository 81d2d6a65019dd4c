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

	"github.com/fixturecast/predictor-api/internal/bootstrap"
	"github.com/fixturecast/predictor-api/internal/config"
	"github.com/fixturecast/predictor-api/internal/handlers"
	"github.com/fixturecast/predictor-api/internal/logic"
	"github.com/fixturecast/predictor-api/internal/oracle"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "predictor:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := bootstrap.OpenPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer pg.Close()

	ch, err := bootstrap.OpenClickHouse(ctx, cfg.ClickHouseURL)
	if err != nil {
		return err
	}
	if ch != nil {
		defer ch.Close()
	} else {
		sugar.Warn("ClickHouse not configured, tactical features use scoreline derivations")
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	model := oracle.NewHandle(sugar)
	if _, err := model.Reload(cfg.ArtifactPath); err != nil {
		sugar.Errorw("Model artifact not loaded, serving rating fallback only",
			"path", cfg.ArtifactPath, "error", err)
	}

	stats := logic.NewPostgresStatsSource(pg)
	var profiles logic.ProfileSource = logic.NewAnalyticsProfileSource(ch, pg)
	deriver := logic.NewFeatureDeriver(stats, profiles, sugar, cfg.StatReadTimeout)
	resolver := logic.NewOutcomeResolver(sugar)

	svcCfg := logic.ServiceConfig{
		Gate:       logic.NewSufficiencyGate(stats, cfg.MinHistoryMatches, sugar),
		Learned:    logic.NewLearnedPredictor(deriver, model, resolver),
		Rating:     logic.NewRatingPredictor(cfg.RatingOverrides, logic.RatingModelVersion),
		NoArtifact: logic.NewRatingPredictor(cfg.RatingOverrides, logic.NoArtifactModelVersion),
		Model:      model,
		Logger:     sugar,
	}
	if rdb != nil {
		svcCfg.Cache = logic.NewRedisPredictionCache(rdb, cfg.CacheTTL, sugar)
	}

	readyChecks := map[string]handlers.ReadyCheck{
		"postgres": pg.Ping,
	}
	if ch != nil {
		readyChecks["clickhouse"] = ch.Ping
	}
	if rdb != nil {
		readyChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	h := handlers.New(handlers.Config{
		Logger:         logger,
		Prediction:     logic.NewPredictionService(svcCfg),
		History:        logic.NewHistoryRepository(pg),
		Model:          model,
		ArtifactPath:   cfg.ArtifactPath,
		AdminTokenHash: cfg.AdminTokenHash,
		RequestTimeout: cfg.RequestTimeout,
		ReadyChecks:    readyChecks,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Router(cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Starting HTTP server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sugar.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Graceful shutdown failed", "error", err)
		return err
	}
	return nil
}

