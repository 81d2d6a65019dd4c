package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixturecast/predictor-api/internal/bootstrap"
	"github.com/fixturecast/predictor-api/internal/config"
	"github.com/fixturecast/predictor-api/internal/logic"
	"github.com/fixturecast/predictor-api/internal/oracle"
	"github.com/fixturecast/predictor-api/internal/worker"
)

func main() {
	out := flag.String("out", "", "artifact output path (defaults to artifact_path)")
	until := flag.String("until", "", "last corpus date, YYYY-MM-DD (defaults to today)")
	version := flag.String("version", "", "artifact version (defaults to a timestamped name)")
	flag.Parse()

	if err := run(*out, *until, *version); err != nil {
		fmt.Fprintln(os.Stderr, "trainer:", err)
		os.Exit(1)
	}
}

func run(out, untilFlag, version string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if out == "" {
		out = cfg.ArtifactPath
	}

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	since, until, err := corpusWindow(cfg.CorpusSince, untilFlag)
	if err != nil {
		return err
	}

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
	}

	stats := logic.NewPostgresStatsSource(pg)
	matches, err := stats.FinishedMatches(ctx, since, until)
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	sugar.Infow("Corpus loaded", "matches", len(matches), "since", since.Format(time.DateOnly), "until", until.Format(time.DateOnly))

	// The builder derives at the match date so no sample sees its own result.
	deriver := logic.NewFeatureDeriver(stats, logic.NewAnalyticsProfileSource(ch, pg), sugar, cfg.StatReadTimeout)
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Builder:       logic.NewSampleBuilder(deriver),
		ClickHouse:    ch,
		Logger:        logger,
	})
	pool.Start(ctx)
	for _, m := range matches {
		if !pool.Enqueue(m) {
			break
		}
	}
	report := pool.Stop()
	sugar.Infow("Samples built",
		"run_id", report.RunID,
		"matches", report.Matches,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"samples", report.Samples,
	)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("training interrupted: %w", err)
	}

	artifact, err := oracle.Train(pool.Samples(), oracle.TrainOptions{
		Lambda:          cfg.RidgeLambda,
		HoldoutFraction: cfg.HoldoutFraction,
		Seed:            oracle.DefaultSeed,
		Version:         version,
	})
	if err != nil {
		return err
	}
	if err := artifact.Save(out); err != nil {
		return err
	}

	fields := []any{"version", artifact.Version, "path", out, "samples", artifact.SampleCount}
	if m := artifact.Metrics; m != nil {
		fields = append(fields, "holdout", m.Samples, "mae", m.MAE, "rmse", m.RMSE, "within_one_goal", m.WithinOneGoal)
	}
	sugar.Infow("Artifact written", fields...)
	return nil
}

func corpusWindow(sinceRaw, untilRaw string) (since, until time.Time, err error) {
	until = time.Now().UTC()
	if untilRaw != "" {
		if until, err = time.Parse(time.DateOnly, untilRaw); err != nil {
			return since, until, fmt.Errorf("parse -until: %w", err)
		}
	}
	if sinceRaw == "" {
		return time.Time{}, until, nil
	}
	if since, err = time.Parse(time.DateOnly, sinceRaw); err != nil {
		return since, until, fmt.Errorf("parse corpus_since: %w", err)
	}
	if !since.Before(until) {
		return since, until, fmt.Errorf("corpus window %s..%s is empty", sinceRaw, until.Format(time.DateOnly))
	}
	return since, until, nil
}
