// Package worker implements the buffered worker pool used to build training
// samples from the historical corpus. Each match is an independent job:
// - a failing or panicking match is skipped and counted, never fatal
// - built samples are kept in memory for fitting
// - batches are optionally written to ClickHouse for audit

package worker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/fixturecast/predictor-api/internal/models"
)

// Prometheus metrics
var (
	matchesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predictor_matches_enqueued_total",
		Help: "Total number of corpus matches queued for sample construction",
	})

	samplesBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predictor_samples_built_total",
		Help: "Total number of training samples built",
	})

	matchesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predictor_matches_skipped_total",
		Help: "Total number of matches skipped because sample construction failed",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "predictor_sample_queue_depth",
		Help: "Current depth of the sample worker queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "predictor_sample_batch_insert_duration_seconds",
		Help:    "Duration of training sample batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	sinkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predictor_sample_sink_failures_total",
		Help: "Training samples that could not be written to ClickHouse",
	})
)

// Builder produces the two symmetric samples for one finished match.
type Builder interface {
	BuildForMatch(ctx context.Context, match models.MatchRecord) ([2]models.MatchSample, error)
}

// Job represents a unit of work for the worker pool
type Job struct {
	Match     models.MatchRecord
	Timestamp time.Time
}

// Report summarizes a run. Matches = Succeeded + Skipped once the pool stops.
type Report struct {
	RunID     string `json:"run_id"`
	Matches   int    `json:"matches"`
	Succeeded int    `json:"succeeded"`
	Skipped   int    `json:"skipped"`
	Samples   int    `json:"samples"`
}

// PoolConfig configures the worker pool. ClickHouse is optional.
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Builder       Builder
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool manages a pool of workers building training samples
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	runID    string

	mu      sync.Mutex
	samples []models.MatchSample
	report  Report
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	runID := uuid.NewString()
	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
		runID:    runID,
		report:   Report{RunID: runID},
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Start queue depth reporter
	go p.reportQueueDepth()

	p.logger.Infow("Sample pool started",
		"run_id", p.runID,
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
		"sink", p.config.ClickHouse != nil,
	)
}

// Stop closes the queue, waits for every queued match to finish and returns
// the final report.
func (p *Pool) Stop() Report {
	p.logger.Info("Stopping sample pool...")

	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()

	report := p.Report()
	p.logger.Infow("Sample pool stopped",
		"run_id", report.RunID,
		"matches", report.Matches,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"samples", report.Samples,
	)
	return report
}

// Enqueue adds a match to the queue. It blocks while the queue is full and
// returns false once the pool context is done.
func (p *Pool) Enqueue(match models.MatchRecord) bool {
	job := Job{
		Match:     match,
		Timestamp: time.Now(),
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue match (pool stopped)", "match_id", match.ID, "error", r)
		}
	}()

	select {
	case <-p.ctx.Done():
		p.logger.Warnw("Sample pool context canceled, dropping match", "match_id", match.ID)
		return false
	default:
	}

	select {
	case p.jobQueue <- job:
		matchesEnqueued.Inc()
		p.mu.Lock()
		p.report.Matches++
		p.mu.Unlock()
		return true
	case <-p.ctx.Done():
		p.logger.Warnw("Sample pool context canceled, dropping match", "match_id", match.ID)
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// Report returns the counters so far.
func (p *Pool) Report() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report
}

// Samples returns built samples ordered by match id, home attacker first, so
// downstream splits are reproducible.
func (p *Pool) Samples() []models.MatchSample {
	p.mu.Lock()
	out := slices.Clone(p.samples)
	p.mu.Unlock()

	slices.SortFunc(out, func(a, b models.MatchSample) int {
		switch {
		case a.MatchID != b.MatchID:
			if a.MatchID < b.MatchID {
				return -1
			}
			return 1
		case a.AtVenue == b.AtVenue:
			return 0
		case a.AtVenue:
			return -1
		default:
			return 1
		}
	})
	return out
}

// worker builds samples for queued matches and flushes them to the sink in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debugw("Worker started", "worker", id)

	batch := make([]models.MatchSample, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 || p.config.ClickHouse == nil {
			batch = batch[:0]
			return
		}

		start := time.Now()
		if err := p.sinkBatch(batch); err != nil {
			p.logger.Errorw("Sample batch insert failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			sinkFailures.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Sample batch written", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				// Channel closed, flush remaining
				flush()
				return
			}

			pair, err := p.build(job.Match)
			if err != nil {
				p.logger.Warnw("Skipping match", "worker", id, "match_id", job.Match.ID, "error", err)
				matchesSkipped.Inc()
				p.mu.Lock()
				p.report.Skipped++
				p.mu.Unlock()
				continue
			}

			samplesBuilt.Add(2)
			p.mu.Lock()
			p.samples = append(p.samples, pair[0], pair[1])
			p.report.Succeeded++
			p.report.Samples += 2
			p.mu.Unlock()

			batch = append(batch, pair[0], pair[1])
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// build runs the builder behind a recover so one bad match cannot take down a worker.
func (p *Pool) build(match models.MatchRecord) (pair [2]models.MatchSample, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sample builder panic: %v", r)
		}
	}()
	return p.config.Builder.BuildForMatch(p.ctx, match)
}

// sinkBatch writes samples to training_samples
func (p *Pool) sinkBatch(batch []models.MatchSample) error {
	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO training_samples (
			run_id, match_id, attacker_id, defender_id, at_venue, features, goals, built_at
		)
	`)
	if err != nil {
		return err
	}

	builtAt := time.Now().UTC()
	for _, s := range batch {
		err := chBatch.Append(
			p.runID,
			s.MatchID,
			s.AttackerID,
			s.DefenderID,
			s.AtVenue,
			s.Features.Values(),
			s.Goals,
			builtAt,
		)
		if err != nil {
			p.logger.Warnw("Failed to append sample to batch", "error", err, "match_id", s.MatchID)
			continue
		}
	}

	if err := chBatch.Send(); err != nil {
		_ = chBatch.Abort()
		return err
	}
	return nil
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
