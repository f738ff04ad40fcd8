// Package runner schedules record resolutions in rate-limited batches.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plinora/linkcheck/internal/checker"
	"github.com/plinora/linkcheck/internal/clock"
	"github.com/plinora/linkcheck/internal/clock/system"
	"github.com/plinora/linkcheck/internal/dataset"
	"github.com/plinora/linkcheck/internal/metrics"
	"github.com/plinora/linkcheck/internal/progress"
	"github.com/plinora/linkcheck/internal/report"
)

// ErrNoRecords indicates the engine was started with an empty record
// set; no probe is issued in that case.
var ErrNoRecords = errors.New("no records to check")

// Config controls batching and concurrency for a run.
type Config struct {
	BaseURL     string
	Concurrency int
	BatchSize   int
	BatchPause  time.Duration
}

// Resolver yields a terminal verdict for one URL.
type Resolver interface {
	Resolve(ctx context.Context, url string) checker.ProbeResult
}

// Gate grants request-start turns.
type Gate interface {
	Wait(ctx context.Context) error
}

// Engine drives every record through the gate and resolver under
// bounded concurrency, one batch at a time.
type Engine struct {
	cfg      Config
	resolver Resolver
	gate     Gate
	emitter  progress.Emitter
	clock    clock.Clock
	logger   *zap.Logger
	runID    [16]byte
}

// New constructs an Engine. A nil emitter, clock, or logger falls back
// to a no-op or system default.
func New(
	cfg Config,
	resolver Resolver,
	gate Gate,
	emitter progress.Emitter,
	clk clock.Clock,
	logger *zap.Logger,
) *Engine {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	if clk == nil {
		clk = system.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg,
		resolver: resolver,
		gate:     gate,
		emitter:  emitter,
		clock:    clk,
		logger:   logger,
		runID:    progress.UUIDToBytes(uuid.New()),
	}
}

// Run resolves every record and returns the aggregated summary.
// Batches run strictly in order: batch N+1 never starts before batch N
// has fully resolved. Records inside a batch are submitted in input
// order but complete in any order. Per-record failures never abort
// sibling work; only context cancellation aborts the run.
func (e *Engine) Run(ctx context.Context, records []dataset.Record) (report.RunSummary, error) {
	if len(records) == 0 {
		return report.RunSummary{}, ErrNoRecords
	}

	start := e.clock.Now()
	agg := report.NewAggregator(len(records))
	e.emit(progress.Event{
		Stage: progress.StageRunStart,
		TS:    start,
		Total: len(records),
	})
	e.logger.Info("run started",
		zap.Int("records", len(records)),
		zap.Int("concurrency", e.cfg.Concurrency),
		zap.Int("batch_size", e.cfg.BatchSize),
	)

	slots := make(chan struct{}, e.cfg.Concurrency)
	for offset := 0; offset < len(records); offset += e.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return report.RunSummary{}, fmt.Errorf("run aborted: %w", err)
		}
		end := min(offset+e.cfg.BatchSize, len(records))
		e.runBatch(ctx, records[offset:end], slots, agg)
		if end < len(records) {
			e.pause(ctx, e.cfg.BatchPause)
		}
	}

	summary := agg.Summary()
	summary.Elapsed = e.clock.Now().Sub(start)
	e.emit(progress.Event{
		Stage:     progress.StageRunDone,
		TS:        e.clock.Now(),
		Completed: summary.Completed,
		Total:     summary.Total,
		Dur:       summary.Elapsed,
	})
	return summary, nil
}

// runBatch submits every record of the batch and waits for all of them
// to resolve. The slot is acquired before spawning so admission keeps
// input order; releasing it on completion always frees the next queued
// submission.
func (e *Engine) runBatch(
	ctx context.Context,
	batch []dataset.Record,
	slots chan struct{},
	agg *report.Aggregator,
) {
	var wg sync.WaitGroup
	for _, rec := range batch {
		slots <- struct{}{}
		wg.Add(1)
		go func(rec dataset.Record) {
			defer wg.Done()
			defer func() { <-slots }()
			e.checkRecord(ctx, rec, agg)
		}(rec)
	}
	wg.Wait()
}

func (e *Engine) checkRecord(ctx context.Context, rec dataset.Record, agg *report.Aggregator) {
	target := checker.BuildURL(e.cfg.BaseURL, rec.Name)

	var res checker.ProbeResult
	if err := e.gate.Wait(ctx); err != nil {
		res = checker.ProbeResult{URL: target, Reason: err.Error()}
	} else {
		metrics.IncInFlight()
		res = e.resolver.Resolve(ctx, target)
		metrics.DecInFlight()
	}
	res.ID = rec.ID
	res.Name = rec.Name

	completed := agg.Add(res)
	e.emit(progress.Event{
		Stage:       progress.StageCheckDone,
		TS:          e.clock.Now(),
		RecordID:    rec.ID,
		Name:        rec.Name,
		URL:         res.URL,
		StatusClass: progress.ClassifyStatus(res.StatusCode),
		Valid:       res.Valid,
		Reason:      res.Reason,
		Completed:   completed,
		Total:       agg.Total(),
	})
}

// pause waits between batches without blocking cancellation.
func (e *Engine) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (e *Engine) emit(evt progress.Event) {
	evt.RunID = e.runID
	e.emitter.Emit(evt)
}

type noopEmitter struct{}

func (noopEmitter) Emit(progress.Event) {}
