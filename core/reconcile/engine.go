package reconcile

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Engine drives the two-pass reconciliation over a set of inputs.
type Engine struct {
	processor    Processor
	workers      int
	phaseTimeout time.Duration
	logger       *zap.Logger
	onPhase      func(PhaseReport)
}

// NewEngine creates an engine that hands every input to processor.
func NewEngine(processor Processor, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		processor:    processor,
		workers:      cfg.WorkerCount(),
		phaseTimeout: cfg.PhaseTimeout,
		logger:       logger,
	}
}

// OnPhase registers a callback invoked after each pass completes.
func (e *Engine) OnPhase(fn func(PhaseReport)) {
	e.onPhase = fn
}

// ProcessFiles reconciles inputs and returns the aggregated run.
//
// The email pass runs over every input to completion before the name-only pass
// starts, so name-only sheets see every binding the email-bearing sheets produce.
// File failures are recorded in the run and never abort it. The returned error is
// the caller's context error, if any; the run is populated either way.
func (e *Engine) ProcessFiles(ctx context.Context, inputs []Input) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	state := NewState()

	e.logger.Info("Starting reconciliation",
		zap.String("run_id", run.ID),
		zap.Int("files", len(inputs)),
		zap.Int("workers", e.workers),
	)

	for _, pass := range []Pass{PassEmailRequired, PassNameOnly} {
		report := e.runPhase(ctx, pass, inputs, state)
		run.Phases = append(run.Phases, report)

		e.logger.Info("Pass completed",
			zap.String("run_id", run.ID),
			zap.String("pass", pass.String()),
			zap.Duration("duration", report.Duration),
			zap.Bool("timed_out", report.TimedOut),
			zap.Int("identities", state.Identities.Len()),
			zap.Int("bindings", state.Names.Len()),
		)
		if e.onPhase != nil {
			e.onPhase(report)
		}
	}

	run.Records = state.Identities.Snapshot()
	run.Bindings = state.Names.Len()
	run.Duration = time.Since(run.StartedAt)

	return run, ctx.Err()
}

// runPhase processes every input for one pass on a bounded pool and waits for all
// of them. Submission never blocks: each task waits for a worker slot on the phase
// context, so the phase timeout starts as soon as every task is queued. When it
// fires the phase context is cancelled, queued tasks are recorded as not started
// and running workers give up at their next checkpoint.
func (e *Engine) runPhase(ctx context.Context, pass Pass, inputs []Input, state *State) PhaseReport {
	start := time.Now()
	phaseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]FileResult, len(inputs))
	slots := semaphore.NewWeighted(int64(e.workers))

	var g errgroup.Group
	for i, input := range inputs {
		g.Go(func() error {
			if err := slots.Acquire(phaseCtx, 1); err != nil {
				results[i] = notStarted(input, pass, err)
				return nil
			}
			defer slots.Release(1)
			results[i] = e.processOne(phaseCtx, input, pass, state)
			return nil
		})
	}

	var timer *time.Timer
	if e.phaseTimeout > 0 {
		timer = time.AfterFunc(e.phaseTimeout, cancel)
	}
	_ = g.Wait()

	timedOut := timer != nil && !timer.Stop()
	if timedOut {
		e.logger.Warn("Pass timed out, continuing with completed work",
			zap.String("pass", pass.String()),
			zap.Duration("timeout", e.phaseTimeout),
		)
	}

	return PhaseReport{
		Pass:     pass,
		Results:  results,
		TimedOut: timedOut,
		Duration: time.Since(start),
	}
}

func notStarted(input Input, pass Pass, err error) FileResult {
	return FileResult{
		File:  input.Name(),
		Pass:  pass,
		Error: errors.Wrap(err, "not started").Error(),
	}
}

func (e *Engine) processOne(ctx context.Context, input Input, pass Pass, state *State) (res FileResult) {
	res = FileResult{File: input.Name(), Pass: pass}

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Error = errors.Newf("panic while processing: %v", r).Error()
			e.logger.Error("File processing panicked",
				zap.String("file", res.File),
				zap.String("pass", pass.String()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		return notStarted(input, pass, err)
	}

	stats, err := e.processor.ProcessFile(ctx, input, pass, state)
	res.FileStats = stats
	if err != nil {
		res.Error = err.Error()
		e.logger.Warn("File processing failed",
			zap.String("file", res.File),
			zap.String("pass", pass.String()),
			zap.Error(err),
		)
		return res
	}

	res.Success = true
	e.logger.Debug("File processed",
		zap.String("file", res.File),
		zap.String("pass", pass.String()),
		zap.Int("rows", stats.RowsProcessed),
		zap.Int("sheets", stats.SheetsProcessed),
	)
	return res
}
