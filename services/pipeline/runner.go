package pipeline

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	config "tx-pipeline/config"
	models "tx-pipeline/models"

	// External Packages
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ExecutionClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]models.ExecutionRecord, error)
}

type StepExecutor interface {
	ExecuteStep(ctx context.Context, rec models.ExecutionRecord) error
}

// Runner is the scheduling half of the durable-execution engine: it
// polls for execution records whose resume time has passed, claims
// them under a lease and hands each to the step executor. Records are
// claimed at most once per lease window, so several runner processes
// can share the store.
type Runner struct {
	store    ExecutionClaimer
	executor StepExecutor
	logger   *zap.Logger

	pollInterval  time.Duration
	leaseDuration time.Duration
	workerCount   int
}

func NewRunner(store ExecutionClaimer, executor StepExecutor, logger *zap.Logger, conf config.Pipeline) *Runner {
	return &Runner{
		store:         store,
		executor:      executor,
		logger:        logger,
		pollInterval:  conf.PollInterval,
		leaseDuration: conf.LeaseDuration,
		workerCount:   conf.WorkerCount,
	}
}

// Start runs the scheduling loop until ctx is canceled.
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info("starting pipeline runner",
		zap.Duration("poll_interval", r.pollInterval), zap.Int("worker_count", r.workerCount))

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down pipeline runner")
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil {
				r.logger.Error("failed to process due transactions", zap.Error(err))
			}
		}
	}
}

// Tick claims every due record and executes its current step, bounded
// by the worker count. Step errors are logged, not returned: a broken
// record must not stall the rest of the schedule, and the lease lets
// it be retried once the lease expires.
func (r *Runner) Tick(ctx context.Context) error {
	now := time.Now().UTC()
	records, err := r.store.ClaimDue(ctx, now, r.leaseDuration, r.workerCount)
	if err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(r.workerCount)
	for _, rec := range records {
		rec := rec // per-iteration copy: required under the go 1.21 language version
		g.Go(func() error {
			if err := r.executor.ExecuteStep(ctx, rec); err != nil {
				r.logger.Error("step execution failed",
					zap.String("transaction_id", rec.ID), zap.String("step", rec.Step), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}
