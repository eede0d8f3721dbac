package pipeline

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	// Local Packages
	config "tx-pipeline/config"
	errors "tx-pipeline/errors"
	models "tx-pipeline/models"

	// External Packages
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Ledger interface {
	Deposit(ctx context.Context, walletID, symbol string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, walletID, symbol string, amount decimal.Decimal) error
}

type Publisher interface {
	Publish(ctx context.Context, outcome int, txType string) error
}

type ExecutionStore interface {
	Advance(ctx context.Context, id, step string, runAt time.Time) error
	RouteToFailurePublish(ctx context.Context, id string, failure []models.FailureCause, runAt time.Time) error
	Complete(ctx context.Context, id, result string, expiresAt time.Time) error
	Fail(ctx context.Context, id string, failure []models.FailureCause, expiresAt time.Time) error
}

// Orchestrator executes one pipeline step at a time and checkpoints
// the result, so a process restart resumes from the last incomplete
// step. Steps run under a fixed retry budget; failures at validate or
// mutate reroute the record to the failure-notification publish.
type Orchestrator struct {
	store          ExecutionStore
	ledger         Ledger
	publisher      Publisher
	logger         *zap.Logger
	settleDelay    time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	retention      time.Duration
}

func NewOrchestrator(store ExecutionStore, ledger Ledger, publisher Publisher, logger *zap.Logger, conf config.Pipeline) *Orchestrator {
	return &Orchestrator{
		store:          store,
		ledger:         ledger,
		publisher:      publisher,
		logger:         logger,
		settleDelay:    conf.SettleDelay,
		maxAttempts:    conf.MaxAttempts,
		initialBackoff: conf.InitialBackoff,
		retention:      conf.Retention,
	}
}

// ExecuteStep runs the claimed record's current step.
func (o *Orchestrator) ExecuteStep(ctx context.Context, rec models.ExecutionRecord) error {
	switch rec.Step {
	case models.StepValidate:
		return o.runValidate(ctx, rec)
	case models.StepMutate:
		return o.runMutate(ctx, rec)
	case models.StepPublish:
		return o.runPublish(ctx, rec)
	default:
		return errors.E(errors.Internal, fmt.Sprintf("unknown pipeline step: %s", rec.Step), nil)
	}
}

func (o *Orchestrator) runValidate(ctx context.Context, rec models.ExecutionRecord) error {
	o.logger.Info("starting input validation",
		zap.String("transaction_id", rec.ID),
		zap.String("symbol", rec.Input.Symbol),
		zap.String("amount", rec.Input.Amount))

	err := o.retry(ctx, models.StepValidate, func() error {
		return ValidateInput(rec.Input.Symbol, rec.Input.Amount)
	})
	if err != nil {
		return o.store.RouteToFailurePublish(ctx, rec.ID, failureChain(err), time.Now().UTC())
	}

	// Settlement window before the balance is touched.
	return o.store.Advance(ctx, rec.ID, models.StepMutate, time.Now().UTC().Add(o.settleDelay))
}

func (o *Orchestrator) runMutate(ctx context.Context, rec models.ExecutionRecord) error {
	o.logger.Info("updating balance",
		zap.String("transaction_id", rec.ID),
		zap.String("wallet_id", rec.Input.WalletID),
		zap.String("type", rec.Input.Type))

	err := o.retry(ctx, models.StepMutate, func() error {
		return o.applyMutation(ctx, rec.Input)
	})
	if err != nil {
		return o.store.RouteToFailurePublish(ctx, rec.ID, failureChain(err), time.Now().UTC())
	}

	// Confirmation window before the outcome is announced.
	return o.store.Advance(ctx, rec.ID, models.StepPublish, time.Now().UTC().Add(o.settleDelay))
}

func (o *Orchestrator) applyMutation(ctx context.Context, input models.TransactionRequest) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if err != nil {
		return errors.E(errors.Invalid, "Transaction amount must be a positive number.", nil)
	}
	if input.Type == models.TypeWithdraw {
		return o.ledger.Withdraw(ctx, input.WalletID, input.Symbol, amount)
	}
	return o.ledger.Deposit(ctx, input.WalletID, input.Symbol, amount)
}

func (o *Orchestrator) runPublish(ctx context.Context, rec models.ExecutionRecord) error {
	err := o.retry(ctx, models.StepPublish, func() error {
		return o.publisher.Publish(ctx, rec.Outcome, rec.Input.Type)
	})

	expiresAt := time.Now().UTC().Add(o.retention)

	if rec.Outcome == models.OutcomeSuccess {
		if err != nil {
			// Every concluded attempt gets a notification: announce the
			// failure before terminal-failing, keeping the publish error
			// as the stored cause.
			if notifyErr := o.retry(ctx, models.StepPublish, func() error {
				return o.publisher.Publish(ctx, models.OutcomeFailure, rec.Input.Type)
			}); notifyErr != nil {
				o.logger.Error("failure notification could not be published",
					zap.String("transaction_id", rec.ID), zap.Error(notifyErr))
			}
			return o.store.Fail(ctx, rec.ID, failureChain(err), expiresAt)
		}
		result := fmt.Sprintf("%s Succeeded", rec.Input.Type)
		return o.store.Complete(ctx, rec.ID, result, expiresAt)
	}

	// Failure path: the stored cause chain is the terminal failure. A
	// broken notification must not mask the root cause.
	if err != nil {
		o.logger.Error("failure notification could not be published",
			zap.String("transaction_id", rec.ID), zap.Error(err))
	}
	return o.store.Fail(ctx, rec.ID, nil, expiresAt)
}

// retry runs op under the per-step budget: maxAttempts total attempts
// with exponential backoff from initialBackoff. Business rejections
// are permanent and never retried.
func (o *Orchestrator) retry(ctx context.Context, step string, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = o.initialBackoff

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		o.logger.Warn("step attempt failed",
			zap.String("step", step), zap.Int("attempt", attempts), zap.Error(err))
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(o.maxAttempts-1)), ctx))

	if err != nil {
		return fmt.Errorf("%s step failed after %d attempt(s): %w", step, attempts, err)
	}
	return nil
}

func isPermanent(err error) bool {
	switch errors.KindOf(err) {
	case errors.Invalid, errors.InsufficientBalance, errors.Unsupported:
		return true
	default:
		return false
	}
}

// failureChain flattens a wrapped error into an ordered cause chain,
// outermost first. Domain errors contribute their kind and their bare
// message, so the innermost entry is what the client should see.
func failureChain(err error) []models.FailureCause {
	var chain []models.FailureCause
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		cause := models.FailureCause{Kind: "error", Message: e.Error()}
		if de, ok := e.(*errors.Error); ok {
			cause.Kind = de.Kind.String()
			if de.Msg != "" {
				cause.Message = de.Msg
			}
		}
		chain = append(chain, cause)
	}
	return chain
}
