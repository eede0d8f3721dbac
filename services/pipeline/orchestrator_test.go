package pipeline

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"testing"
	"time"

	// Local Packages
	config "tx-pipeline/config"
	errors "tx-pipeline/errors"
	models "tx-pipeline/models"

	// External Packages
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type advanceCall struct {
	step  string
	runAt time.Time
}

type failureRoute struct {
	failure []models.FailureCause
	runAt   time.Time
}

type fakeStore struct {
	advances  []advanceCall
	routes    []failureRoute
	completes []string
	failures  [][]models.FailureCause
	expiresAt time.Time
}

func (f *fakeStore) Advance(_ context.Context, _ string, step string, runAt time.Time) error {
	f.advances = append(f.advances, advanceCall{step: step, runAt: runAt})
	return nil
}

func (f *fakeStore) RouteToFailurePublish(_ context.Context, _ string, failure []models.FailureCause, runAt time.Time) error {
	f.routes = append(f.routes, failureRoute{failure: failure, runAt: runAt})
	return nil
}

func (f *fakeStore) Complete(_ context.Context, _ string, result string, expiresAt time.Time) error {
	f.completes = append(f.completes, result)
	f.expiresAt = expiresAt
	return nil
}

func (f *fakeStore) Fail(_ context.Context, _ string, failure []models.FailureCause, expiresAt time.Time) error {
	f.failures = append(f.failures, failure)
	f.expiresAt = expiresAt
	return nil
}

// fakeLedger replays one scripted error per call, nil once exhausted.
type fakeLedger struct {
	depositCalls  int
	withdrawCalls int
	depositErrs   []error
	withdrawErrs  []error
	amounts       []decimal.Decimal
}

func (f *fakeLedger) Deposit(_ context.Context, _, _ string, amount decimal.Decimal) error {
	f.depositCalls++
	f.amounts = append(f.amounts, amount)
	return popErr(&f.depositErrs)
}

func (f *fakeLedger) Withdraw(_ context.Context, _, _ string, amount decimal.Decimal) error {
	f.withdrawCalls++
	f.amounts = append(f.amounts, amount)
	return popErr(&f.withdrawErrs)
}

type fakePublisher struct {
	calls    int
	outcomes []int
	errs     []error
}

func (f *fakePublisher) Publish(_ context.Context, outcome int, _ string) error {
	f.calls++
	f.outcomes = append(f.outcomes, outcome)
	return popErr(&f.errs)
}

func popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func testConf() config.Pipeline {
	return config.Pipeline{
		SettleDelay:    15 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		Retention:      time.Hour,
	}
}

func newTestOrchestrator(store *fakeStore, ledger *fakeLedger, publisher *fakePublisher) *Orchestrator {
	return NewOrchestrator(store, ledger, publisher, zap.NewNop(), testConf())
}

func record(step, txType, amount string, outcome int) models.ExecutionRecord {
	return models.ExecutionRecord{
		ID:      "transaction-1",
		Step:    step,
		Outcome: outcome,
		Status:  models.StatusRunning,
		Input: models.TransactionRequest{
			WalletID: "w1", Symbol: "BTC", Amount: amount, Type: txType,
		},
	}
}

func TestValidateStepAdvancesWithSettleDelay(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store, &fakeLedger{}, &fakePublisher{})

	rec := record(models.StepValidate, models.TypeDeposit, "10.00", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	require.Len(t, store.advances, 1)
	assert.Equal(t, models.StepMutate, store.advances[0].step)
	assert.WithinDuration(t, time.Now().Add(15*time.Second), store.advances[0].runAt, time.Second)
}

func TestValidateStepFailureRoutesToFailurePublish(t *testing.T) {
	store := &fakeStore{}
	ledger := &fakeLedger{}
	o := newTestOrchestrator(store, ledger, &fakePublisher{})

	rec := record(models.StepValidate, models.TypeDeposit, "-5", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	require.Len(t, store.routes, 1)
	chain := store.routes[0].failure
	require.NotEmpty(t, chain)
	assert.Equal(t, "Transaction amount must be a positive number.", chain[len(chain)-1].Message)
	assert.Equal(t, "invalid", chain[len(chain)-1].Kind)
	// The failure notification is published right away, no settle wait.
	assert.WithinDuration(t, time.Now(), store.routes[0].runAt, time.Second)
	assert.Zero(t, ledger.depositCalls, "no mutation may happen for invalid input")
	assert.Empty(t, store.advances)
}

func TestMutateStepDeposit(t *testing.T) {
	store := &fakeStore{}
	ledger := &fakeLedger{}
	o := newTestOrchestrator(store, ledger, &fakePublisher{})

	rec := record(models.StepMutate, models.TypeDeposit, "10.00", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	assert.Equal(t, 1, ledger.depositCalls)
	require.Len(t, ledger.amounts, 1)
	assert.True(t, ledger.amounts[0].Equal(decimal.RequireFromString("10.00")))
	require.Len(t, store.advances, 1)
	assert.Equal(t, models.StepPublish, store.advances[0].step)
}

func TestMutateStepRetriesTransientConflict(t *testing.T) {
	store := &fakeStore{}
	ledger := &fakeLedger{withdrawErrs: []error{errors.ConcurrentModificationErr()}}
	o := newTestOrchestrator(store, ledger, &fakePublisher{})

	rec := record(models.StepMutate, models.TypeWithdraw, "5", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	assert.Equal(t, 2, ledger.withdrawCalls, "conflict must be retried")
	require.Len(t, store.advances, 1)
	assert.Equal(t, models.StepPublish, store.advances[0].step)
	assert.Empty(t, store.routes)
}

func TestMutateStepExhaustsRetryBudget(t *testing.T) {
	ioErr := stderrors.New("i/o timeout")
	store := &fakeStore{}
	ledger := &fakeLedger{withdrawErrs: []error{ioErr, ioErr, ioErr, ioErr}}
	o := newTestOrchestrator(store, ledger, &fakePublisher{})

	rec := record(models.StepMutate, models.TypeWithdraw, "5", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	assert.Equal(t, 3, ledger.withdrawCalls, "budget is three total attempts")
	require.Len(t, store.routes, 1)
	chain := store.routes[0].failure
	assert.Equal(t, "i/o timeout", chain[len(chain)-1].Message)
}

func TestMutateStepInsufficientBalanceNotRetried(t *testing.T) {
	store := &fakeStore{}
	ledger := &fakeLedger{withdrawErrs: []error{
		errors.InsufficientBalanceErr(),
		errors.InsufficientBalanceErr(),
	}}
	o := newTestOrchestrator(store, ledger, &fakePublisher{})

	rec := record(models.StepMutate, models.TypeWithdraw, "15.00", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	assert.Equal(t, 1, ledger.withdrawCalls, "business rejection must not be retried")
	require.Len(t, store.routes, 1)
	chain := store.routes[0].failure
	assert.Equal(t, "Insufficient balance.", chain[len(chain)-1].Message)
	assert.Equal(t, "insufficient_balance", chain[len(chain)-1].Kind)
}

func TestPublishStepCompletesSuccessfulPipeline(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	o := newTestOrchestrator(store, &fakeLedger{}, publisher)

	rec := record(models.StepPublish, models.TypeDeposit, "10.00", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	require.Equal(t, []int{models.OutcomeSuccess}, publisher.outcomes)
	require.Equal(t, []string{"deposit Succeeded"}, store.completes)
	assert.WithinDuration(t, time.Now().Add(time.Hour), store.expiresAt, time.Second)
}

func TestPublishStepFailurePathKeepsOriginalCause(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	o := newTestOrchestrator(store, &fakeLedger{}, publisher)

	rec := record(models.StepPublish, models.TypeWithdraw, "15.00", models.OutcomeFailure)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	require.Equal(t, []int{models.OutcomeFailure}, publisher.outcomes)
	require.Len(t, store.failures, 1)
	assert.Nil(t, store.failures[0], "the stored cause chain must be preserved")
}

func TestPublishStepBrokenNotificationDoesNotMaskCause(t *testing.T) {
	brokerErr := stderrors.New("broker down")
	store := &fakeStore{}
	publisher := &fakePublisher{errs: []error{brokerErr, brokerErr, brokerErr, brokerErr}}
	o := newTestOrchestrator(store, &fakeLedger{}, publisher)

	rec := record(models.StepPublish, models.TypeWithdraw, "15.00", models.OutcomeFailure)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	assert.Equal(t, 3, publisher.calls)
	require.Len(t, store.failures, 1)
	assert.Nil(t, store.failures[0])
}

func TestPublishStepFailureOnSuccessPathFailsPipeline(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{errs: []error{
		errors.UnsupportedTypeErr("transfer"),
		errors.UnsupportedTypeErr("transfer"),
	}}
	o := newTestOrchestrator(store, &fakeLedger{}, publisher)

	rec := record(models.StepPublish, "transfer", "10.00", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	// One permanent success attempt, one permanent compensation attempt.
	assert.Equal(t, []int{models.OutcomeSuccess, models.OutcomeFailure}, publisher.outcomes)
	assert.Empty(t, store.completes)
	require.Len(t, store.failures, 1)
	chain := store.failures[0]
	require.NotEmpty(t, chain)
	assert.Equal(t, "Unsupported transaction type: transfer", chain[len(chain)-1].Message)
}

// A success publish that exhausts its budget still announces the
// failure before the pipeline terminal-fails; the notification for a
// concluded attempt is never skipped.
func TestPublishStepSuccessExhaustionEmitsFailureNotification(t *testing.T) {
	brokerErr := stderrors.New("broker down")
	store := &fakeStore{}
	publisher := &fakePublisher{errs: []error{brokerErr, brokerErr, brokerErr}}
	o := newTestOrchestrator(store, &fakeLedger{}, publisher)

	rec := record(models.StepPublish, models.TypeDeposit, "10.00", models.OutcomeSuccess)
	require.NoError(t, o.ExecuteStep(context.Background(), rec))

	assert.Equal(t, []int{
		models.OutcomeSuccess, models.OutcomeSuccess, models.OutcomeSuccess,
		models.OutcomeFailure,
	}, publisher.outcomes)
	assert.Empty(t, store.completes)
	require.Len(t, store.failures, 1)
	chain := store.failures[0]
	require.NotEmpty(t, chain)
	assert.Equal(t, "broker down", chain[len(chain)-1].Message, "the publish error stays the terminal cause")
}

func TestUnknownStepIsAnError(t *testing.T) {
	o := newTestOrchestrator(&fakeStore{}, &fakeLedger{}, &fakePublisher{})

	rec := record("teleport", models.TypeDeposit, "10.00", models.OutcomeSuccess)
	err := o.ExecuteStep(context.Background(), rec)
	require.Error(t, err)
	assert.Equal(t, errors.Internal, errors.KindOf(err))
}
