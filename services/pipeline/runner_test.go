package pipeline

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	// Local Packages
	config "tx-pipeline/config"
	models "tx-pipeline/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClaimer struct {
	records []models.ExecutionRecord
	err     error
	lease   time.Duration
	limit   int
}

func (f *fakeClaimer) ClaimDue(_ context.Context, _ time.Time, lease time.Duration, limit int) ([]models.ExecutionRecord, error) {
	f.lease, f.limit = lease, limit
	return f.records, f.err
}

type fakeExecutor struct {
	mu   sync.Mutex
	seen []string
	err  error
}

func (f *fakeExecutor) ExecuteStep(_ context.Context, rec models.ExecutionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, rec.ID)
	return f.err
}

func runnerConf() config.Pipeline {
	return config.Pipeline{
		PollInterval:  10 * time.Millisecond,
		LeaseDuration: 30 * time.Second,
		WorkerCount:   4,
	}
}

func TestTickExecutesClaimedRecords(t *testing.T) {
	claimer := &fakeClaimer{records: []models.ExecutionRecord{
		{ID: "transaction-1", Step: models.StepValidate},
		{ID: "transaction-2", Step: models.StepMutate},
	}}
	executor := &fakeExecutor{}
	r := NewRunner(claimer, executor, zap.NewNop(), runnerConf())

	require.NoError(t, r.Tick(context.Background()))
	assert.ElementsMatch(t, []string{"transaction-1", "transaction-2"}, executor.seen)
	assert.Equal(t, 30*time.Second, claimer.lease)
	assert.Equal(t, 4, claimer.limit)
}

func TestTickPropagatesClaimError(t *testing.T) {
	claimer := &fakeClaimer{err: stderrors.New("mongo down")}
	r := NewRunner(claimer, &fakeExecutor{}, zap.NewNop(), runnerConf())

	assert.Error(t, r.Tick(context.Background()))
}

// A failing step is logged and released to its lease, never allowed to
// stall the rest of the schedule.
func TestTickSurvivesExecutorErrors(t *testing.T) {
	claimer := &fakeClaimer{records: []models.ExecutionRecord{
		{ID: "transaction-1", Step: models.StepValidate},
		{ID: "transaction-2", Step: models.StepValidate},
	}}
	executor := &fakeExecutor{err: stderrors.New("boom")}
	r := NewRunner(claimer, executor, zap.NewNop(), runnerConf())

	require.NoError(t, r.Tick(context.Background()))
	assert.Len(t, executor.seen, 2)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	claimer := &fakeClaimer{}
	r := NewRunner(claimer, &fakeExecutor{}, zap.NewNop(), runnerConf())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
