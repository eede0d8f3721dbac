package pipeline

import (
	// Go Internal Packages
	"context"
	"fmt"
	"time"

	// Local Packages
	models "tx-pipeline/models"

	// External Packages
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExecutionCreator interface {
	Create(ctx context.Context, rec models.ExecutionRecord) error
}

// Submitter accepts a transaction request, assigns the tracking id and
// creates the initial execution record. The pipeline itself runs
// asynchronously; the caller polls the status projector with the id.
type Submitter struct {
	store  ExecutionCreator
	logger *zap.Logger
}

func NewSubmitter(store ExecutionCreator, logger *zap.Logger) *Submitter {
	return &Submitter{store: store, logger: logger}
}

// Submit records the request as a runnable execution at the validate
// step and returns the generated transaction id.
func (s *Submitter) Submit(ctx context.Context, input models.TransactionRequest) (string, error) {
	id := fmt.Sprintf("transaction-%s", uuid.NewString())
	now := time.Now().UTC()

	rec := models.ExecutionRecord{
		ID:        id,
		Input:     input,
		Step:      models.StepValidate,
		Outcome:   models.OutcomeSuccess,
		Status:    models.StatusRunning,
		RunAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return "", err
	}

	s.logger.Info("transaction submitted",
		zap.String("transaction_id", id),
		zap.String("wallet_id", input.WalletID),
		zap.String("type", input.Type))
	return id, nil
}
