package pipeline

import (
	// Go Internal Packages
	"context"

	// Local Packages
	models "tx-pipeline/models"
)

type ExecutionReader interface {
	Get(ctx context.Context, id string) (*models.ExecutionRecord, error)
}

const inProgressMessage = "Transaction is currently in progress."

// StatusProjector translates execution records into the client-facing
// three-state status payload. Read-only; the records belong to the
// orchestrator.
type StatusProjector struct {
	store ExecutionReader
}

func NewStatusProjector(store ExecutionReader) *StatusProjector {
	return &StatusProjector{store: store}
}

// Project returns the current status for a transaction id. A missing
// record surfaces as a NotFound domain error. For failed pipelines the
// message is the innermost cause of the stored failure chain, never an
// intermediate wrapper's text.
func (p *StatusProjector) Project(ctx context.Context, id string) (*models.StatusResponse, error) {
	rec, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch rec.Status {
	case models.StatusCompleted:
		return &models.StatusResponse{Status: models.StatusCompleted, Message: rec.Result}, nil
	case models.StatusFailed:
		msg := rec.RootCause()
		if msg == "" {
			msg = "Transaction failed."
		}
		return &models.StatusResponse{Status: models.StatusFailed, Message: msg}, nil
	default:
		return &models.StatusResponse{Status: models.StatusRunning, Message: inProgressMessage}, nil
	}
}
