package processors

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"

	// Local Packages
	models "tx-pipeline/models"

	// External Packages
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditRepository interface {
	InsertEntries(ctx context.Context, entries []interface{}) error
}

// AuditProcessor turns consumed notification events into persisted
// audit entries. Undecodable records are skipped with a log line; a
// failed insert fails the whole batch so the consumer can dead-letter
// it.
type AuditProcessor struct {
	Logger    *zap.Logger
	AuditRepo AuditRepository
}

func NewAuditProcessor(logger *zap.Logger, auditRepo AuditRepository) *AuditProcessor {
	return &AuditProcessor{AuditRepo: auditRepo, Logger: logger}
}

func (p *AuditProcessor) ProcessRecords(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	var entries []interface{}
	for _, record := range records {
		var event models.NotificationEvent
		err := json.Unmarshal(record.Value, &event)
		if err != nil {
			p.Logger.Error("failed to unmarshal notification event", zap.Error(err))
			continue
		}
		entries = append(entries, event.Transform(uuid.NewString(), record.Topic))
	}
	if len(entries) == 0 {
		return nil
	}

	err := p.AuditRepo.InsertEntries(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to insert audit entries: %v", err)
	}
	return nil
}
