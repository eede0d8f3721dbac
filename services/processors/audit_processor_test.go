package processors

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"testing"

	// Local Packages
	models "tx-pipeline/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuditRepo struct {
	entries []interface{}
	err     error
}

func (f *fakeAuditRepo) InsertEntries(_ context.Context, entries []interface{}) error {
	f.entries = append(f.entries, entries...)
	return f.err
}

func TestProcessRecordsPersistsEvents(t *testing.T) {
	repo := &fakeAuditRepo{}
	p := NewAuditProcessor(zap.NewNop(), repo)

	records := []models.Record{
		{Key: []byte("deposit:success"), Value: []byte(`{"event":"success","type":"deposit","timestamp":"2026-08-29T10:00:00Z"}`), Topic: "transaction-events"},
		{Key: []byte("withdraw:failed"), Value: []byte(`{"event":"failed","type":"withdraw","timestamp":"2026-08-29T10:01:00Z"}`), Topic: "transaction-events"},
	}
	require.NoError(t, p.ProcessRecords(context.Background(), records))

	require.Len(t, repo.entries, 2)
	entry, ok := repo.entries[0].(models.AuditEntry)
	require.True(t, ok)
	assert.Equal(t, "success", entry.Event)
	assert.Equal(t, "deposit", entry.Type)
	assert.Equal(t, "transaction-events", entry.Topic)
	assert.NotEmpty(t, entry.EventID)
}

func TestProcessRecordsSkipsUndecodable(t *testing.T) {
	repo := &fakeAuditRepo{}
	p := NewAuditProcessor(zap.NewNop(), repo)

	records := []models.Record{
		{Value: []byte(`not json`)},
		{Value: []byte(`{"event":"success","type":"deposit","timestamp":"2026-08-29T10:00:00Z"}`)},
	}
	require.NoError(t, p.ProcessRecords(context.Background(), records))
	assert.Len(t, repo.entries, 1)
}

func TestProcessRecordsEmptyBatches(t *testing.T) {
	repo := &fakeAuditRepo{}
	p := NewAuditProcessor(zap.NewNop(), repo)

	assert.NoError(t, p.ProcessRecords(context.Background(), nil))
	assert.NoError(t, p.ProcessRecords(context.Background(), []models.Record{{Value: []byte(`garbage`)}}))
	assert.Empty(t, repo.entries)
}

func TestProcessRecordsInsertFailureFailsBatch(t *testing.T) {
	repo := &fakeAuditRepo{err: stderrors.New("mongo down")}
	p := NewAuditProcessor(zap.NewNop(), repo)

	err := p.ProcessRecords(context.Background(), []models.Record{
		{Value: []byte(`{"event":"success","type":"deposit","timestamp":"2026-08-29T10:00:00Z"}`)},
	})
	assert.Error(t, err)
}
