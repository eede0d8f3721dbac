package mongodb

import (
	// Go Internal Packages
	"context"

	// External Packages
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

func NewAuditRepository(client *mongo.Client, database string) *AuditRepository {
	return &AuditRepository{client: client, database: database, collection: "audit_events"}
}

// InsertEntries inserts a batch of audit entries into database
func (r *AuditRepository) InsertEntries(ctx context.Context, entries []interface{}) error {
	collection := r.client.Database(r.database).Collection(r.collection)
	_, err := collection.InsertMany(ctx, entries)
	if err != nil {
		return err
	}
	return nil
}
