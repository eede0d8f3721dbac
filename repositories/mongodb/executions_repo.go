package mongodb

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"time"

	// Local Packages
	errors "tx-pipeline/errors"
	models "tx-pipeline/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExecutionRepository persists pipeline execution records. The record
// id is the transaction id, which makes submission idempotent: a
// duplicate insert is a no-op and never restarts a running or
// terminal pipeline.
type ExecutionRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

func NewExecutionRepository(client *mongo.Client, database string) *ExecutionRepository {
	return &ExecutionRepository{client: client, database: database, collection: "executions"}
}

func (r *ExecutionRepository) coll() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

// EnsureIndexes creates the scheduler index and the TTL index that
// expires terminal records once their retention window passes.
func (r *ExecutionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "run_at", Value: 1}, {Key: "lease_until", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}

// Create inserts a fresh execution record. Inserting an id that
// already exists is not an error: the transaction id is the unit of
// deduplication.
func (r *ExecutionRepository) Create(ctx context.Context, rec models.ExecutionRecord) error {
	_, err := r.coll().InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return errors.E(errors.Internal, "failed to create execution record", err)
	}
	return nil
}

// Get returns the execution record for a transaction id.
func (r *ExecutionRepository) Get(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	var rec models.ExecutionRecord
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.TxNotFoundErr(id)
	}
	if err != nil {
		return nil, errors.E(errors.Internal, "failed to read execution record", err)
	}
	return &rec, nil
}

// ClaimDue atomically claims up to limit runnable records whose resume
// time has passed and whose lease has expired, extending each claimed
// record's lease so no other worker picks it up concurrently.
func (r *ExecutionRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]models.ExecutionRecord, error) {
	filter := bson.M{
		"status":      models.StatusRunning,
		"run_at":      bson.M{"$lte": now},
		"lease_until": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"lease_until": now.Add(lease),
		"updated_at":  now,
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "run_at", Value: 1}}).
		SetReturnDocument(options.After)

	var claimed []models.ExecutionRecord
	for len(claimed) < limit {
		var rec models.ExecutionRecord
		err := r.coll().FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec)
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			break
		}
		if err != nil {
			return claimed, errors.E(errors.Internal, "failed to claim execution record", err)
		}
		claimed = append(claimed, rec)
	}
	return claimed, nil
}

// Advance checkpoints a completed step: the record moves to the next
// step and becomes runnable again at runAt. Releasing the lease lets
// any worker resume it.
func (r *ExecutionRepository) Advance(ctx context.Context, id, step string, runAt time.Time) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"step":        step,
		"run_at":      runAt,
		"lease_until": time.Time{},
		"updated_at":  time.Now().UTC(),
	}})
}

// RouteToFailurePublish checkpoints a failed business step: the record
// jumps to the publish step on the failure path, carrying the cause
// chain that will become the terminal failure.
func (r *ExecutionRepository) RouteToFailurePublish(ctx context.Context, id string, failure []models.FailureCause, runAt time.Time) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"step":        models.StepPublish,
		"outcome":     models.OutcomeFailure,
		"failure":     failure,
		"run_at":      runAt,
		"lease_until": time.Time{},
		"updated_at":  time.Now().UTC(),
	}})
}

// Complete marks the record terminal with its result message.
func (r *ExecutionRepository) Complete(ctx context.Context, id, result string, expiresAt time.Time) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"status":     models.StatusCompleted,
		"result":     result,
		"expires_at": expiresAt,
		"updated_at": time.Now().UTC(),
	}})
}

// Fail marks the record terminal with its failure cause chain.
func (r *ExecutionRepository) Fail(ctx context.Context, id string, failure []models.FailureCause, expiresAt time.Time) error {
	set := bson.M{
		"status":     models.StatusFailed,
		"expires_at": expiresAt,
		"updated_at": time.Now().UTC(),
	}
	if failure != nil {
		set["failure"] = failure
	}
	return r.update(ctx, id, bson.M{"$set": set})
}

func (r *ExecutionRepository) update(ctx context.Context, id string, update bson.M) error {
	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.E(errors.Internal, "failed to update execution record", err)
	}
	if res.MatchedCount == 0 {
		return errors.TxNotFoundErr(id)
	}
	return nil
}
