package redis

import (
	// Go Internal Packages
	"context"

	// Local Packages
	errors "tx-pipeline/errors"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PublisherRepository publishes serialized notification events on
// named redis channels. Delivery is best effort; a successful publish
// call is the only guarantee.
type PublisherRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewPublisherRepository(client *redis.Client, logger *zap.Logger) *PublisherRepository {
	return &PublisherRepository{client: client, logger: logger}
}

// Publish sends payload on the given channel.
func (r *PublisherRepository) Publish(ctx context.Context, channel string, payload []byte) error {
	err := r.client.Publish(ctx, channel, payload).Err()
	if err != nil {
		return errors.E(errors.Internal, "failed to publish event", err)
	}
	r.logger.Info("published event", zap.String("channel", channel))
	return nil
}
