package redis

import (
	// Go Internal Packages
	"context"
	"testing"
	"time"

	// External Packages
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishDeliversToChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewPublisherRepository(client, zap.NewNop())
	ctx := context.Background()

	sub := client.Subscribe(ctx, "deposit:success")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	require.NoError(t, repo.Publish(ctx, "deposit:success", []byte(`{"event":"success"}`)))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "deposit:success", msg.Channel)
		assert.JSONEq(t, `{"event":"success"}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}
