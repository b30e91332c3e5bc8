package rabbitmq_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"ordermanagement/internal/adapters/rabbitmq"
	"ordermanagement/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Nothing listens on port 1.
var unreachable = rabbitmq.Config{Host: "127.0.0.1", Port: "1", User: "guest", Password: "guest"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_Publish_BrokerUnavailable(t *testing.T) {
	publisher := rabbitmq.NewPublisher(unreachable, discardLogger())
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := publisher.Publish(ctx, newTestOrder(t), rabbitmq.DefaultQueue)

	require.ErrorIs(t, err, ports.ErrPublishFailure)
	assert.ErrorIs(t, err, rabbitmq.ErrConnectionFailure)
}

func TestPublisher_Close_WithoutConnection(t *testing.T) {
	publisher := rabbitmq.NewPublisher(unreachable, discardLogger())

	require.NoError(t, publisher.Close())
}

func TestSource_Subscribe_BrokerUnavailable(t *testing.T) {
	source := rabbitmq.NewSource(unreachable, rabbitmq.DefaultQueue)

	sub, err := source.Subscribe(context.Background())

	assert.Nil(t, sub)
	require.ErrorIs(t, err, rabbitmq.ErrConnectionFailure)
	assert.Equal(t, rabbitmq.DefaultQueue, source.Queue())
}
