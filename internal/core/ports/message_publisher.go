package ports

import (
	"context"
	"errors"

	"ordermanagement/internal/core/domain/model/order"
)

// ErrPublishFailure is wrapped by MessagePublisher implementations when the
// broker channel is unavailable or the broker refuses the write.
var ErrPublishFailure = errors.New("publish failure")

// MessagePublisher hands orders over to the durable processing queue.
type MessagePublisher interface {
	// Publish serializes the order and sends it to the named queue as a
	// persistent message. A nil error means the broker accepted the message;
	// nothing is implied about its consumption.
	Publish(ctx context.Context, aggregate *order.Order, queue string) error
}
