package commands

import (
	"context"
	"fmt"
	"time"

	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/core/ports"
)

// CreateOrderCommandHandler persists a new Pending order and then publishes
// it to the processing queue.
//
// The storage write and the publish are not atomic. When the publish fails
// the order stays stored in Pending with no message referring to it, and the
// error is returned to the caller.
type CreateOrderCommandHandler struct {
	repository ports.OrderRepository
	publisher  ports.MessagePublisher
	queue      string
	now        func() time.Time
}

// NewCreateOrderCommandHandler creates a handler publishing to queue.
func NewCreateOrderCommandHandler(
	repository ports.OrderRepository,
	publisher ports.MessagePublisher,
	queue string,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		repository: repository,
		publisher:  publisher,
		queue:      queue,
		now:        time.Now,
	}
}

// Handle creates, stores and publishes the order.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	newOrder, err := order.NewOrder(cmd.OrderID(), cmd.ProductName(), cmd.Price(), h.now())
	if err != nil {
		return nil, err
	}

	created, err := h.repository.Create(ctx, newOrder)
	if err != nil {
		return nil, fmt.Errorf("store order %s: %w", newOrder.ID(), err)
	}

	if err = h.publisher.Publish(ctx, created, h.queue); err != nil {
		return nil, fmt.Errorf("order %s stored but not queued: %w", created.ID(), err)
	}

	return created, nil
}
