package ports

import (
	"context"

	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Implementations are safe for concurrent use; every operation is atomic
// per record.
type OrderRepository interface {
	// Create persists a new order and returns the stored aggregate.
	Create(ctx context.Context, aggregate *order.Order) (*order.Order, error)

	// Get retrieves an order by its identifier.
	// Returns errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAll retrieves every order, newest first (createdDate descending).
	GetAll(ctx context.Context) ([]*order.Order, error)

	// Update persists the mutable state of an existing order and stamps
	// updatedDate with the current UTC time on the passed aggregate.
	Update(ctx context.Context, aggregate *order.Order) error
}
