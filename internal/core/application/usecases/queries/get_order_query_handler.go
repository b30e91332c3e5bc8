package queries

import (
	"context"

	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/core/ports"
)

// GetOrderQueryHandler loads one order through the repository.
// A missing order surfaces as errs.ObjectNotFoundError.
type GetOrderQueryHandler struct {
	repository ports.OrderRepository
}

// NewGetOrderQueryHandler creates a handler reading from repository.
func NewGetOrderQueryHandler(repository ports.OrderRepository) GetOrderQueryHandler {
	return GetOrderQueryHandler{repository: repository}
}

// Handle executes the query.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.repository.Get(ctx, query.OrderID())
}
