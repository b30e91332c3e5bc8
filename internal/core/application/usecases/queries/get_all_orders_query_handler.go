package queries

import (
	"context"

	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/core/ports"
)

type GetAllOrdersQueryHandler struct {
	repository ports.OrderRepository
}

func NewGetAllOrdersQueryHandler(repository ports.OrderRepository) GetAllOrdersQueryHandler {
	return GetAllOrdersQueryHandler{repository: repository}
}

// Handle returns all orders ordered by createdDate descending.
func (h GetAllOrdersQueryHandler) Handle(ctx context.Context, query GetAllOrdersQuery) ([]*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.repository.GetAll(ctx)
}
