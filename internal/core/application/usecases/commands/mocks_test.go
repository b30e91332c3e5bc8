package commands_test

import (
	"context"

	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	args := m.Called(ctx, o)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return o, nil
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if found, ok := args.Get(0).(*order.Order); ok {
		return found, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if all, ok := args.Get(0).([]*order.Order); ok {
		return all, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockMessagePublisher struct{ mock.Mock }

func (m *MockMessagePublisher) Publish(ctx context.Context, o *order.Order, queue string) error {
	args := m.Called(ctx, o, queue)
	return args.Error(0)
}

func withStatus(status order.Status) any {
	return mock.MatchedBy(func(o *order.Order) bool {
		return o.Status() == status
	})
}
