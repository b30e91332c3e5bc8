// Package orderrepo maps order aggregates to the "orders" table and
// implements ports.OrderRepository on top of gorm.
package orderrepo

import (
	"time"

	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the row layout of an order. Status is stored by name so the
// table stays readable without the Go enum.
type OrderDTO struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductName string          `gorm:"size:200;not null"`
	Price       decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Status      string          `gorm:"size:16;not null;index"`
	CreatedDate time.Time       `gorm:"not null;index"`
	UpdatedDate *time.Time
}

// TableName overrides GORM's default naming convention.
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:          aggregate.ID().Raw(),
		ProductName: aggregate.ProductName(),
		Price:       aggregate.Price().Amount(),
		Status:      aggregate.Status().String(),
		CreatedDate: aggregate.CreatedDate(),
		UpdatedDate: aggregate.UpdatedDate(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	price, err := kernel.NewPrice(dto.Price)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(id, dto.ProductName, price, status, dto.CreatedDate, dto.UpdatedDate)
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}
	return names
}
