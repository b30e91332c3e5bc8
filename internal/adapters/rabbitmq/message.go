package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"
)

const ContentType = "application/json"

var ErrDeserializationFailure = errors.New("message deserialization failure")

// OrderMessage is the queue body: the full order record. Price is a JSON
// number carrying exactly two fractional digits; status is the status name.
type OrderMessage struct {
	ID          string      `json:"id"`
	ProductName string      `json:"productName"`
	Price       json.Number `json:"price"`
	Status      string      `json:"status"`
	CreatedDate time.Time   `json:"createdDate"`
	UpdatedDate *time.Time  `json:"updatedDate,omitempty"`
}

// EncodeOrder serializes an order into a message body.
func EncodeOrder(o *order.Order) ([]byte, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	return json.Marshal(OrderMessage{
		ID:          o.ID().String(),
		ProductName: o.ProductName(),
		Price:       json.Number(o.Price().String()),
		Status:      o.Status().String(),
		CreatedDate: o.CreatedDate(),
		UpdatedDate: o.UpdatedDate(),
	})
}

// DecodeOrder parses and validates a message body. Every failure wraps
// ErrDeserializationFailure.
func DecodeOrder(body []byte) (*order.Order, error) {
	var msg OrderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserializationFailure, err)
	}

	id, err := kernel.UUIDFromString(msg.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrDeserializationFailure, err)
	}

	price, err := kernel.PriceFromString(msg.Price.String())
	if err != nil {
		return nil, fmt.Errorf("%w: price: %w", ErrDeserializationFailure, err)
	}

	status, err := order.ParseStatus(msg.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserializationFailure, err)
	}

	o, err := order.RestoreOrder(id, msg.ProductName, price, status, msg.CreatedDate, msg.UpdatedDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserializationFailure, err)
	}

	return o, nil
}
