package commands

import (
	"errors"
	"strings"

	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrProductNameIsRequired = errors.New("product name is required")
)

// CreateOrderCommand represents a request to register a new order and queue
// it for processing. Length and bounds rules are enforced by the aggregate.
//
// Example:
//
//	price, _ := kernel.PriceFromFloat(19.99)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "Widget", price)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	productName string
	price       kernel.Price

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
func NewCreateOrderCommand(orderID kernel.UUID, productName string, price kernel.Price) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setProductName(productName),
		orderCommand.setPrice(price),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier the new order will carry.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ProductName returns the ordered product's name.
func (c CreateOrderCommand) ProductName() string {
	return c.productName
}

// Price returns the order price.
func (c CreateOrderCommand) Price() kernel.Price {
	return c.price
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setProductName(productName string) error {
	if strings.TrimSpace(productName) == "" {
		return ErrProductNameIsRequired
	}

	c.productName = productName
	return nil
}

func (c *CreateOrderCommand) setPrice(price kernel.Price) error {
	if err := price.Validate(); err != nil {
		return err
	}

	c.price = price
	return nil
}
