package order

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/pkg/errs"
)

const (
	ProductNameMinLength = 3
	ProductNameMaxLength = 200
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the unit of work flowing through the pipeline. Identity, product,
// price and creation time are fixed at construction; status and updatedDate
// change as the worker processes the order.
//
// Order follows these invariants:
//   - Must have a valid unique identifier
//   - Product name is 3..200 characters and not blank
//   - Price is a constructed kernel.Price
//   - Status only moves forward (see Status)
//   - updatedDate is nil until the first mutation and never precedes createdDate
type Order struct {
	id          kernel.UUID
	productName string
	price       kernel.Price
	status      Status
	createdDate time.Time

	// updatedDate is nil until the order has been mutated after creation
	updatedDate *time.Time

	isConstructed bool
}

// NewOrder creates a Pending order created at createdDate (stored in UTC).
//
// Example:
//
//	price, _ := kernel.PriceFromString("19.99")
//	o, err := order.NewOrder(kernel.NewUUID(), "Widget", price, time.Now())
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(id kernel.UUID, productName string, price kernel.Price, createdDate time.Time) (*Order, error) {
	order := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setProductName(productName),
		order.setPrice(price),
		order.setCreatedDate(createdDate),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder rebuilds an order from persisted or transported state. It applies
// the same validation as NewOrder plus status and timestamp consistency checks.
func RestoreOrder(
	id kernel.UUID,
	productName string,
	price kernel.Price,
	status Status,
	createdDate time.Time,
	updatedDate *time.Time,
) (*Order, error) {
	order := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setProductName(productName),
		order.setPrice(price),
		order.setStatus(status),
		order.setCreatedDate(createdDate),
	); err != nil {
		return nil, err
	}

	if updatedDate != nil {
		if updatedDate.Before(order.createdDate) {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"updatedDate is invalid",
				fmt.Errorf("%s is before createdDate %s",
					updatedDate.Format(time.RFC3339Nano), order.createdDate.Format(time.RFC3339Nano)),
			)
		}
		restored := updatedDate.UTC()
		order.updatedDate = &restored
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// ProductName returns the ordered product's name.
func (o *Order) ProductName() string {
	return o.productName
}

// Price returns the order price.
func (o *Order) Price() kernel.Price {
	return o.price
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// CreatedDate returns the creation time in UTC.
func (o *Order) CreatedDate() time.Time {
	return o.createdDate
}

// UpdatedDate returns a copy of the last mutation time, or nil if the order
// has never been updated.
func (o *Order) UpdatedDate() *time.Time {
	if o.updatedDate == nil {
		return nil
	}
	updated := *o.updatedDate
	return &updated
}

// StartProcessing moves a Pending order to Processing.
func (o *Order) StartProcessing() error {
	newStatus, err := o.status.StartProcessing()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Complete moves a Processing order to Completed.
func (o *Order) Complete() error {
	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Cancel moves a Pending order to Cancelled.
func (o *Order) Cancel() error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Touch records a mutation at the given time. Storage adapters call it from
// Update. Times earlier than createdDate (clock skew between processes) are
// clamped to createdDate.
func (o *Order) Touch(at time.Time) {
	at = at.UTC()
	if at.Before(o.createdDate) {
		at = o.createdDate
	}
	o.updatedDate = &at
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setProductName(productName string) error {
	if strings.TrimSpace(productName) == "" {
		return errs.NewValueIsRequiredError("productName")
	}

	length := utf8.RuneCountInString(productName)
	if length < ProductNameMinLength || length > ProductNameMaxLength {
		return errs.NewValueIsOutOfRangeError("productName length", length, ProductNameMinLength, ProductNameMaxLength)
	}

	o.productName = productName
	return nil
}

func (o *Order) setPrice(price kernel.Price) error {
	if err := price.Validate(); err != nil {
		return err
	}
	o.price = price
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setCreatedDate(createdDate time.Time) error {
	if createdDate.IsZero() {
		return errs.NewValueIsRequiredError("createdDate")
	}
	o.createdDate = createdDate.UTC()
	return nil
}
