package queries

import (
	"errors"
	"time"

	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/pkg/guard"
)

var (
	ErrGetStaleOrdersQueryIsNotConstructed = errors.New(
		"GetStaleOrdersQuery must be created via NewGetStaleOrdersQuery constructor",
	)
	ErrCutoffIsRequired = errors.New("stale order cutoff is required")
)

// GetStaleOrdersQuery finds orders that are still Pending or Processing and
// have not changed since cutoff. Such orders were most likely orphaned by a
// failed publish or a discarded message.
//
// Example:
//
//	query, _ := NewGetStaleOrdersQuery(time.Now().Add(-15 * time.Minute))
//	stale, err := handler.Handle(ctx, query)
type GetStaleOrdersQuery struct {
	cutoff time.Time

	guard guard.ConstructorGuard
}

// NewGetStaleOrdersQuery creates a query for orders idle since cutoff.
func NewGetStaleOrdersQuery(cutoff time.Time) (GetStaleOrdersQuery, error) {
	if cutoff.IsZero() {
		return GetStaleOrdersQuery{}, ErrCutoffIsRequired
	}

	return GetStaleOrdersQuery{
		cutoff: cutoff.UTC(),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStaleOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetStaleOrdersQueryIsNotConstructed)
}

// Cutoff returns the UTC instant before which inactivity counts as stale.
func (q GetStaleOrdersQuery) Cutoff() time.Time {
	return q.cutoff
}

// GetStaleOrdersQueryResponse is the read model of one stale order.
type GetStaleOrdersQueryResponse struct {
	ID           kernel.UUID
	ProductName  string
	Status       order.Status
	CreatedDate  time.Time
	LastActivity time.Time
}
