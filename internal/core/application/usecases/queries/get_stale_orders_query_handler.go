package queries

import (
	"context"
	"time"

	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetStaleOrdersQueryHandler reads stale orders straight from the database.
// Results are sorted oldest first.
type GetStaleOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetStaleOrdersQueryHandler creates a handler for stale order queries.
func NewGetStaleOrdersQueryHandler(db *gorm.DB) GetStaleOrdersQueryHandler {
	return GetStaleOrdersQueryHandler{db: db}
}

// Handle executes the query.
func (h GetStaleOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetStaleOrdersQuery,
) ([]GetStaleOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetStaleOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			product_name,
			status,
			created_date,
			updated_date
		FROM orders
		WHERE status IN ?
		  AND COALESCE(updated_date, created_date) < ?
		ORDER BY created_date
	`, []string{order.Pending.String(), order.Processing.String()}, query.Cutoff()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          uuid.UUID
			productName string
			statusName  string
			createdDate time.Time
			updatedDate *time.Time
		)

		if err = rows.Scan(&id, &productName, &statusName, &createdDate, &updatedDate); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		status, statusErr := order.ParseStatus(statusName)
		if statusErr != nil {
			return nil, statusErr
		}

		lastActivity := createdDate
		if updatedDate != nil {
			lastActivity = *updatedDate
		}

		orders = append(orders, GetStaleOrdersQueryResponse{
			ID:           orderID,
			ProductName:  productName,
			Status:       status,
			CreatedDate:  createdDate.UTC(),
			LastActivity: lastActivity.UTC(),
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
