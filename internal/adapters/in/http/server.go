package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ordermanagement/internal/core/application/usecases/commands"
	"ordermanagement/internal/core/application/usecases/queries"
	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/generated/servers"
	"ordermanagement/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

var _ servers.ServerInterface = (*Server)(nil)

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler commands.CreateOrderCommandHandler

	// Query handlers
	getOrderHandler     queries.GetOrderQueryHandler
	getAllOrdersHandler queries.GetAllOrdersQueryHandler

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getAllOrdersHandler queries.GetAllOrdersQueryHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:  createOrderHandler,
		getOrderHandler:     getOrderHandler,
		getAllOrdersHandler: getAllOrdersHandler,
		logger:              logger.With("component", "http_server"),
	}
}

// CreateOrder handles POST /api/orders - stores a new order and queues it.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var newOrder servers.NewOrder
	if err := ctx.Bind(&newOrder); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	price, err := kernel.PriceFromString(newOrder.Price.String())
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid order data: "+err.Error())
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), newOrder.ProductName, price)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid order data: "+err.Error())
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		if isValidationError(err) {
			return errorResponse(ctx, http.StatusBadRequest, "Invalid order data: "+err.Error())
		}
		s.logger.ErrorContext(ctx.Request().Context(), "Failed to create order", "error", err)
		return errorResponse(ctx, http.StatusInternalServerError, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, toResponse(created))
}

// GetOrder handles GET /api/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderID openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid order id")
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid order id: "+err.Error())
	}

	found, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "Order not found")
		}
		s.logger.ErrorContext(ctx.Request().Context(), "Failed to retrieve order", "orderId", id.String(), "error", err)
		return errorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve order")
	}

	return ctx.JSON(http.StatusOK, toResponse(found))
}

// GetOrders handles GET /api/orders - lists all orders, newest first.
func (s *Server) GetOrders(ctx echo.Context) error {
	orders, err := s.getAllOrdersHandler.Handle(ctx.Request().Context(), queries.NewGetAllOrdersQuery())
	if err != nil {
		s.logger.ErrorContext(ctx.Request().Context(), "Failed to retrieve orders", "error", err)
		return errorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve orders")
	}

	response := make([]servers.Order, len(orders))
	for i, o := range orders {
		response[i] = toResponse(o)
	}

	return ctx.JSON(http.StatusOK, response)
}

func toResponse(o *order.Order) servers.Order {
	return servers.Order{
		Id:          o.ID().Raw(),
		ProductName: o.ProductName(),
		Price:       json.Number(o.Price().String()),
		Status:      servers.OrderStatus(o.Status().String()),
		CreatedDate: o.CreatedDate(),
		UpdatedDate: o.UpdatedDate(),
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsInvalid) ||
		errors.Is(err, errs.ErrValueIsOutOfRange) ||
		errors.Is(err, commands.ErrProductNameIsRequired)
}

func errorResponse(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, servers.Error{
		Code:    int32(code), //nolint:gosec // HTTP status codes fit in int32
		Message: message,
	})
}
