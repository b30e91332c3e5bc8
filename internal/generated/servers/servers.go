// Package servers holds the HTTP contract of the order API: the request and
// response types, the echo routing glue and the embedded OpenAPI document.
// It follows the layout oapi-codegen produces for the echo target.
package servers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for OrderStatus.
const (
	Cancelled  OrderStatus = "Cancelled"
	Completed  OrderStatus = "Completed"
	Pending    OrderStatus = "Pending"
	Processing OrderStatus = "Processing"
)

// Error defines model for Error.
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	Price       json.Number `json:"price"`
	ProductName string      `json:"productName"`
}

// Order defines model for Order.
type Order struct {
	CreatedDate time.Time          `json:"createdDate"`
	Id          openapi_types.UUID `json:"id"`
	Price       json.Number        `json:"price"`
	ProductName string             `json:"productName"`
	Status      OrderStatus        `json:"status"`
	UpdatedDate *time.Time         `json:"updatedDate,omitempty"`
}

// OrderStatus defines model for Order.Status.
type OrderStatus string

// CreateOrderJSONRequestBody defines body for CreateOrder for application/json ContentType.
type CreateOrderJSONRequestBody = NewOrder

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// List all orders, newest first
	// (GET /api/orders)
	GetOrders(ctx echo.Context) error
	// Create an order and queue it for processing
	// (POST /api/orders)
	CreateOrder(ctx echo.Context) error
	// Get one order
	// (GET /api/orders/{orderId})
	GetOrder(ctx echo.Context, orderId openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// GetOrders converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrders(ctx echo.Context) error {
	return w.Handler.GetOrders(ctx)
}

// CreateOrder converts echo context to params.
func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

// GetOrder converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	var orderId openapi_types.UUID

	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}

	return w.Handler.GetOrder(ctx, orderId)
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the
// paths, so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.GET(baseURL+"/api/orders", wrapper.GetOrders)
	router.POST(baseURL+"/api/orders", wrapper.CreateOrder)
	router.GET(baseURL+"/api/orders/:orderId", wrapper.GetOrder)
}

//go:embed openapi.yaml
var rawSpec []byte

// GetSwagger returns the parsed and validated OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading Swagger: %w", err)
	}
	if err = swagger.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("error validating Swagger: %w", err)
	}
	return swagger, nil
}
