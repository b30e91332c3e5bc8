package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/labstack/echo/v4"
)

// NewRequestValidator returns middleware that checks requests against the
// OpenAPI document. Paths the document does not describe pass through.
func NewRequestValidator(swagger *openapi3.T) (echo.MiddlewareFunc, error) {
	// Servers would pin the router to a host.
	swagger.Servers = nil

	router, err := gorillamux.NewRouter(swagger)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()

			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				return next(ctx)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
			}
			if validationErr := openapi3filter.ValidateRequest(req.Context(), input); validationErr != nil {
				return errorResponse(ctx, http.StatusBadRequest, "Invalid request: "+firstLine(validationErr.Error()))
			}

			return next(ctx)
		}
	}, nil
}

// RegisterOpenAPIDocument serves the parsed document at /openapi.json.
func RegisterOpenAPIDocument(e *echo.Echo, swagger *openapi3.T) {
	e.GET("/openapi.json", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, swagger)
	})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
