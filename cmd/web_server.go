package cmd

import (
	"net/http"

	httpadapter "ordermanagement/internal/adapters/in/http"
	"ordermanagement/internal/generated/servers"
	"ordermanagement/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewWebServer builds the order API: CORS, request logging, a server span per
// request, metrics, OpenAPI validation, the API routes and the docs endpoints.
// The global tracer provider must be installed before calling it.
func NewWebServer(api servers.ServerInterface, registry *prometheus.Registry) (*echo.Echo, error) {
	swagger, err := servers.GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := httpadapter.NewRequestValidator(swagger)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware("order-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)))
	e.Use(metrics.NewServerMetrics(registry, "api").Middleware())
	e.Use(validator)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))
	httpadapter.RegisterOpenAPIDocument(e, swagger)
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.json")))

	servers.RegisterHandlers(e, api)

	return e, nil
}
