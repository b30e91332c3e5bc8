package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordermanagement/cmd"
	"ordermanagement/internal/adapters/out/postgres"
	"ordermanagement/internal/pkg/metrics"
	"ordermanagement/internal/pkg/tracing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	logger := cmd.NewLogger(configs.LogLevel)

	shutdownTracing, err := tracing.Init(context.Background(), configs.Tracing("order-worker"))
	if err != nil {
		log.Fatalf("Error initializing tracing: %v", err)
	}
	defer func() {
		if traceErr := shutdownTracing(context.Background()); traceErr != nil {
			logger.Error("Flushing traces failed", "error", traceErr)
		}
	}()

	gormDB, err := postgres.Open(configs.Database())
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := cmd.NewCompositionRoot(configs, gormDB, logger, registry)
	worker := app.CreateOrderProcessingWorker()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(ctx)
	})
	g.Go(func() error {
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.WorkerHTTPPort)); !errors.Is(startErr, http.ErrServerClosed) {
			return startErr
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err = g.Wait(); err != nil {
		logger.Error("Order worker stopped with error", "error", err)
		jobManager.StopAll()
		os.Exit(1)
	}
	logger.Info("Order worker stopped")
}
