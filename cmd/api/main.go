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
	"ordermanagement/internal/pkg/tracing"

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

	shutdownTracing, err := tracing.Init(context.Background(), configs.Tracing("order-api"))
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
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Error("Closing broker publisher failed", "error", closeErr)
		}
	}()

	e, err := cmd.NewWebServer(app.CreateHTTPServer(), registry)
	if err != nil {
		log.Fatalf("Error building web server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Order API listening", "port", configs.HTTPPort)
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); !errors.Is(startErr, http.ErrServerClosed) {
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
		logger.Error("Order API stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Order API stopped")
}
