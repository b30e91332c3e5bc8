package cmd

import (
	"context"
	"log/slog"
	"os"

	httpadapter "ordermanagement/internal/adapters/in/http"
	"ordermanagement/internal/adapters/out/postgres/orderrepo"
	"ordermanagement/internal/adapters/rabbitmq"
	"ordermanagement/internal/core/application/usecases/commands"
	"ordermanagement/internal/core/application/usecases/queries"
	"ordermanagement/internal/core/ports"
	"ordermanagement/internal/jobs"
	"ordermanagement/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config    Config
	gormDB    *gorm.DB
	logger    *slog.Logger
	registry  *prometheus.Registry
	orderRepo ports.OrderRepository
	publisher *rabbitmq.Publisher
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger, registry *prometheus.Registry) *CompositionRoot {
	return &CompositionRoot{
		config:    config,
		gormDB:    gormDB,
		logger:    logger,
		registry:  registry,
		orderRepo: orderrepo.NewGormOrderRepository(gormDB),
	}
}

func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

// Publisher returns the shared broker publisher, creating it on first use.
func (c *CompositionRoot) Publisher() *rabbitmq.Publisher {
	if c.publisher == nil {
		c.publisher = rabbitmq.NewPublisher(c.config.Broker(), c.logger)
	}
	return c.publisher
}

// Close releases broker resources held by the root.
func (c *CompositionRoot) Close() error {
	if c.publisher == nil {
		return nil
	}
	return c.publisher.Close()
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderRepo, c.Publisher(), c.config.OrderQueue)
}

func (c *CompositionRoot) CreateProcessOrderCommandHandler() commands.ProcessOrderCommandHandler {
	return commands.NewProcessOrderCommandHandler(c.orderRepo, c.config.WorkerProcessingDelay)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.orderRepo)
}

func (c *CompositionRoot) CreateGetAllOrdersQueryHandler() queries.GetAllOrdersQueryHandler {
	return queries.NewGetAllOrdersQueryHandler(c.orderRepo)
}

func (c *CompositionRoot) CreateGetStaleOrdersQueryHandler() queries.GetStaleOrdersQueryHandler {
	return queries.NewGetStaleOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetAllOrdersQueryHandler(),
		c.logger,
	)
}

func (c *CompositionRoot) CreateOrderProcessingWorker() *jobs.OrderProcessingWorker {
	source := rabbitmq.NewSource(c.config.Broker(), c.config.OrderQueue)
	var f jobs.MessageSource = FuncMessageSource(func(ctx context.Context) (jobs.Subscription, error) {
		sub, err := source.Subscribe(ctx)
		if err != nil {
			return nil, err
		}
		return sub, nil
	})

	return jobs.NewOrderProcessingWorker(
		f,
		c.CreateProcessOrderCommandHandler(),
		metrics.NewWorkerMetrics(c.registry),
		c.config.WorkerReconnectInterval,
		c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateGetStaleOrdersQueryHandler(),
		c.config.StaleOrderSchedule,
		c.config.StaleOrderThreshold,
		c.logger,
	)
}

// FuncMessageSource adapts rabbitmq.Source, whose Subscribe returns a
// concrete *rabbitmq.Subscription, to jobs.MessageSource.
type FuncMessageSource func(ctx context.Context) (jobs.Subscription, error)

func (f FuncMessageSource) Subscribe(ctx context.Context) (jobs.Subscription, error) {
	return f(ctx)
}

// NewLogger builds the JSON logger shared by every component of a binary.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
