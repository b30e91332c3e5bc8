package jobs

import (
	"context"
	"log/slog"
	"time"

	"ordermanagement/internal/adapters/rabbitmq"
	"ordermanagement/internal/core/application/usecases/commands"
	"ordermanagement/internal/pkg/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultReconnectInterval is the fixed pause between reconnection attempts.
const DefaultReconnectInterval = 10 * time.Second

// Subscription is a live consumer on the order queue.
type Subscription interface {
	Deliveries() <-chan amqp.Delivery
	NotifyClose() <-chan *amqp.Error
	Close() error
}

// MessageSource opens subscriptions on the order queue. Failures wrap
// rabbitmq.ErrConnectionFailure.
type MessageSource interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// OrderProcessingWorker drains the order queue one message at a time.
//
// Each message is settled exactly once:
//   - undecodable body: Nack without requeue
//   - unknown order or already terminal order: Ack, no writes
//   - processed to Completed: Ack
//   - processing error: Nack without requeue
//
// Messages are never requeued; a rejected message is dropped.
type OrderProcessingWorker struct {
	source            MessageSource
	handler           commands.ProcessOrderCommandHandler
	metrics           *metrics.WorkerMetrics
	reconnectInterval time.Duration
	logger            *slog.Logger
	tracer            trace.Tracer
}

// NewOrderProcessingWorker creates a worker. A non-positive reconnectInterval
// falls back to DefaultReconnectInterval.
func NewOrderProcessingWorker(
	source MessageSource,
	handler commands.ProcessOrderCommandHandler,
	workerMetrics *metrics.WorkerMetrics,
	reconnectInterval time.Duration,
	logger *slog.Logger,
) *OrderProcessingWorker {
	if reconnectInterval <= 0 {
		reconnectInterval = DefaultReconnectInterval
	}

	return &OrderProcessingWorker{
		source:            source,
		handler:           handler,
		metrics:           workerMetrics,
		reconnectInterval: reconnectInterval,
		logger:            logger.With("component", "order_processing_worker"),
		tracer:            otel.Tracer("ordermanagement/internal/jobs"),
	}
}

// Run consumes until ctx is cancelled. If the broker cannot be reached on the
// first attempt Run returns the connection error; later connection losses are
// retried every reconnect interval. A message already being handled when ctx
// is cancelled is finished and settled before Run returns.
func (w *OrderProcessingWorker) Run(ctx context.Context) error {
	sub, err := w.source.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Order processing worker could not connect to broker", "error", err)
		return err
	}
	w.logger.InfoContext(ctx, "Order processing worker started")

	for {
		w.consume(ctx, sub)
		if closeErr := sub.Close(); closeErr != nil {
			w.logger.DebugContext(ctx, "Closing subscription failed", "error", closeErr)
		}

		if ctx.Err() != nil {
			w.logger.InfoContext(context.WithoutCancel(ctx), "Order processing worker stopped")
			return nil
		}

		sub = w.reconnect(ctx)
		if sub == nil {
			w.logger.InfoContext(context.WithoutCancel(ctx), "Order processing worker stopped")
			return nil
		}
	}
}

// consume handles deliveries until ctx is done or the subscription breaks.
func (w *OrderProcessingWorker) consume(ctx context.Context, sub Subscription) {
	deliveries := sub.Deliveries()
	closed := sub.NotifyClose()

	for {
		select {
		case <-ctx.Done():
			return
		case amqpErr, ok := <-closed:
			if ok && amqpErr != nil {
				w.logger.WarnContext(ctx, "Broker channel closed", "error", amqpErr)
			}
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.WarnContext(ctx, "Delivery stream ended")
				return
			}
			// Left unsettled, the broker redelivers it once the channel closes.
			if ctx.Err() != nil {
				return
			}
			w.handle(context.WithoutCancel(ctx), d)
		}
	}
}

// reconnect retries Subscribe at a fixed interval. It returns nil once ctx is done.
func (w *OrderProcessingWorker) reconnect(ctx context.Context) Subscription {
	ticker := time.NewTicker(w.reconnectInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		w.metrics.Reconnects.Inc()
		sub, err := w.source.Subscribe(ctx)
		if err == nil {
			w.logger.InfoContext(ctx, "Reconnected to broker", "attempt", attempt)
			return sub
		}
		w.logger.WarnContext(ctx, "Reconnect attempt failed", "attempt", attempt, "error", err)
	}
}

func (w *OrderProcessingWorker) handle(ctx context.Context, d amqp.Delivery) {
	start := time.Now()
	ctx, span := w.tracer.Start(
		rabbitmq.ExtractTraceContext(ctx, d.Headers),
		"process order message",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.message.id", d.MessageId),
		),
	)
	defer span.End()

	logger := w.logger.With("messageId", d.MessageId, "deliveryTag", d.DeliveryTag, "redelivered", d.Redelivered)

	decoded, err := rabbitmq.DecodeOrder(d.Body)
	if err != nil {
		logger.ErrorContext(ctx, "Rejecting malformed message", "error", err)
		span.RecordError(err)
		w.reject(ctx, logger, d)
		w.metrics.Observe(metrics.OutcomeRejectedMalformed, time.Since(start))
		return
	}

	logger = logger.With("orderId", decoded.ID().String())
	cmd, err := commands.NewProcessOrderCommand(decoded.ID())
	if err != nil {
		logger.ErrorContext(ctx, "Rejecting message with invalid order id", "error", err)
		w.reject(ctx, logger, d)
		w.metrics.Observe(metrics.OutcomeRejectedMalformed, time.Since(start))
		return
	}

	outcome, err := w.handler.Handle(ctx, cmd)
	if err != nil {
		logger.ErrorContext(ctx, "Order processing failed, discarding message", "error", err)
		span.RecordError(err)
		w.reject(ctx, logger, d)
		w.metrics.Observe(metrics.OutcomeRejectedFailed, time.Since(start))
		return
	}

	switch outcome {
	case commands.OutcomeNotFound:
		logger.WarnContext(ctx, "Order not found, acknowledging")
	case commands.OutcomeSkipped:
		logger.InfoContext(ctx, "Order already finished, acknowledging")
	case commands.OutcomeCompleted:
		logger.InfoContext(ctx, "Order processed")
	}

	if err = d.Ack(false); err != nil {
		logger.ErrorContext(ctx, "Ack failed", "error", err)
	}
	w.metrics.Observe(outcome.String(), time.Since(start))
}

func (w *OrderProcessingWorker) reject(ctx context.Context, logger *slog.Logger, d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		logger.ErrorContext(ctx, "Nack failed", "error", err)
	}
}
