package cmd_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ordermanagement/cmd"
	httpadapter "ordermanagement/internal/adapters/in/http"
	"ordermanagement/internal/adapters/out/postgres"
	"ordermanagement/internal/adapters/out/postgres/orderrepo"
	"ordermanagement/internal/adapters/rabbitmq"
	"ordermanagement/internal/core/application/usecases/commands"
	"ordermanagement/internal/core/application/usecases/queries"
	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/generated/servers"
	"ordermanagement/internal/jobs"
	"ordermanagement/internal/pkg/metrics"
	"ordermanagement/internal/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// inMemoryQueue stands in for the broker: Publish turns the order into the
// delivery the worker would receive, with the same body and headers.
type inMemoryQueue struct {
	mu     sync.Mutex
	tag    uint64
	acked  []uint64
	nacked []uint64

	deliveries chan amqp.Delivery
	closed     chan *amqp.Error
}

func newInMemoryQueue() *inMemoryQueue {
	return &inMemoryQueue{
		deliveries: make(chan amqp.Delivery, 8),
		closed:     make(chan *amqp.Error, 1),
	}
}

func (q *inMemoryQueue) Publish(ctx context.Context, o *order.Order, queue string) error {
	body, err := rabbitmq.EncodeOrder(o)
	if err != nil {
		return err
	}
	headers := amqp.Table{}
	rabbitmq.InjectTraceContext(ctx, headers)

	q.mu.Lock()
	q.tag++
	tag := q.tag
	q.mu.Unlock()

	q.deliveries <- amqp.Delivery{
		Acknowledger: q,
		DeliveryTag:  tag,
		RoutingKey:   queue,
		MessageId:    o.ID().String(),
		ContentType:  rabbitmq.ContentType,
		DeliveryMode: amqp.Persistent,
		Headers:      headers,
		Body:         body,
	}
	return nil
}

func (q *inMemoryQueue) Ack(tag uint64, _ bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, tag)
	return nil
}

func (q *inMemoryQueue) Nack(tag uint64, _ bool, _ bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nacked = append(q.nacked, tag)
	return nil
}

func (q *inMemoryQueue) Reject(tag uint64, requeue bool) error {
	return q.Nack(tag, false, requeue)
}

func (q *inMemoryQueue) settled() (acked, nacked int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.acked), len(q.nacked)
}

func (q *inMemoryQueue) Deliveries() <-chan amqp.Delivery { return q.deliveries }
func (q *inMemoryQueue) NotifyClose() <-chan *amqp.Error  { return q.closed }
func (q *inMemoryQueue) Close() error                     { return nil }

func TestOrderPipeline_CreateProcessAndRead(t *testing.T) {
	previousProvider := otel.GetTracerProvider()
	previousPropagator := otel.GetTextMapPropagator()
	recorder := tracetest.NewSpanRecorder()
	shutdownTracing, err := tracing.Init(context.Background(),
		tracing.Config{ServiceName: "order-pipeline-test", SampleRate: 1},
		sdktrace.WithSpanProcessor(recorder),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = shutdownTracing(context.Background())
		otel.SetTracerProvider(previousProvider)
		otel.SetTextMapPropagator(previousPropagator)
	})

	db, err := postgres.Open(postgres.Config{
		Driver: postgres.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "orders.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	})
	require.NoError(t, err)
	repo := orderrepo.NewGormOrderRepository(db)
	queue := newInMemoryQueue()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	web, err := cmd.NewWebServer(httpadapter.NewServer(
		commands.NewCreateOrderCommandHandler(repo, queue, rabbitmq.DefaultQueue),
		queries.NewGetOrderQueryHandler(repo),
		queries.NewGetAllOrdersQueryHandler(repo),
		logger,
	), prometheus.NewRegistry())
	require.NoError(t, err)

	worker := jobs.NewOrderProcessingWorker(
		cmd.FuncMessageSource(func(context.Context) (jobs.Subscription, error) { return queue, nil }),
		commands.NewProcessOrderCommandHandler(repo, 10*time.Millisecond),
		metrics.NewWorkerMetrics(prometheus.NewRegistry()),
		10*time.Millisecond,
		logger,
	)

	// Create through the API; the order is stored Pending and queued.
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"productName":"Widget","price":19.99}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	web.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created servers.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, servers.Pending, created.Status)
	require.Len(t, queue.deliveries, 1)

	// Drain the queue with the worker.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		acked, _ := queue.settled()
		return acked == 1
	}, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	_, nacked := queue.settled()
	assert.Zero(t, nacked)

	// Read the result back through the API.
	rec = httptest.NewRecorder()
	web.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+created.Id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var processed servers.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &processed))
	assert.Equal(t, created.Id, processed.Id)
	assert.Equal(t, servers.Completed, processed.Status)
	require.NotNil(t, processed.UpdatedDate)
	assert.False(t, processed.UpdatedDate.Before(processed.CreatedDate))

	// The worker span continues the trace of the creating request.
	var server, consumer sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		switch {
		case span.SpanKind() == trace.SpanKindServer && span.Name() == "POST /api/orders":
			server = span
		case span.SpanKind() == trace.SpanKindConsumer:
			consumer = span
		}
	}
	require.NotNil(t, server)
	require.NotNil(t, consumer)
	assert.Equal(t, server.SpanContext().TraceID(), consumer.SpanContext().TraceID())
	assert.Equal(t, server.SpanContext().SpanID(), consumer.Parent().SpanID())
}
