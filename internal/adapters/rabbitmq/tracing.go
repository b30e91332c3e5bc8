package rabbitmq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/propagation"
)

const traceparentHeader = "traceparent"

// InjectTraceContext copies the W3C traceparent of ctx into headers.
func InjectTraceContext(ctx context.Context, headers amqp.Table) {
	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)

	if traceparent, ok := carrier[traceparentHeader]; ok {
		headers[traceparentHeader] = traceparent
	}
}

// ExtractTraceContext returns ctx carrying the remote span context found in
// headers, or ctx unchanged when there is none.
func ExtractTraceContext(ctx context.Context, headers amqp.Table) context.Context {
	traceparent, ok := headers[traceparentHeader].(string)
	if !ok || traceparent == "" {
		return ctx
	}

	carrier := propagation.MapCarrier{traceparentHeader: traceparent}
	return propagation.TraceContext{}.Extract(ctx, carrier)
}
