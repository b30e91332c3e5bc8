package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

var errPublishNotConfirmed = errors.New("broker did not confirm the message")

var _ ports.MessagePublisher = (*Publisher)(nil)

// Publisher sends orders as persistent JSON messages through the default
// exchange. It connects lazily and reconnects on the next Publish after a
// failure. A single channel in confirm mode is shared under a mutex, so
// Publish is safe for concurrent use.
type Publisher struct {
	url    string
	logger *slog.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	declared map[string]struct{}
}

// NewPublisher creates a publisher for the broker described by cfg.
func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	return &Publisher{
		url:      cfg.URL(),
		logger:   logger.With("component", "order_publisher"),
		declared: make(map[string]struct{}),
	}
}

// Publish declares queue as durable and publishes the order to it, waiting for
// the broker's confirmation. Failures wrap ports.ErrPublishFailure.
func (p *Publisher) Publish(ctx context.Context, aggregate *order.Order, queue string) error {
	body, err := EncodeOrder(aggregate)
	if err != nil {
		return fmt.Errorf("%w: encode order: %w", ports.ErrPublishFailure, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrPublishFailure, err)
	}

	if _, ok := p.declared[queue]; !ok {
		if err = declareQueue(ch, queue); err != nil {
			p.resetLocked()
			return fmt.Errorf("%w: declare queue %q: %w", ports.ErrPublishFailure, queue, err)
		}
		p.declared[queue] = struct{}{}
	}

	headers := amqp.Table{}
	InjectTraceContext(ctx, headers)

	confirmation, err := ch.PublishWithDeferredConfirmWithContext(ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    aggregate.ID().String(),
			ContentType:  ContentType,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Headers:      headers,
			Body:         body,
		})
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("%w: %w", ports.ErrPublishFailure, err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrPublishFailure, err)
	}
	if !acked {
		return fmt.Errorf("%w: %w", ports.ErrPublishFailure, errPublishNotConfirmed)
	}

	p.logger.DebugContext(ctx, "order published", "orderId", aggregate.ID().String(), "queue", queue)
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	p.channel, p.conn = nil, nil
	return err
}

func (p *Publisher) channelLocked() (*amqp.Channel, error) {
	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}
	p.resetLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailure, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %w", ErrConnectionFailure, err)
	}

	if err = ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: enable confirms: %w", ErrConnectionFailure, err)
	}

	p.conn, p.channel = conn, ch
	p.logger.Info("connected to broker")
	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.channel = nil, nil
	p.declared = make(map[string]struct{})
}
