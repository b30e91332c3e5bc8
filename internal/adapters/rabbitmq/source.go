package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	prefetchCount      = 1
	defaultDialTimeout = 10 * time.Second
)

// Source opens consuming subscriptions on one durable queue.
type Source struct {
	url   string
	queue string
}

// NewSource creates a source for queue on the broker described by cfg.
func NewSource(cfg Config, queue string) *Source {
	return &Source{
		url:   cfg.URL(),
		queue: queue,
	}
}

// Queue returns the consumed queue name.
func (s *Source) Queue() string {
	return s.queue
}

// Subscribe dials the broker, declares the queue, limits unacknowledged
// deliveries to one and starts a manual-ack consumer. Every failure wraps
// ErrConnectionFailure and leaves nothing open.
func (s *Source) Subscribe(ctx context.Context) (*Subscription, error) {
	conn, err := amqp.DialConfig(s.url, amqp.Config{
		Dial: amqp.DefaultDial(defaultDialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailure, err)
	}

	sub, err := s.consume(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailure, err)
	}

	return sub, nil
}

func (s *Source) consume(ctx context.Context, conn *amqp.Connection) (*Subscription, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err = declareQueue(ch, s.queue); err != nil {
		return nil, fmt.Errorf("declare queue %q: %w", s.queue, err)
	}

	if err = ch.Qos(prefetchCount, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	deliveries, err := ch.ConsumeWithContext(ctx,
		s.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume %q: %w", s.queue, err)
	}

	return &Subscription{
		conn:       conn,
		channel:    ch,
		deliveries: deliveries,
		closed:     closed,
	}, nil
}

// Subscription is one live consumer. Deliveries closes when the channel or
// connection goes away; NotifyClose reports why.
type Subscription struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	deliveries <-chan amqp.Delivery
	closed     <-chan *amqp.Error
}

// Deliveries returns the stream of unacknowledged deliveries.
func (s *Subscription) Deliveries() <-chan amqp.Delivery {
	return s.deliveries
}

// NotifyClose yields the error that closed the channel. It is closed without
// a value on a graceful shutdown.
func (s *Subscription) NotifyClose() <-chan *amqp.Error {
	return s.closed
}

// Close shuts the channel and connection. Unacknowledged deliveries return to
// the queue.
func (s *Subscription) Close() error {
	var err error
	if !s.channel.IsClosed() {
		err = s.channel.Close()
	}
	if !s.conn.IsClosed() {
		err = errors.Join(err, s.conn.Close())
	}
	return err
}
