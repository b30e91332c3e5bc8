// Package rabbitmq moves orders through a durable RabbitMQ queue: Publisher
// on the producer side, Source and Subscription on the consumer side, and the
// JSON message codec both sides share.
package rabbitmq

import (
	"errors"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultPort  = 5672
	DefaultVHost = "/"
	DefaultQueue = "order-queue"
)

var ErrConnectionFailure = errors.New("broker connection failure")

// Config holds the broker coordinates.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
}

// URL renders an amqp:// URI. Credentials and vhost are escaped.
func (c Config) URL() string {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 {
		port = DefaultPort
	}

	vhost := c.VHost
	if vhost == "" {
		vhost = DefaultVHost
	}

	return amqp.URI{
		Scheme:   "amqp",
		Host:     c.Host,
		Port:     port,
		Username: c.User,
		Password: c.Password,
		Vhost:    vhost,
	}.String()
}

// declareQueue declares name as durable, non-exclusive and non-auto-delete.
func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	return err
}
