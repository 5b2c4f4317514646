package amqp

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/metrics"
)

// MessageHandler processes the body of one message received on the queue.
// A non-nil error rejects the message instead of acknowledging it.
type MessageHandler func(ctx context.Context, body []byte) error

// ConsumerOption configures Consumer.
type ConsumerOption func(*ConsumerConfig)

// ConsumerConfig holds consumer configuration for one queue binding on a
// topic exchange.
type ConsumerConfig struct {
	URL         string
	Exchange    string
	QueueName   string
	RoutingKey  string
	Lifetime    time.Duration
	QueueExpiry time.Duration
	Reconnect   time.Duration
}

// WithURL sets the broker URL.
func WithURL(url string) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.URL = url
	}
}

// WithExchange sets the topic exchange to bind against.
func WithExchange(name string) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.Exchange = name
	}
}

// WithQueue sets the queue name and the routing key it receives.
func WithQueue(name, routingKey string) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.QueueName = name
		c.RoutingKey = routingKey
	}
}

// WithLifetime bounds how long the consumer runs before shutting itself
// down.
func WithLifetime(d time.Duration) ConsumerOption {
	return func(c *ConsumerConfig) {
		if d > 0 {
			c.Lifetime = d
		}
	}
}

// WithQueueExpiry sets the x-expires argument sent when the queue has to be
// declared.
func WithQueueExpiry(d time.Duration) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.QueueExpiry = d
	}
}

// Consumer consumes one queue on a topic exchange until its lifetime
// expires. A dropped broker connection is re-established for the remainder
// of the lifetime.
type Consumer struct {
	cfg *ConsumerConfig
	log *logger.Logger
	rec *metrics.Recorder
}

// NewConsumer creates a new consumer. The metrics recorder may be nil.
func NewConsumer(log *logger.Logger, rec *metrics.Recorder, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		Lifetime:  15 * time.Minute,
		Reconnect: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("broker URL is required")
	}
	if cfg.Exchange == "" || cfg.QueueName == "" || cfg.RoutingKey == "" {
		return nil, fmt.Errorf("exchange, queue name and routing key are required")
	}

	return &Consumer{cfg: cfg, log: log, rec: rec}, nil
}

// Run consumes messages until the lifetime expires or ctx is cancelled,
// passing each message body to handler.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	deadline := time.Now().Add(c.cfg.Lifetime)
	c.log.Debug("consumer starting",
		logger.String("queue", c.cfg.QueueName),
		logger.Duration("lifetime", c.cfg.Lifetime))

	for {
		err := c.consume(ctx, handler, deadline)
		switch {
		case err == nil:
			c.log.Debug("consumer lifetime limit reached",
				logger.String("queue", c.cfg.QueueName))
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case time.Now().After(deadline):
			return err
		}

		c.log.Warn("broker connection lost, reconnecting",
			logger.Error(err),
			logger.String("queue", c.cfg.QueueName))
		select {
		case <-time.After(c.cfg.Reconnect):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// consume runs one connection until the deadline, the context, or the
// connection ends it. A nil return means the deadline was reached.
func (c *Consumer) consume(ctx context.Context, handler MessageHandler, deadline time.Time) error {
	conn, err := amqp091.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := c.bindQueue(conn)
	if err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.cfg.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.QueueName, err)
	}

	lifetime := time.NewTimer(time.Until(deadline))
	defer lifetime.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-lifetime.C:
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, handler, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, handler MessageHandler, d amqp091.Delivery) {
	if c.rec != nil {
		c.rec.RecordMessage(c.cfg.QueueName)
	}
	if err := handler(ctx, d.Body); err != nil {
		c.log.Error("message handler failed",
			logger.Error(err),
			logger.String("queue", c.cfg.QueueName))
		if c.rec != nil {
			c.rec.RecordFailure(c.cfg.QueueName)
		}
		_ = d.Reject(false)
		return
	}
	_ = d.Ack(false)
}

// bindQueue attaches to the queue if it already exists on the server, and
// otherwise declares it and binds it to the exchange and routing key.
func (c *Consumer) bindQueue(conn *amqp091.Connection) (*amqp091.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclarePassive(c.cfg.QueueName, false, false, false, false, nil); err == nil {
		c.log.Debug("queue exists on server", logger.String("queue", c.cfg.QueueName))
		return ch, nil
	}

	// A failed passive declare closes the channel; open a fresh one to
	// declare and bind the queue.
	ch, err = conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("reopen channel: %w", err)
	}

	var args amqp091.Table
	if c.cfg.QueueExpiry > 0 {
		args = amqp091.Table{"x-expires": int32(c.cfg.QueueExpiry / time.Millisecond)}
	}
	if _, err := ch.QueueDeclare(c.cfg.QueueName, false, false, false, false, args); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", c.cfg.QueueName, err)
	}
	c.log.Debug("queue declared on server", logger.String("queue", c.cfg.QueueName))

	if err := ch.QueueBind(c.cfg.QueueName, c.cfg.RoutingKey, c.cfg.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue %s to %s: %w", c.cfg.QueueName, c.cfg.Exchange, err)
	}
	c.log.Debug("queue binding created on server",
		logger.String("queue", c.cfg.QueueName),
		logger.String("routing_key", c.cfg.RoutingKey))
	return ch, nil
}
