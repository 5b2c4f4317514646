// Package weather implements the Datamart-fed SOG weather commands: each
// one consumes SWOB-ML notifications from an AMQP queue, extracts one
// station quantity, and emits hourly forcing-file lines.
package weather

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/43ravens/ECget/internal/swob"
	"github.com/43ravens/ECget/pkg/amqp"
	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/metrics"
)

// Config carries the Datamart connection settings shared by the weather
// commands.
type Config struct {
	BrokerURL   string
	Exchange    string
	QueuesDir   string
	QueueExpiry time.Duration
	Lifetime    time.Duration
}

// processFunc turns one fetched SWOB-ML document into output lines.
type processFunc func(ctx context.Context, doc []byte) error

// command is the shared consumer wiring. Concrete commands differ only in
// their queue prefix, routing key, and document processing.
type command struct {
	name        string
	synopsis    string
	queuePrefix string
	routingKey  string

	cfg     Config
	fetcher *swob.Fetcher
	rec     *metrics.Recorder
	out     io.Writer
	log     *logger.Logger
	process processFunc
}

func (c *command) Name() string { return c.name }

func (c *command) Synopsis() string { return c.synopsis }

// Run consumes the command's queue until the lifetime expires, handling
// each Datamart notification as it arrives.
func (c *command) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
	lifetime := fs.Duration("lifetime", c.cfg.Lifetime, "queue consumer lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	queueName, err := amqp.QueueName(c.cfg.QueuesDir, c.queuePrefix)
	if err != nil {
		return err
	}

	consumer, err := amqp.NewConsumer(c.log, c.rec,
		amqp.WithURL(c.cfg.BrokerURL),
		amqp.WithExchange(c.cfg.Exchange),
		amqp.WithQueue(queueName, c.routingKey),
		amqp.WithLifetime(*lifetime),
		amqp.WithQueueExpiry(c.cfg.QueueExpiry),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return consumer.Run(ctx, c.handleMsg)
}

// handleMsg treats the notification body as the URL of a SWOB-ML document,
// fetches it, and hands it to the command's processor.
func (c *command) handleMsg(ctx context.Context, body []byte) error {
	url := strings.TrimSpace(string(body))
	c.log.Debug("datamart notification", logger.String("url", url))

	doc, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	return c.process(ctx, doc)
}
