// Package amqp moves advice jobs between the API and out-of-process
// workers over RabbitMQ.
//
// Requests are published to the configured queue; workers publish results
// to "<queue>.results", which the API consumes to update its job store.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-dashboard/internal/jobs"
)

// publishTimeout bounds a single publish.
const publishTimeout = 5 * time.Second

// ErrDeliveriesClosed is returned when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("message channel closed")

// channel is the subset of *amqp091.Channel used by Client.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

// Client publishes and consumes advice jobs.
// It implements jobs.Publisher and jobs.Consumer.
type Client struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	queueName    string
	log          zerolog.Logger
	now          func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient dials url and declares the exchange and both queues.
func NewClient(url, exchangeName, queueName string, log zerolog.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("NewClient: dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("NewClient: open channel: %w", err)
	}

	client, err := newClient(ch, exchangeName, queueName, log)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("NewClient: %w", err)
	}
	client.conn = conn
	return client, nil
}

func newClient(ch channel, exchangeName, queueName string, log zerolog.Logger) (*Client, error) {
	c := &Client{
		channel:      ch,
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          log,
		now:          time.Now,
	}
	if err := c.setup(); err != nil {
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}
	return c, nil
}

// ResultsQueue returns the name of the queue carrying finished jobs.
func (c *Client) ResultsQueue() string {
	return c.queueName + ".results"
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, name := range []string{c.queueName, c.ResultsQueue()} {
		if _, err := c.channel.QueueDeclare(
			name,  // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}

		// Routing key is the queue name for the direct exchange.
		if err := c.channel.QueueBind(name, name, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", name, err)
		}
	}
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    c.now(),
			Body:         body,
		},
	)
}

// PublishAdvice implements jobs.Publisher.
func (c *Client) PublishAdvice(ctx context.Context, job *jobs.AdviceJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = c.now()
	}

	body, err := NewAdviceRequestMessage(job).ToJSON()
	if err != nil {
		return fmt.Errorf("PublishAdvice: marshal message: %w", err)
	}
	if err := c.publish(ctx, c.queueName, body); err != nil {
		return fmt.Errorf("PublishAdvice: publish message: %w", err)
	}

	c.log.Info().
		Str("job_id", job.JobID).
		Str("exchange", c.exchangeName).
		Str("queue", c.queueName).
		Msg("Published advice job")
	return nil
}

// PublishResult sends a processed job to the results queue.
func (c *Client) PublishResult(ctx context.Context, job *jobs.AdviceJob) error {
	body, err := NewAdviceResultMessage(job).ToJSON()
	if err != nil {
		return fmt.Errorf("PublishResult: marshal message: %w", err)
	}
	if err := c.publish(ctx, c.ResultsQueue(), body); err != nil {
		return fmt.Errorf("PublishResult: publish message: %w", err)
	}
	return nil
}

// Start implements jobs.Consumer. Each request runs handler once and its
// outcome is published to the results queue. Start returns immediately;
// Stop ends consumption.
func (c *Client) Start(ctx context.Context, handler jobs.JobHandler) error {
	deliveries, err := c.consume(c.queueName)
	if err != nil {
		return fmt.Errorf("Start: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.consumeRequests(ctx, deliveries, handler); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Error().Err(err).Str("queue", c.queueName).Msg("Advice consumer stopped")
		}
	}()

	c.log.Info().Str("queue", c.queueName).Msg("Started consuming advice jobs")
	return nil
}

func (c *Client) consume(queue string) (<-chan amqp091.Delivery, error) {
	deliveries, err := c.channel.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("start consuming %s: %w", queue, err)
	}
	return deliveries, nil
}

func (c *Client) consumeRequests(ctx context.Context, deliveries <-chan amqp091.Delivery, handler jobs.JobHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.handleRequest(ctx, delivery, handler)
		}
	}
}

func (c *Client) handleRequest(ctx context.Context, delivery amqp091.Delivery, handler jobs.JobHandler) {
	msg, err := AdviceRequestMessageFromJSON(delivery.Body)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to unmarshal advice request")
		_ = delivery.Nack(false, false) // reject and don't requeue
		return
	}

	job := msg.Job()
	job.Status = jobs.JobStatusRunning
	started := c.now()
	job.StartedAt = &started

	// Jobs are not retried: a handler error is reported as a failed job.
	if err := handler(ctx, job); err != nil {
		job.Status = jobs.JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = jobs.JobStatusCompleted
	}
	completed := c.now()
	job.CompletedAt = &completed

	if err := c.PublishResult(ctx, job); err != nil {
		c.log.Error().Err(err).Str("job_id", job.JobID).Msg("Failed to publish advice result")
		_ = delivery.Nack(false, true) // requeue so the result is not lost
		return
	}

	_ = delivery.Ack(false)
	c.log.Info().Str("job_id", job.JobID).Str("status", string(job.Status)).Msg("Processed advice job")
}

// ConsumeResults applies finished jobs from the results queue to store
// until ctx is cancelled.
func (c *Client) ConsumeResults(ctx context.Context, store jobs.JobStore) error {
	deliveries, err := c.consume(c.ResultsQueue())
	if err != nil {
		return fmt.Errorf("ConsumeResults: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.handleResult(ctx, delivery, store)
		}
	}
}

func (c *Client) handleResult(ctx context.Context, delivery amqp091.Delivery, store jobs.JobStore) {
	msg, err := AdviceResultMessageFromJSON(delivery.Body)
	if err != nil || msg.JobID == "" {
		c.log.Error().Err(err).Msg("Failed to unmarshal advice result")
		_ = delivery.Nack(false, false)
		return
	}

	job, err := store.GetJob(ctx, msg.JobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		// Published by another API instance or before a restart.
		job = &jobs.AdviceJob{JobID: msg.JobID}
	} else if err != nil {
		c.log.Error().Err(err).Str("job_id", msg.JobID).Msg("Failed to load job")
		_ = delivery.Nack(false, true)
		return
	}

	msg.Apply(job)
	if err := store.SaveJob(ctx, job); err != nil {
		c.log.Error().Err(err).Str("job_id", msg.JobID).Msg("Failed to save job result")
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}

// Stop implements jobs.Consumer.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops consumption and closes the channel and connection.
func (c *Client) Close() error {
	_ = c.Stop(context.Background())
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

var _ jobs.Publisher = (*Client)(nil)
var _ jobs.Consumer = (*Client)(nil)
