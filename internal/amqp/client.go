package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"expensetracker/internal/ledger"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures = 5
	openTimeout = 30 * time.Second
	maxBackoff  = 30 * time.Second
)

// Client publishes and consumes ledger events on a topic exchange.
// Change notices fan out to one exclusive queue per process; wipe requests
// go to a single durable queue read by the worker.
type Client struct {
	url          string
	exchangeName string
	queueName    string // durable wipe queue
	origin       string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		origin:       uuid.NewString(),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// Origin identifies this process in published change notices.
func (c *Client) Origin() string { return c.origin }

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := c.setup(channel); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	return nil
}

func (c *Client) setup(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		c.queueName,       // queue name
		RoutingLedgerWipe, // routing key
		c.exchangeName,    // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// ensureConnected redials when the broker dropped the connection.
func (c *Client) ensureConnected() error {
	c.mu.Lock()
	alive := c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed()
	c.mu.Unlock()
	if alive {
		return nil
	}
	slog.Warn("AMQP connection lost, reconnecting", "exchange", c.exchangeName)
	c.closeConn()
	return c.connect()
}

// PublishLedgerChanged announces a write to every process on the exchange.
func (c *Client) PublishLedgerChanged(ctx context.Context, kind ledger.ChangeKind, entityID int64) error {
	msg := NewLedgerChangedMessage(kind, entityID, c.origin)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, RoutingLedgerChanged, msg.ID, body, amqp091.Transient); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Published ledger change",
		"message_id", msg.ID,
		"kind", kind,
		"entity_id", entityID)
	return nil
}

// PublishWipeRequest queues a logout cascade for the worker.
func (c *Client) PublishWipeRequest(ctx context.Context, reason string) error {
	msg := NewWipeRequestMessage(reason)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, RoutingLedgerWipe, msg.ID, body, amqp091.Persistent); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published wipe request",
		"message_id", msg.ID,
		"reason", reason,
		"queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey, messageID string, body []byte, mode uint8) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: circuit breaker is open", routingKey)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.ensureConnected(); err != nil {
		c.recordFailure()
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()

	err := ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: mode,
			MessageId:    messageID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()
	return nil
}

// ConsumeWipeRequests consumes the durable wipe queue. A failed handler
// rejects the message without requeueing: a partial cascade is not retried.
func (c *Client) ConsumeWipeRequests(ctx context.Context, handler func(context.Context, *WipeRequestMessage) error) error {
	ch, err := c.consumerChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming wipe requests", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := WipeRequestMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false)
				continue
			}

			slog.InfoContext(ctx, "Processing wipe request", "message_id", msg.ID, "reason", msg.Reason)

			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Wipe request failed", "error", err, "message_id", msg.ID)
				delivery.Nack(false, false)
				continue
			}

			delivery.Ack(false)
		}
	}
}

// ConsumeLedgerChanges binds an exclusive, server-named queue to change
// notices and calls handler for every notice not published by this client.
func (c *Client) ConsumeLedgerChanges(ctx context.Context, handler func(*LedgerChangedMessage)) error {
	ch, err := c.consumerChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare change queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, RoutingLedgerChanged, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind change queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Listening for ledger changes", "queue", q.Name)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			msg, err := LedgerChangedMessageFromJSON(delivery.Body)
			if err != nil {
				slog.WarnContext(ctx, "Dropping malformed change notice", "error", err)
				continue
			}
			if msg.Origin == c.origin {
				continue
			}
			handler(msg)
		}
	}
}

// RunConsumer keeps consume running until ctx is done, reconnecting with
// exponential backoff when the broker goes away.
func (c *Client) RunConsumer(ctx context.Context, name string, consume func(context.Context) error) error {
	attempt := 0
	for {
		start := time.Now()
		err := consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(start) > maxBackoff {
			attempt = 0
		}
		delay := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "Consumer stopped, retrying",
			"consumer", name,
			"error", err,
			"connection_error", isConnectionError(err),
			"retry_in", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) consumerChannel() (*amqp091.Channel, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}
	return ch, nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection closed", "eof", "broken pipe", "use of closed network connection", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
