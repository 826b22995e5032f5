package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	amqp "github.com/rabbitmq/amqp091-go"
)

// FluentTag is the tag audit events are posted under when a Fluentd
// forwarder is configured.
const FluentTag = "reservations.audit"

// Forwarder receives a copy of every audit event.  *fluent.Fluent
// satisfies it.
type Forwarder interface {
	Post(tag string, message interface{}) error
}

// AuditConsumer drains the audit queue into an append-only log file and,
// optionally, a Fluentd forwarder.
type AuditConsumer struct {
	url     string
	logPath string
	forward Forwarder
	log     *slog.Logger

	mu sync.Mutex
}

// NewAuditConsumer builds a consumer writing to logPath.  forward may be nil.
func NewAuditConsumer(url, logPath string, forward Forwarder, log *slog.Logger) *AuditConsumer {
	if log == nil {
		log = slog.Default()
	}
	if logPath == "" {
		logPath = filepath.Join("logs", "reservations.log")
	}
	return &AuditConsumer{url: url, logPath: logPath, forward: forward, log: log.With("component", "audit-consumer")}
}

// NewFluentForwarder connects to Fluentd at host:port.
func NewFluentForwarder(host string, port int) (*fluent.Fluent, error) {
	f, err := fluent.New(fluent.Config{
		FluentHost: host,
		FluentPort: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create fluentd client: %w", err)
	}
	return f, nil
}

// Run consumes until ctx is cancelled, redialing the broker with an
// exponential backoff capped at 30s.
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("failed to dial broker", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(AuditQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(AuditQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				requeue := retryable(err)
				c.log.Error("handle message failed", "error", err, "requeue", requeue)
				_ = d.Nack(false, requeue)
				if requeue && !sleep(ctx, time.Second) {
					return ctx.Err()
				}
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// ErrMalformed marks bodies that can never be recorded.  They are dropped;
// any other Handle error is requeued.
var ErrMalformed = errors.New("malformed audit message")

// Handle records one message body.  A Fluentd failure is logged but does
// not fail the message once the file line is written.
func (c *AuditConsumer) Handle(body []byte) error {
	var ev AuditEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ev.Event == "" {
		return fmt.Errorf("%w: missing event name", ErrMalformed)
	}

	c.mu.Lock()
	err := c.appendLine(ev)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if c.forward != nil {
		var data map[string]interface{}
		_ = json.Unmarshal(ev.Data, &data)
		msg := map[string]interface{}{
			"event":        ev.Event,
			"data":         data,
			"published_at": ev.PublishedAt,
		}
		if err := c.forward.Post(FluentTag, msg); err != nil {
			c.log.Warn("fluent forward failed", "event", ev.Event, "error", err)
		}
	}
	return nil
}

func retryable(err error) bool { return err != nil && !errors.Is(err, ErrMalformed) }

func (c *AuditConsumer) appendLine(ev AuditEvent) error {
	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return writeLine(f, ev)
}

func writeLine(w io.Writer, ev AuditEvent) error {
	data := string(ev.Data)
	if data == "" {
		data = "null"
	}
	_, err := fmt.Fprintf(w, "[%s] %s | %s\n", ev.PublishedAt, ev.Event, data)
	if err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
