package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultBuffer      = 256
	defaultDialTimeout = 3 * time.Second
	publishTimeout     = 5 * time.Second
	redialBackoff      = 5 * time.Second
)

// Publisher copies reservation events to the audit queue.  Publish only
// enqueues; a single goroutine started by Run owns the broker connection
// and drains the buffer.  Events are dropped when the buffer is full or
// the broker is unreachable.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	log         *slog.Logger
	now         func() time.Time

	pending chan []byte
	dropped atomic.Uint64

	conn     *amqp.Connection
	ch       *amqp.Channel
	nextDial time.Time
}

// NewPublisher returns a publisher for the given broker URL.  Nothing is
// sent until Run is started.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		url:         url,
		queue:       AuditQueue,
		dialTimeout: defaultDialTimeout,
		log:         log.With("component", "audit-publisher"),
		now:         time.Now,
		pending:     make(chan []byte, defaultBuffer),
	}
}

// Publish encodes the event and queues it without blocking.  Only encoding
// errors are returned; a full buffer drops the event.
func (p *Publisher) Publish(_ context.Context, name string, payload any) error {
	body, err := encode(name, payload, p.now())
	if err != nil {
		return err
	}
	select {
	case p.pending <- body:
	default:
		p.dropped.Add(1)
		p.log.Warn("audit buffer full, event dropped", "event", name)
	}
	return nil
}

// Dropped reports how many events never reached the broker.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// Run drains queued events until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	defer p.closeConn()
	for {
		select {
		case <-ctx.Done():
			return
		case body := <-p.pending:
			if err := p.send(ctx, body); err != nil {
				p.dropped.Add(1)
				p.log.Warn("audit event dropped", "error", err)
			}
		}
	}
}

func (p *Publisher) send(ctx context.Context, body []byte) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(pctx, "", p.queue, false, false, pub); err != nil {
		p.closeConn()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns the open channel, redialing at most once per backoff
// period so an unreachable broker does not stall the drain loop.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeConn()
	if p.now().Before(p.nextDial) {
		return nil, fmt.Errorf("broker unavailable, next dial at %s", p.nextDial.Format(time.RFC3339))
	}
	p.nextDial = p.now().Add(redialBackoff)

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.log.Info("connected to broker", "queue", p.queue)
	return ch, nil
}

func (p *Publisher) closeConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func encode(name string, payload any, at time.Time) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	return json.Marshal(AuditEvent{
		Event:       name,
		Data:        data,
		PublishedAt: at.UTC().Format(time.RFC3339),
	})
}
