package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"dispatchai-pro/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnInterval = 10 * time.Second

var errRabbitMQClosed = errors.New("rabbitmq publisher is closed")

// RabbitMQ publishes events to a durable topic exchange, routing key = event type
type RabbitMQ struct {
	url          string
	exchange     string
	log          logger.Logger
	interval     time.Duration
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
	closed       bool
	done         chan struct{}
	mu           sync.Mutex
}

// NewRabbitMQ dials the broker and declares the exchange
func NewRabbitMQ(url, exchange string, log logger.Logger) (*RabbitMQ, error) {
	r := newRabbitMQ(url, exchange, log)
	if err := r.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return r, nil
}

func newRabbitMQ(url, exchange string, log logger.Logger) *RabbitMQ {
	return &RabbitMQ{
		url:      url,
		exchange: exchange,
		log:      log,
		interval: reconnInterval,
		done:     make(chan struct{}),
	}
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return err
	}

	ch, err := r.openChannel(conn)
	if err != nil {
		conn.Close()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		ch.Close()
		conn.Close()
		return errRabbitMQClosed
	}
	r.conn = conn
	r.ch = ch
	return nil
}

func (r *RabbitMQ) openChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(r.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", r.exchange, err)
	}
	return ch, nil
}

// channel returns an open channel. A channel closed by a broker exception
// on a live connection is reopened in place; a dead connection starts the
// background reconnect loop.
func (r *RabbitMQ) channel() (*amqp.Channel, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, errRabbitMQClosed
	}
	conn, ch := r.conn, r.ch
	r.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		go r.reconnect()
		return nil, errors.New("rabbitmq connection is closed")
	}
	if ch != nil && !ch.IsClosed() {
		return ch, nil
	}

	fresh, err := r.openChannel(conn)
	if err != nil {
		go r.reconnect()
		return nil, fmt.Errorf("reopen rabbitmq channel: %w", err)
	}
	r.mu.Lock()
	r.ch = fresh
	r.mu.Unlock()
	r.log.Info("✅ rabbitmq channel reopened", "exchange", r.exchange)
	return fresh, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, event Event) error {
	ch, err := r.channel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, r.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (r *RabbitMQ) reconnect() {
	r.mu.Lock()
	if r.reconnecting || r.closed {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.reconnecting = false
		r.mu.Unlock()
	}()

	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-t.C:
		}
		if err := r.connect(); errors.Is(err, errRabbitMQClosed) {
			return
		} else if err != nil {
			r.log.Warn("rabbitmq failed to reconnect", "error", err)
			continue
		}
		r.log.Info("✅ rabbitmq reconnected", "exchange", r.exchange)
		return
	}
}

// IsAlive reports whether both the connection and channel are open
func (r *RabbitMQ) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil || r.conn.IsClosed() {
		return false
	}
	return r.ch != nil && !r.ch.IsClosed()
}

// Close stops any reconnect loop and closes the channel and connection
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.done)
	}
	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}
