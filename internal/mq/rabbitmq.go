// Package mq publishes booking lifecycle events to RabbitMQ so the trip
// service can keep its booked-seat view current.
package mq

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ is a thin connection wrapper with lazy reconnect-free semantics:
// a failed publish surfaces to the caller and the booking flow continues,
// since events are a projection aid and not the source of truth.
type RabbitMQ struct {
	url    string
	conn   *amqp.Connection
	ch     *amqp.Channel
	mu     sync.RWMutex
	closed bool
}

// Connect dials RabbitMQ with bounded retries.
func Connect(ctx context.Context, url string) (*RabbitMQ, error) {
	mq := &RabbitMQ{url: url}

	const maxRetries = 10
	delay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := mq.dial(); err != nil {
			log.Printf("[MQ] connect attempt %d/%d failed: %v", attempt, maxRetries, err)
			if attempt == maxRetries {
				return nil, fmt.Errorf("connect rabbitmq after %d attempts: %w", maxRetries, err)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * 1.5)
				if delay > 30*time.Second {
					delay = 30 * time.Second
				}
			}
			continue
		}
		log.Println("connected to RabbitMQ")
		return mq, nil
	}
	return nil, fmt.Errorf("unreachable")
}

func (mq *RabbitMQ) dial() error {
	conn, err := amqp.Dial(mq.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	mq.mu.Lock()
	mq.conn = conn
	mq.ch = ch
	mq.mu.Unlock()
	return nil
}

// DeclareQueue asserts a durable queue so events survive broker restarts.
func (mq *RabbitMQ) DeclareQueue(name string) error {
	mq.mu.RLock()
	ch := mq.ch
	mq.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}

// Publish sends a persistent JSON message to the named queue via the
// default exchange.
func (mq *RabbitMQ) Publish(ctx context.Context, queue string, body []byte) error {
	mq.mu.RLock()
	ch := mq.ch
	mq.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(
		publishCtx,
		"", // default exchange
		queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

func (mq *RabbitMQ) Close() {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if mq.closed {
		return
	}
	mq.closed = true

	if mq.ch != nil {
		_ = mq.ch.Close()
	}
	if mq.conn != nil {
		_ = mq.conn.Close()
	}
}
