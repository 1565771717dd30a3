// Package events publishes order lifecycle messages to RabbitMQ for
// downstream consumers (fulfilment, mail). The publisher is optional:
// with no broker configured every call is a no-op, so handlers never
// care whether messaging is wired.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/Samy440/ebookstore/models"
)

const exchange = "bookstore.events"

// Publisher owns one AMQP channel on a durable topic exchange. The zero
// value (and nil) is a disabled publisher.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials the broker and declares the exchange. An empty URL
// returns a disabled publisher rather than an error, so local runs and
// tests work without RabbitMQ.
func Connect(url string) (*Publisher, error) {
	if url == "" {
		return &Publisher{}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) enabled() bool { return p != nil && p.ch != nil }

// OrderCreated emits order.created with the full order snapshot.
// Publishing is fire-and-forget: a broker hiccup is logged and the
// request that placed the order never sees it.
func (p *Publisher) OrderCreated(order models.Order) {
	p.publish("order.created", order)
}

func (p *Publisher) publish(key string, payload interface{}) {
	if !p.enabled() {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("routing_key", key).Msg("failed to marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = p.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		log.Error().Err(err).Str("routing_key", key).Msg("failed to publish event")
	}
}

// Close releases the channel and connection. Safe on disabled publishers.
func (p *Publisher) Close() {
	if !p.enabled() {
		return
	}
	p.ch.Close()
	p.conn.Close()
}
