// Package queue publishes order lifecycle events to the durable "orders"
// queue on RabbitMQ. Delivery is best-effort: callers log a failed publish
// and carry on, the primary operation never fails because of the queue.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const ordersQueue = "orders"

// Event types published by the order and delivery controllers.
const (
	EventOrderCreated        = "order.created"
	EventOrderManualAssigned = "order.manual_assigned"
	EventOrderAutoAssigned   = "order.auto_assigned"
	EventOrderAccepted       = "order.accepted"
	EventOrderCompleted      = "order.completed"
)

type Event struct {
	Type              string  `json:"type"`
	OrderID           uint    `json:"orderId,omitempty"`
	CustomerID        uint    `json:"customerId,omitempty"`
	RestaurantID      uint    `json:"restaurantId,omitempty"`
	DeliveryPartnerID uint    `json:"deliveryPartnerId,omitempty"`
	TotalPrice        float64 `json:"totalPrice,omitempty"`
	Timestamp         string  `json:"timestamp,omitempty"`
}

// Publisher is the outbound at-least-once notification sink.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type rabbitPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to RabbitMQ and declares the orders queue.
func Dial(url string) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(ordersQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &rabbitPublisher{conn: conn, ch: ch}, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(ctx, "", ordersQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *rabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Nop stands in when RABBITMQ_URL is not configured, and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
