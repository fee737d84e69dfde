package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dinemart/internal/models"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const ordersExchange = "orders_topic"

// EventPublisher emits order lifecycle events. Publishing is best-effort: the
// coordinator logs failures and keeps going.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error
	Close() error
}

// OrderEvent is the wire shape for order lifecycle events.
type OrderEvent struct {
	Event          string             `json:"event"`
	OrderID        uuid.UUID          `json:"order_id"`
	RestaurantID   uuid.UUID          `json:"restaurant_id"`
	UserID         *uuid.UUID         `json:"user_id,omitempty"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	Total          int64              `json:"total"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

type amqpPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewAMQPPublisher connects to RabbitMQ and declares the orders exchange.
func NewAMQPPublisher(url string) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &amqpPublisher{conn: conn, channel: channel}, nil
}

func (p *amqpPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	event := OrderEvent{
		Event:        "order.created",
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		UserID:       order.UserID,
		Status:       order.Status,
		Total:        order.Invoice.Total,
		OccurredAt:   time.Now(),
	}
	return p.publish(ctx, "order.created", event)
}

func (p *amqpPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	event := OrderEvent{
		Event:          "order.status_changed",
		OrderID:        order.ID,
		RestaurantID:   order.RestaurantID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		Total:          order.Invoice.Total,
		OccurredAt:     time.Now(),
	}
	return p.publish(ctx, "order.status_changed", event)
}

func (p *amqpPublisher) publish(ctx context.Context, routingKey string, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, ordersExchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *amqpPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
