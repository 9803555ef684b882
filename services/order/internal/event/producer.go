// Package event publishes and consumes Kafka events for the order service.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/order/internal/domain"
)

// Event types for order domain events.
const (
	TypeOrderCreated   = "order.created"
	TypeOrderUpdated   = "order.updated"
	TypeOrderCancelled = "order.cancelled"
)

// Kafka topics for order domain events.
var (
	TopicOrderCreated   = pkgkafka.Topic("order", "created")
	TopicOrderUpdated   = pkgkafka.Topic("order", "updated")
	TopicOrderCancelled = pkgkafka.Topic("order", "cancelled")
)

// Source identifier for events originating from the order service.
const SourceOrderService = "order-service"

// OrderItemData is one line of an order.created payload.
type OrderItemData struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

// OrderCreatedData is the payload of an order.created event.
type OrderCreatedData struct {
	OrderID     int64           `json:"orderId"`
	CustomerID  int64           `json:"customerId"`
	TotalAmount int64           `json:"totalAmount"`
	Items       []OrderItemData `json:"items"`
}

// OrderUpdatedData is the payload of an order.updated event.
type OrderUpdatedData struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// OrderCancelledData is the payload of an order.cancelled event.
type OrderCancelledData struct {
	OrderID int64 `json:"orderId"`
}

// Producer publishes order domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the order service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func orderKey(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

// PublishOrderCreated publishes an order.created event with the full line
// item breakdown so downstream services can reserve stock per line.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		Items:       make([]OrderItemData, 0, len(order.Items)),
	}
	for i := range order.Items {
		item := &order.Items[i]
		data.Items = append(data.Items, OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		})
	}

	event, err := pkgkafka.NewEvent(TypeOrderCreated, SourceOrderService, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, orderKey(order.ID), event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.Int64("order_id", order.ID),
		slog.Int("items", len(order.Items)),
	)

	return nil
}

// PublishOrderUpdated publishes an order.updated event carrying the new status.
func (p *Producer) PublishOrderUpdated(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	data := OrderUpdatedData{
		OrderID: orderID,
		Status:  string(status),
	}

	event, err := pkgkafka.NewEvent(TypeOrderUpdated, SourceOrderService, data)
	if err != nil {
		return fmt.Errorf("create order.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderUpdated, orderKey(orderID), event); err != nil {
		return fmt.Errorf("publish order.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.updated event",
		slog.Int64("order_id", orderID),
		slog.String("status", string(status)),
	)

	return nil
}

// PublishOrderCancelled publishes an order.cancelled event.
func (p *Producer) PublishOrderCancelled(ctx context.Context, orderID int64) error {
	event, err := pkgkafka.NewEvent(TypeOrderCancelled, SourceOrderService, OrderCancelledData{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("create order.cancelled event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCancelled, orderKey(orderID), event); err != nil {
		return fmt.Errorf("publish order.cancelled event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.cancelled event",
		slog.Int64("order_id", orderID),
	)

	return nil
}
