package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/order/internal/domain"
	"github.com/avelis/shopworks/services/order/internal/repository"
)

// Kafka topics consumed by the order service.
var (
	TopicCustomerCreated = pkgkafka.Topic("customer", "created")
	TopicCustomerUpdated = pkgkafka.Topic("customer", "updated")
)

// CustomerEventData is the payload of customer.created and customer.updated
// events.
type CustomerEventData struct {
	CustomerID int64  `json:"customerId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Consumer maintains the local customer replica from customer events.
type Consumer struct {
	customers repository.CustomerRepository
	logger    *slog.Logger
}

// NewConsumer creates a new event consumer for the order service.
func NewConsumer(customers repository.CustomerRepository, logger *slog.Logger) *Consumer {
	return &Consumer{
		customers: customers,
		logger:    logger,
	}
}

// HandleCustomerCreated upserts the replica row. Upserting makes redelivery
// and created/updated ordering races harmless.
func (c *Consumer) HandleCustomerCreated(ctx context.Context, event *pkgkafka.Event) error {
	return c.upsertFromEvent(ctx, event, "customer.created")
}

// HandleCustomerUpdated upserts the replica row with the new name and email.
func (c *Consumer) HandleCustomerUpdated(ctx context.Context, event *pkgkafka.Event) error {
	return c.upsertFromEvent(ctx, event, "customer.updated")
}

func (c *Consumer) upsertFromEvent(ctx context.Context, event *pkgkafka.Event, eventType string) error {
	var data CustomerEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", eventType, err)
	}

	customer := &domain.Customer{
		ID:    data.CustomerID,
		Name:  data.Name,
		Email: data.Email,
	}

	if err := c.customers.Upsert(ctx, customer); err != nil {
		return fmt.Errorf("handle %s: %w", eventType, err)
	}

	c.logger.InfoContext(ctx, "customer replica updated",
		slog.String("event_type", eventType),
		slog.Int64("customer_id", data.CustomerID),
	)

	return nil
}
