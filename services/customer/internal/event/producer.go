// Package event publishes customer domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/customer/internal/domain"
)

// Event types for customer domain events.
const (
	TypeCustomerCreated = "customer.created"
	TypeCustomerUpdated = "customer.updated"
	TypeCustomerDeleted = "customer.deleted"
)

// Kafka topics for customer domain events.
var (
	TopicCustomerCreated = pkgkafka.Topic("customer", "created")
	TopicCustomerUpdated = pkgkafka.Topic("customer", "updated")
	TopicCustomerDeleted = pkgkafka.Topic("customer", "deleted")
)

// Source identifier for events originating from the customer service.
const SourceCustomerService = "customer-service"

// CustomerEventData is the payload for customer.created and customer.updated
// events. Name is the customer's full display name.
type CustomerEventData struct {
	CustomerID int64  `json:"customerId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// CustomerDeletedData is the payload for a customer.deleted event.
type CustomerDeletedData struct {
	CustomerID int64 `json:"customerId"`
}

// Producer publishes customer domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the customer service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func customerKey(customerID int64) string {
	return strconv.FormatInt(customerID, 10)
}

func customerData(c *domain.Customer) CustomerEventData {
	return CustomerEventData{
		CustomerID: c.ID,
		Name:       c.FullName(),
		Email:      c.Email,
	}
}

// PublishCustomerCreated publishes a customer.created event.
func (p *Producer) PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error {
	event, err := pkgkafka.NewEvent(TypeCustomerCreated, SourceCustomerService, customerData(customer))
	if err != nil {
		return fmt.Errorf("create customer.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCustomerCreated, customerKey(customer.ID), event); err != nil {
		return fmt.Errorf("publish customer.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published customer.created event",
		slog.Int64("customer_id", customer.ID),
	)

	return nil
}

// PublishCustomerUpdated publishes a customer.updated event.
func (p *Producer) PublishCustomerUpdated(ctx context.Context, customer *domain.Customer) error {
	event, err := pkgkafka.NewEvent(TypeCustomerUpdated, SourceCustomerService, customerData(customer))
	if err != nil {
		return fmt.Errorf("create customer.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCustomerUpdated, customerKey(customer.ID), event); err != nil {
		return fmt.Errorf("publish customer.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published customer.updated event",
		slog.Int64("customer_id", customer.ID),
	)

	return nil
}

// PublishCustomerDeleted publishes a customer.deleted event.
func (p *Producer) PublishCustomerDeleted(ctx context.Context, customerID int64) error {
	event, err := pkgkafka.NewEvent(TypeCustomerDeleted, SourceCustomerService, CustomerDeletedData{CustomerID: customerID})
	if err != nil {
		return fmt.Errorf("create customer.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCustomerDeleted, customerKey(customerID), event); err != nil {
		return fmt.Errorf("publish customer.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published customer.deleted event",
		slog.Int64("customer_id", customerID),
	)

	return nil
}
