// Package service implements the business logic of the order service.
package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/order/internal/domain"
	"github.com/avelis/shopworks/services/order/internal/event"
	"github.com/avelis/shopworks/services/order/internal/repository"
)

// OrderService implements the business logic for order operations.
type OrderService struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	producer  *event.Producer
	logger    *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		customers: customers,
		producer:  producer,
		logger:    logger,
	}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   int64
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	CustomerID      int64
	ShippingAddress *string
	ShippingCity    *string
	ShippingCountry *string
	Items           []OrderItemInput
}

// CreateOrder persists a new pending order with its line items and publishes
// an order.created event. The customer must exist in the local replica.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.Order, error) {
	if input.CustomerID <= 0 {
		return nil, apperrors.InvalidInput("customer id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must have at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return nil, apperrors.InvalidInput("item product id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}
		if item.UnitPrice < 0 {
			return nil, apperrors.InvalidInput("item unit price must not be negative")
		}
	}

	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	order := &domain.Order{
		CustomerID:      input.CustomerID,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		ShippingCountry: input.ShippingCountry,
		Items:           make([]domain.OrderItem, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, created); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.Int64("order_id", created.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.Int64("order_id", created.ID),
		slog.String("order_number", created.OrderNumber),
		slog.Int64("customer_id", created.CustomerID),
		slog.Int64("total_amount", created.TotalAmount),
	)

	return created, nil
}

// GetOrder retrieves an order by its id.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// ListOrders returns orders with pagination.
func (s *OrderService) ListOrders(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.orders.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// ListOrdersByCustomer returns a customer's orders with pagination.
func (s *OrderService) ListOrdersByCustomer(ctx context.Context, customerID int64, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.orders.ListByCustomer(ctx, customerID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders by customer: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus moves an order to a new status after validating the transition
// and publishes an order.updated event. Moving to cancelled goes through
// CancelOrder so the cancellation event fires.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}
	if status == domain.StatusCancelled {
		return s.CancelOrder(ctx, id)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot transition order from %s to %s", order.Status, status))
	}

	updated, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := s.producer.PublishOrderUpdated(ctx, updated.ID, updated.Status); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.updated event",
			slog.Int64("order_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.Int64("order_id", updated.ID),
		slog.String("status", string(updated.Status)),
	)

	return updated, nil
}

// CancelOrder cancels an order and publishes an order.cancelled event so the
// inventory service releases any recorded reservations.
func (s *OrderService) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for cancellation: %w", err)
	}

	if !order.Status.CanTransitionTo(domain.StatusCancelled) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot cancel order in status %s", order.Status))
	}

	cancelled, err := s.orders.UpdateStatus(ctx, id, domain.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	if err := s.producer.PublishOrderCancelled(ctx, cancelled.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.cancelled event",
			slog.Int64("order_id", cancelled.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order cancelled",
		slog.Int64("order_id", cancelled.ID),
	)

	return cancelled, nil
}
