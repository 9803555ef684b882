// Package repository defines the persistence interfaces for the order service.
package repository

import (
	"context"

	"github.com/avelis/shopworks/services/order/internal/domain"
)

// OrderRepository provides access to orders and their line items.
type OrderRepository interface {
	// Create inserts an order and its line items in one transaction and
	// assigns the order number.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)

	// GetByID retrieves an order with its items and customer name.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// List returns orders with pagination and the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Order, int, error)

	// ListByCustomer returns a customer's orders with pagination.
	ListByCustomer(ctx context.Context, customerID int64, page, perPage int) ([]domain.Order, int, error)

	// UpdateStatus sets the order status and returns the updated order.
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

// CustomerRepository maintains the local customer replica.
type CustomerRepository interface {
	// Upsert inserts or replaces a replica row.
	Upsert(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a replica row.
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}
