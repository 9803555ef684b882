// Package repository defines the persistence interfaces for the customer
// service.
package repository

import (
	"context"

	"github.com/avelis/shopworks/services/customer/internal/domain"
)

// CustomerRepository provides access to customer records.
type CustomerRepository interface {
	// Create inserts a new customer and returns it with generated fields.
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)

	// GetByID retrieves a customer by its id.
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)

	// GetByEmail retrieves a customer by email address.
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// List returns customers with pagination and the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Customer, int, error)

	// Update replaces the mutable fields of a customer.
	Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)

	// Delete removes a customer by id.
	Delete(ctx context.Context, id int64) error
}
