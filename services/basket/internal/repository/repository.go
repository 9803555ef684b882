// Package repository defines the persistence interfaces for the basket
// service.
package repository

import (
	"context"

	"github.com/avelis/shopworks/services/basket/internal/domain"
)

// BasketRepository defines the interface for basket persistence operations.
type BasketRepository interface {
	// Get retrieves a basket by customer id.
	Get(ctx context.Context, customerID int64) (*domain.Basket, error)

	// Save persists a basket, overwriting any existing basket for the
	// customer and resetting its TTL.
	Save(ctx context.Context, basket *domain.Basket) error

	// Delete removes the customer's basket. Deleting an absent basket is
	// not an error.
	Delete(ctx context.Context, customerID int64) error
}
