package repository

import (
	"context"

	"github.com/avelis/shopworks/services/product/internal/domain"
)

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product and fills in its generated id.
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// GetByID retrieves a product by its identifier, including the category name.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// List returns products with pagination and the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Product, int, error)

	// ListByCategory returns the products in a category with pagination.
	ListByCategory(ctx context.Context, categoryID int64, page, perPage int) ([]domain.Product, int, error)

	// Update replaces the mutable fields of an existing product.
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// Delete removes a product by its identifier.
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

// SupplierRepository defines the interface for supplier persistence operations.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error)
	GetByID(ctx context.Context, id int64) (*domain.Supplier, error)
	List(ctx context.Context) ([]domain.Supplier, error)
	Update(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error)
	Delete(ctx context.Context, id int64) error
}
