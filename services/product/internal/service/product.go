package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/product/internal/domain"
	"github.com/avelis/shopworks/services/product/internal/event"
	"github.com/avelis/shopworks/services/product/internal/repository"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string
	Description   *string
	Price         int64
	StockQuantity int
	CategoryID    int64
	SupplierID    *int64
}

// UpdateProductInput holds the parameters for updating a product. All fields
// are required; this mirrors a full replace.
type UpdateProductInput struct {
	Name          string
	Description   *string
	Price         int64
	StockQuantity int
	CategoryID    int64
	SupplierID    *int64
}

// CreateProduct creates a new product and publishes a product.created event.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.StockQuantity < 0 {
		return nil, apperrors.InvalidInput("stock quantity must not be negative")
	}
	if input.CategoryID <= 0 {
		return nil, apperrors.InvalidInput("category id is required")
	}

	product := &domain.Product{
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		CategoryID:    input.CategoryID,
		SupplierID:    input.SupplierID,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, created); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.Int64("product_id", created.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", created.ID),
		slog.String("name", created.Name),
	)

	return created, nil
}

// GetProduct retrieves a product by its id.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns products with pagination.
func (s *ProductService) ListProducts(ctx context.Context, page, perPage int) ([]domain.Product, int, error) {
	products, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// ListProductsByCategory returns the products in a category with pagination.
func (s *ProductService) ListProductsByCategory(ctx context.Context, categoryID int64, page, perPage int) ([]domain.Product, int, error) {
	products, total, err := s.repo.ListByCategory(ctx, categoryID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list products by category: %w", err)
	}
	return products, total, nil
}

// UpdateProduct replaces a product's fields and publishes a product.updated
// event. When the stock quantity changed, it additionally publishes a
// product.stock_updated event carrying the old and new quantity.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input *UpdateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.StockQuantity < 0 {
		return nil, apperrors.InvalidInput("stock quantity must not be negative")
	}
	if input.CategoryID <= 0 {
		return nil, apperrors.InvalidInput("category id is required")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	oldQuantity := existing.StockQuantity

	product := &domain.Product{
		ID:            id,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		CategoryID:    input.CategoryID,
		SupplierID:    input.SupplierID,
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.Int64("product_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	if oldQuantity != updated.StockQuantity {
		if err := s.producer.PublishProductStockUpdated(ctx, updated.ID, oldQuantity, updated.StockQuantity); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish product.stock_updated event",
				slog.Int64("product_id", updated.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", updated.ID),
	)

	return updated, nil
}

// DeleteProduct removes a product and publishes a product.deleted event.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}
