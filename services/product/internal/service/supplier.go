package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/product/internal/domain"
	"github.com/avelis/shopworks/services/product/internal/repository"
)

// SupplierService implements the business logic for supplier operations.
type SupplierService struct {
	repo   repository.SupplierRepository
	logger *slog.Logger
}

// NewSupplierService creates a new supplier service.
func NewSupplierService(repo repository.SupplierRepository, logger *slog.Logger) *SupplierService {
	return &SupplierService{
		repo:   repo,
		logger: logger,
	}
}

// CreateSupplier creates a new supplier.
func (s *SupplierService) CreateSupplier(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	if supplier.Name == "" {
		return nil, apperrors.InvalidInput("supplier name is required")
	}

	created, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}

	s.logger.InfoContext(ctx, "supplier created",
		slog.Int64("supplier_id", created.ID),
		slog.String("name", created.Name),
	)

	return created, nil
}

// GetSupplier retrieves a supplier by its id.
func (s *SupplierService) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier by id: %w", err)
	}
	return supplier, nil
}

// ListSuppliers returns all suppliers.
func (s *SupplierService) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// UpdateSupplier replaces a supplier's fields.
func (s *SupplierService) UpdateSupplier(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	if supplier.Name == "" {
		return nil, apperrors.InvalidInput("supplier name is required")
	}

	updated, err := s.repo.Update(ctx, supplier)
	if err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}

	s.logger.InfoContext(ctx, "supplier updated",
		slog.Int64("supplier_id", updated.ID),
	)

	return updated, nil
}

// DeleteSupplier removes a supplier.
func (s *SupplierService) DeleteSupplier(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}

	s.logger.InfoContext(ctx, "supplier deleted",
		slog.Int64("supplier_id", id),
	)

	return nil
}
