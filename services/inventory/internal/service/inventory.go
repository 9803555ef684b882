package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/inventory/internal/domain"
	"github.com/avelis/shopworks/services/inventory/internal/repository"
)

// EventPublisher publishes inventory domain events. Satisfied by
// event.Producer.
type EventPublisher interface {
	PublishInventoryReserved(ctx context.Context, productID int64, quantity int, orderID *int64) error
	PublishInventoryReleased(ctx context.Context, productID int64, quantity int, orderID *int64) error
	PublishInventoryLowStock(ctx context.Context, entry *domain.StockLedgerEntry) error
}

// InventoryService implements the business logic for the stock ledger.
type InventoryService struct {
	repo     repository.StockRepository
	producer EventPublisher
	logger   *slog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(repo repository.StockRepository, producer EventPublisher, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateEntry creates a ledger entry for a product. The minimum stock
// threshold defaults when not supplied.
func (s *InventoryService) CreateEntry(ctx context.Context, entry *domain.StockLedgerEntry) (*domain.StockLedgerEntry, error) {
	if entry.ProductID <= 0 {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if entry.ProductName == "" {
		return nil, apperrors.InvalidInput("product_name is required")
	}
	if entry.AvailableStock < 0 {
		return nil, apperrors.InvalidInput("available_stock must be non-negative")
	}
	if entry.MinimumStock <= 0 {
		entry.MinimumStock = domain.DefaultMinimumStock
	}
	entry.ReservedStock = 0

	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}

	s.logger.InfoContext(ctx, "stock ledger entry created",
		slog.Int64("product_id", created.ProductID),
		slog.String("product_name", created.ProductName),
		slog.Int("available_stock", created.AvailableStock),
		slog.Int("minimum_stock", created.MinimumStock),
	)

	return created, nil
}

// GetByProduct retrieves the ledger entry for a product.
func (s *InventoryService) GetByProduct(ctx context.Context, productID int64) (*domain.StockLedgerEntry, error) {
	entry, err := s.repo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return entry, nil
}

// List returns ledger entries with pagination.
func (s *InventoryService) List(ctx context.Context, page, perPage int) ([]domain.StockLedgerEntry, int, error) {
	entries, total, err := s.repo.List(ctx, clampPage(page), clampPerPage(perPage))
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, total, nil
}

// ListLowStock returns entries whose available stock is at or below the minimum.
func (s *InventoryService) ListLowStock(ctx context.Context, page, perPage int) ([]domain.StockLedgerEntry, int, error) {
	entries, total, err := s.repo.ListLowStock(ctx, clampPage(page), clampPerPage(perPage))
	if err != nil {
		return nil, 0, fmt.Errorf("list low stock: %w", err)
	}
	return entries, total, nil
}

// DeleteEntry removes the ledger entry for a product. The movement history
// is deliberately kept.
func (s *InventoryService) DeleteEntry(ctx context.Context, productID int64) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}

	s.logger.InfoContext(ctx, "stock ledger entry deleted",
		slog.Int64("product_id", productID),
	)

	return nil
}

// AdjustStock applies a delta to available stock. The adjustment is
// unconditional: external corrections may drive available stock negative,
// and the audit log records what happened either way.
func (s *InventoryService) AdjustStock(ctx context.Context, productID int64, delta int, reason *string) (*domain.StockLedgerEntry, error) {
	if delta == 0 {
		return nil, apperrors.InvalidInput("delta must be non-zero")
	}

	entry, err := s.repo.AdjustStock(ctx, productID, delta, reason)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	s.alertIfLowStock(ctx, entry)

	s.logger.InfoContext(ctx, "stock adjusted",
		slog.Int64("product_id", productID),
		slog.Int("delta", delta),
		slog.Int("available_stock", entry.AvailableStock),
	)

	return entry, nil
}

// Reserve moves quantity from available to reserved stock and publishes an
// inventory.reserved event. Insufficient stock maps to ErrInsufficientStock.
func (s *InventoryService) Reserve(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}

	entry, ok, err := s.repo.Reserve(ctx, productID, quantity, orderID)
	if err != nil {
		return nil, fmt.Errorf("reserve stock: %w", err)
	}
	if !ok {
		return nil, apperrors.InsufficientStock(fmt.Sprintf("insufficient available stock for product %d", productID))
	}

	if err := s.producer.PublishInventoryReserved(ctx, productID, quantity, orderID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish inventory.reserved event",
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.alertIfLowStock(ctx, entry)

	s.logger.InfoContext(ctx, "stock reserved",
		slog.Int64("product_id", productID),
		slog.Int("quantity", quantity),
		slog.Int("available_stock", entry.AvailableStock),
		slog.Int("reserved_stock", entry.ReservedStock),
	)

	return entry, nil
}

// Release moves quantity from reserved back to available stock and publishes
// an inventory.released event. Releasing more than is reserved maps to
// ErrInsufficientStock.
func (s *InventoryService) Release(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}

	entry, ok, err := s.repo.Release(ctx, productID, quantity, orderID)
	if err != nil {
		return nil, fmt.Errorf("release stock: %w", err)
	}
	if !ok {
		return nil, apperrors.InsufficientStock(fmt.Sprintf("release exceeds reserved stock for product %d", productID))
	}

	if err := s.producer.PublishInventoryReleased(ctx, productID, quantity, orderID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish inventory.released event",
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "stock released",
		slog.Int64("product_id", productID),
		slog.Int("quantity", quantity),
		slog.Int("available_stock", entry.AvailableStock),
		slog.Int("reserved_stock", entry.ReservedStock),
	)

	return entry, nil
}

// ReleaseOrderReservations releases every unreleased reservation recorded
// for an order. Failures on individual lines are logged and skipped so one
// bad line does not block the rest of the cancellation.
func (s *InventoryService) ReleaseOrderReservations(ctx context.Context, orderID int64) (int, error) {
	reservations, err := s.repo.ActiveReservations(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("list order reservations: %w", err)
	}

	released := 0
	for i := range reservations {
		res := &reservations[i]
		if _, err := s.Release(ctx, res.ProductID, res.Quantity, &orderID); err != nil {
			s.logger.ErrorContext(ctx, "failed to release order reservation",
				slog.Int64("order_id", orderID),
				slog.Int64("product_id", res.ProductID),
				slog.Int("quantity", res.Quantity),
				slog.String("error", err.Error()),
			)
			continue
		}
		released++
	}

	if released > 0 {
		s.logger.InfoContext(ctx, "order reservations released",
			slog.Int64("order_id", orderID),
			slog.Int("released_count", released),
			slog.Int("total", len(reservations)),
		)
	}

	return released, nil
}

// ListMovements returns the newest movements for a product, up to limit
// (default 50).
func (s *InventoryService) ListMovements(ctx context.Context, productID int64, limit int) ([]domain.StockMovement, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	movements, err := s.repo.ListMovements(ctx, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	return movements, nil
}

func (s *InventoryService) alertIfLowStock(ctx context.Context, entry *domain.StockLedgerEntry) {
	if !entry.IsLowStock() {
		return
	}
	if err := s.producer.PublishInventoryLowStock(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish inventory.low_stock event",
			slog.Int64("product_id", entry.ProductID),
			slog.String("error", err.Error()),
		)
	}
}

func clampPage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

func clampPerPage(perPage int) int {
	if perPage <= 0 {
		return 20
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}
