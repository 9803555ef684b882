package repository

import (
	"context"

	"github.com/avelis/shopworks/services/inventory/internal/domain"
)

// StockRepository defines the interface for stock ledger persistence operations.
type StockRepository interface {
	// Create inserts a new ledger entry for a product.
	Create(ctx context.Context, entry *domain.StockLedgerEntry) (*domain.StockLedgerEntry, error)

	// GetByProduct retrieves the ledger entry for a product.
	GetByProduct(ctx context.Context, productID int64) (*domain.StockLedgerEntry, error)

	// List returns ledger entries with pagination.
	List(ctx context.Context, page, perPage int) ([]domain.StockLedgerEntry, int, error)

	// ListLowStock returns entries whose available stock is at or below the minimum.
	ListLowStock(ctx context.Context, page, perPage int) ([]domain.StockLedgerEntry, int, error)

	// Delete removes the ledger entry for a product. Movements are kept.
	Delete(ctx context.Context, productID int64) error

	// AdjustStock atomically applies a delta to available stock and records a
	// movement. Negative resulting stock is permitted.
	AdjustStock(ctx context.Context, productID int64, delta int, reason *string) (*domain.StockLedgerEntry, error)

	// Reserve atomically moves quantity from available to reserved stock if
	// enough is available, recording a movement and, when orderID is set, a
	// reservation row. It returns the updated entry and true on success, or
	// (nil, false, nil) when available stock is insufficient.
	Reserve(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, bool, error)

	// Release atomically moves quantity from reserved back to available stock
	// if enough is reserved, recording a movement and marking the matching
	// reservation row released when orderID is set. It returns the updated
	// entry and true on success, or (nil, false, nil) when reserved stock is
	// insufficient.
	Release(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, bool, error)

	// ActiveReservations returns the unreleased reservation rows for an order.
	ActiveReservations(ctx context.Context, orderID int64) ([]domain.OrderReservation, error)

	// ListMovements returns the newest movements for a product, up to limit.
	ListMovements(ctx context.Context, productID int64, limit int) ([]domain.StockMovement, error)
}
