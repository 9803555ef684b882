package domain

import (
	"time"
)

// DefaultMinimumStock is the threshold applied when a ledger entry is created
// without an explicit minimum.
const DefaultMinimumStock = 10

// StockLedgerEntry tracks the inventory position for a single product.
// Available and reserved stock are stored separately; total stock and the
// low-stock flag are derived.
type StockLedgerEntry struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name"`
	AvailableStock int       `json:"available_stock"`
	ReservedStock  int       `json:"reserved_stock"`
	MinimumStock   int       `json:"minimum_stock"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TotalStock returns available plus reserved stock.
func (e *StockLedgerEntry) TotalStock() int {
	return e.AvailableStock + e.ReservedStock
}

// IsLowStock reports whether available stock has fallen to or below the
// minimum. Reserved stock is already spoken for and does not count.
func (e *StockLedgerEntry) IsLowStock() bool {
	return e.AvailableStock <= e.MinimumStock
}
