package domain

import (
	"time"
)

// Product represents a catalog product. Category and supplier are index-based
// relations: only the foreign identifiers are stored. Price is in minor
// currency units (cents).
type Product struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	Price         int64      `json:"price"`
	StockQuantity int        `json:"stock_quantity"`
	CategoryID    int64      `json:"category_id"`
	CategoryName  string     `json:"category_name,omitempty"`
	SupplierID    *int64     `json:"supplier_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}
