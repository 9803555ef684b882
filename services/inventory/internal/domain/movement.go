package domain

import (
	"time"
)

// Stock movement types.
const (
	MovementStockIn    = "stock_in"
	MovementStockOut   = "stock_out"
	MovementReserved   = "reserved"
	MovementReleased   = "released"
	MovementAdjustment = "adjustment"
)

// StockMovement is one entry in the append-only audit log of stock changes.
// Quantity is always positive; the movement type carries the direction.
type StockMovement struct {
	ID           string    `json:"id"`
	ProductID    int64     `json:"product_id"`
	MovementType string    `json:"movement_type"`
	Quantity     int       `json:"quantity"`
	OrderID      *int64    `json:"order_id,omitempty"`
	Reason       *string   `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidMovementTypes returns the set of valid stock movement types.
func ValidMovementTypes() []string {
	return []string{MovementStockIn, MovementStockOut, MovementReserved, MovementReleased, MovementAdjustment}
}

// IsValidMovementType checks whether the given type is a valid stock movement type.
func IsValidMovementType(movementType string) bool {
	for _, t := range ValidMovementTypes() {
		if t == movementType {
			return true
		}
	}
	return false
}
