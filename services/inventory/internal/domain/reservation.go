package domain

import (
	"time"
)

// OrderReservation records stock held for a specific order line so the
// order.cancelled consumer knows exactly how much to release.
type OrderReservation struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Released  bool      `json:"released"`
	CreatedAt time.Time `json:"created_at"`
}
