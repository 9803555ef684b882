package domain

import "time"

// Basket is a customer's shopping basket. Prices are in minor currency units
// (cents).
type Basket struct {
	CustomerID int64        `json:"customer_id"`
	Items      []BasketItem `json:"items"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// BasketItem is a single line in the basket.
type BasketItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   int64   `json:"unit_price"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// NewBasket returns an empty basket for the given customer.
func NewBasket(customerID int64) *Basket {
	return &Basket{
		CustomerID: customerID,
		Items:      []BasketItem{},
	}
}

// TotalPrice sums all line totals in cents.
func (b *Basket) TotalPrice() int64 {
	var total int64
	for _, item := range b.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units across all lines.
func (b *Basket) ItemCount() int {
	var count int
	for _, item := range b.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the line holding the given product, or
// -1 when the basket has no such line.
func (b *Basket) FindItemIndex(productID int64) int {
	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
