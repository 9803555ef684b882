package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order lifecycle states.
const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// validTransitions maps each status to the states it may move to. Delivered
// and cancelled are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status may move to the target state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Order is a customer order with its line items. TotalAmount and the item
// prices are in minor currency units.
type Order struct {
	ID              int64       `json:"id"`
	OrderNumber     string      `json:"order_number"`
	CustomerID      int64       `json:"customer_id"`
	CustomerName    string      `json:"customer_name,omitempty"`
	Status          OrderStatus `json:"status"`
	TotalAmount     int64       `json:"total_amount"`
	ShippingAddress *string     `json:"shipping_address,omitempty"`
	ShippingCity    *string     `json:"shipping_city,omitempty"`
	ShippingCountry *string     `json:"shipping_country,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty"`
	Items           []OrderItem `json:"items"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// TotalPrice returns the line total in minor currency units.
func (i *OrderItem) TotalPrice() int64 {
	return int64(i.Quantity) * i.UnitPrice
}
