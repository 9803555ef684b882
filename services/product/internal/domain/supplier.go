package domain

import (
	"time"
)

// Supplier is a product source. Products reference it by id.
type Supplier struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	ContactName *string    `json:"contact_name,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
