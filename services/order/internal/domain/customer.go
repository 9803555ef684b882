package domain

// Customer is a local replica of a customer record, kept in sync through
// customer.created and customer.updated events.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
