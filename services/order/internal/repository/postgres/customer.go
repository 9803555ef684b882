package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avelis/shopworks/pkg/database"
	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/order/internal/domain"
)

// CustomerRepository maintains the local customer replica populated from
// customer events.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed replica repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Upsert inserts or replaces a replica row.
func (r *CustomerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`,
		customer.ID, customer.Name, customer.Email,
	)
	if err != nil {
		return fmt.Errorf("upsert customer replica: %w", err)
	}
	return nil
}

// GetByID retrieves a replica row.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, email FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("get customer replica: %w", err)
	}
	return &c, nil
}
