// Package postgres implements the customer repository backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelis/shopworks/pkg/database"
	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/customer/internal/domain"
)

const customerColumns = "id, first_name, last_name, email, phone, address, city, country, created_at, updated_at"

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.City,
		&c.Country,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new customer. Email addresses are unique.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	query := `
		INSERT INTO customers (first_name, last_name, email, phone, address, city, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + customerColumns

	created, err := scanCustomer(r.pool.QueryRow(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.City,
		customer.Country,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.AlreadyExists("customer", "email", customer.Email)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return created, nil
}

// GetByID retrieves a customer by id.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return customer, nil
}

// GetByEmail retrieves a customer by email address.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", email)
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}

	return customer, nil
}

// List returns customers with pagination.
func (r *CustomerRepository) List(ctx context.Context, page, perPage int) ([]domain.Customer, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	query := `
		SELECT ` + customerColumns + `, count(*) OVER() AS total_count
		FROM customers
		ORDER BY id ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var (
		customers  []domain.Customer
		totalCount int
	)

	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(
			&c.ID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Phone,
			&c.Address,
			&c.City,
			&c.Country,
			&c.CreatedAt,
			&c.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customer rows: %w", err)
	}

	if customers == nil {
		customers = []domain.Customer{}
	}

	return customers, totalCount, nil
}

// Update replaces the mutable fields of a customer and reads it back.
func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    address = $5, city = $6, country = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + customerColumns

	updated, err := scanCustomer(r.pool.QueryRow(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.City,
		customer.Country,
		customer.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", fmt.Sprintf("%d", customer.ID))
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.AlreadyExists("customer", "email", customer.Email)
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}

	return updated, nil
}

// Delete removes a customer by id.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", fmt.Sprintf("%d", id))
	}

	return nil
}
