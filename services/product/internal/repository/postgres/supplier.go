package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelis/shopworks/pkg/database"
	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/product/internal/domain"
)

const supplierColumns = "id, name, contact_name, email, phone, address, created_at, updated_at"

// SupplierRepository implements repository.SupplierRepository using PostgreSQL.
type SupplierRepository struct {
	pool database.DBTX
}

// NewSupplierRepository creates a new PostgreSQL-backed supplier repository.
func NewSupplierRepository(pool database.DBTX) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

func scanSupplier(row pgx.Row) (*domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.ContactName,
		&s.Email,
		&s.Phone,
		&s.Address,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new supplier.
func (r *SupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	query := `
		INSERT INTO suppliers (name, contact_name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + supplierColumns

	created, err := scanSupplier(r.pool.QueryRow(ctx, query,
		supplier.Name,
		supplier.ContactName,
		supplier.Email,
		supplier.Phone,
		supplier.Address,
	))
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}

	return created, nil
}

// GetByID retrieves a supplier by id.
func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`

	supplier, err := scanSupplier(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("supplier", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	return supplier, nil
}

// List returns all suppliers ordered by name.
func (r *SupplierRepository) List(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.ContactName,
			&s.Email,
			&s.Phone,
			&s.Address,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan supplier row: %w", err)
		}
		suppliers = append(suppliers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supplier rows: %w", err)
	}

	if suppliers == nil {
		suppliers = []domain.Supplier{}
	}

	return suppliers, nil
}

// Update replaces the mutable fields of a supplier.
func (r *SupplierRepository) Update(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	query := `
		UPDATE suppliers
		SET name = $1, contact_name = $2, email = $3, phone = $4, address = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + supplierColumns

	updated, err := scanSupplier(r.pool.QueryRow(ctx, query,
		supplier.Name,
		supplier.ContactName,
		supplier.Email,
		supplier.Phone,
		supplier.Address,
		supplier.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("supplier", fmt.Sprintf("%d", supplier.ID))
		}
		return nil, fmt.Errorf("update supplier: %w", err)
	}

	return updated, nil
}

// Delete removes a supplier. Suppliers still referenced by products cannot
// be deleted.
func (r *SupplierRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.Conflict("supplier is referenced by existing products")
		}
		return fmt.Errorf("delete supplier: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("supplier", fmt.Sprintf("%d", id))
	}

	return nil
}
