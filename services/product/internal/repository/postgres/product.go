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

const productColumns = "p.id, p.name, p.description, p.price, p.stock_quantity, p.category_id, c.name, p.supplier_id, p.created_at, p.updated_at"

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&p.CategoryID,
		&p.CategoryName,
		&p.SupplierID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product and reads it back with the category name.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price, stock_quantity, category_id, supplier_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.StockQuantity,
		product.CategoryID,
		product.SupplierID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperrors.InvalidInput("category or supplier does not exist")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a product with its category name resolved.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// List returns products with pagination.
func (r *ProductRepository) List(ctx context.Context, page, perPage int) ([]domain.Product, int, error) {
	query := `
		SELECT ` + productColumns + `, count(*) OVER() AS total_count
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.id ASC
		LIMIT $1 OFFSET $2`

	return r.listProducts(ctx, query, pageArgs(page, perPage)...)
}

// ListByCategory returns the products in a category with pagination.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID int64, page, perPage int) ([]domain.Product, int, error) {
	query := `
		SELECT ` + productColumns + `, count(*) OVER() AS total_count
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.category_id = $3
		ORDER BY p.id ASC
		LIMIT $1 OFFSET $2`

	return r.listProducts(ctx, query, append(pageArgs(page, perPage), categoryID)...)
}

func pageArgs(page, perPage int) []any {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return []any{perPage, (page - 1) * perPage}
}

func (r *ProductRepository) listProducts(ctx context.Context, query string, args ...any) ([]domain.Product, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.StockQuantity,
			&p.CategoryID,
			&p.CategoryName,
			&p.SupplierID,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, totalCount, nil
}

// Update replaces the mutable fields of a product and reads it back.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock_quantity = $4,
		    category_id = $5, supplier_id = $6, updated_at = NOW()
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.StockQuantity,
		product.CategoryID,
		product.SupplierID,
		product.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperrors.InvalidInput("category or supplier does not exist")
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return nil, apperrors.NotFound("product", fmt.Sprintf("%d", product.ID))
	}

	return r.GetByID(ctx, product.ID)
}

// Delete removes a product by id.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", fmt.Sprintf("%d", id))
	}

	return nil
}
