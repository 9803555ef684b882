// Package postgres implements the order service repositories backed by
// PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelis/shopworks/pkg/database"
	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/order/internal/domain"
)

const orderColumns = "o.id, o.order_number, o.customer_id, c.name, o.status, o.total_amount, o.shipping_address, o.shipping_city, o.shipping_country, o.created_at, o.updated_at"

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.CustomerName,
		&o.Status,
		&o.TotalAmount,
		&o.ShippingAddress,
		&o.ShippingCity,
		&o.ShippingCountry,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// nextOrderNumber assigns the next ORD<yyyymmdd><nnnn> number for today. The
// row lock on the latest number serializes concurrent order creation within
// the same day.
func nextOrderNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	prefix := "ORD" + time.Now().UTC().Format("20060102")

	var last string
	err := tx.QueryRow(ctx, `
		SELECT order_number FROM orders
		WHERE order_number LIKE $1 || '%'
		ORDER BY order_number DESC
		LIMIT 1
		FOR UPDATE`, prefix).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return prefix + "0001", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last order number: %w", err)
	}

	var seq int
	if _, err := fmt.Sscanf(last[len(prefix):], "%d", &seq); err != nil {
		return "", fmt.Errorf("parse order number %q: %w", last, err)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// Create inserts an order and its line items in a single transaction. The
// total is derived from the line items.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderNumber, err := nextOrderNumber(ctx, tx)
	if err != nil {
		return nil, err
	}

	var total int64
	for i := range order.Items {
		total += order.Items[i].TotalPrice()
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_id, status, total_amount, shipping_address, shipping_city, shipping_country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		orderNumber,
		order.CustomerID,
		domain.StatusPending,
		total,
		order.ShippingAddress,
		order.ShippingCity,
		order.ShippingCountry,
	).Scan(&orderID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperrors.NotFound("customer", fmt.Sprintf("%d", order.CustomerID))
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return r.GetByID(ctx, orderID)
}

// GetByID retrieves an order with its line items and the customer name.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}

	return order, nil
}

// List returns orders with pagination, newest first.
func (r *OrderRepository) List(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	query := `
		SELECT ` + orderColumns + `, count(*) OVER() AS total_count
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.id DESC
		LIMIT $1 OFFSET $2`

	return r.listOrders(ctx, query, pageArgs(page, perPage)...)
}

// ListByCustomer returns a customer's orders with pagination, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64, page, perPage int) ([]domain.Order, int, error) {
	query := `
		SELECT ` + orderColumns + `, count(*) OVER() AS total_count
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.customer_id = $3
		ORDER BY o.id DESC
		LIMIT $1 OFFSET $2`

	return r.listOrders(ctx, query, append(pageArgs(page, perPage), customerID)...)
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

func (r *OrderRepository) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders     []domain.Order
		orderIDs   []int64
		totalCount int
	)

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.CustomerID,
			&o.CustomerName,
			&o.Status,
			&o.TotalAmount,
			&o.ShippingAddress,
			&o.ShippingCity,
			&o.ShippingCountry,
			&o.CreatedAt,
			&o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if orders == nil {
		return []domain.Order{}, totalCount, nil
	}

	itemsByOrder, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	return orders, totalCount, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return items, nil
}

// UpdateStatus sets the order status. Transition validation happens in the
// service layer.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return nil, apperrors.NotFound("order", fmt.Sprintf("%d", id))
	}

	return r.GetByID(ctx, id)
}
