package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelis/shopworks/pkg/database"
	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/order/internal/domain"
)

func setupOrderRepo(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewOrderRepository(mock), mock
}

var orderCols = []string{
	"id", "order_number", "customer_id", "customer_name", "status", "total_amount",
	"shipping_address", "shipping_city", "shipping_country", "created_at", "updated_at",
}

var itemCols = []string{"id", "order_id", "product_id", "product_name", "quantity", "unit_price"}

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleOrder(status domain.OrderStatus) domain.Order {
	return domain.Order{
		ID:           11,
		OrderNumber:  "ORD202506010001",
		CustomerID:   7,
		CustomerName: "Ada Lovelace",
		Status:       status,
		TotalAmount:  44997,
		CreatedAt:    testTime,
	}
}

func orderRow(o domain.Order) *pgxmock.Rows {
	return pgxmock.NewRows(orderCols).
		AddRow(o.ID, o.OrderNumber, o.CustomerID, o.CustomerName, o.Status, o.TotalAmount,
			o.ShippingAddress, o.ShippingCity, o.ShippingCountry, o.CreatedAt, o.UpdatedAt)
}

func itemRows() *pgxmock.Rows {
	return pgxmock.NewRows(itemCols).
		AddRow(int64(1), int64(11), int64(42), "Mechanical Keyboard", 3, int64(14999))
}

// expectGetByID sets the two queries GetByID issues.
func expectGetByID(mock pgxmock.PgxPoolIface, o domain.Order) {
	mock.ExpectQuery("SELECT .+ FROM orders o").
		WithArgs(o.ID).
		WillReturnRows(orderRow(o))
	mock.ExpectQuery("SELECT .+ FROM order_items").
		WithArgs([]int64{o.ID}).
		WillReturnRows(itemRows())
}

func TestOrderRepository_Create_Success(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	o := sampleOrder(domain.StatusPending)

	mock.ExpectBegin()
	// No orders yet today: number generation starts at 0001.
	mock.ExpectQuery("SELECT order_number FROM orders").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), o.CustomerID, domain.StatusPending, int64(44997),
			(*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(o.ID))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(o.ID, int64(42), "Mechanical Keyboard", 3, int64(14999)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	expectGetByID(mock, o)

	input := domain.Order{
		CustomerID: 7,
		Items: []domain.OrderItem{
			{ProductID: 42, ProductName: "Mechanical Keyboard", Quantity: 3, UnitPrice: 14999},
		},
	}
	created, err := repo.Create(context.Background(), &input)
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, "ORD202506010001", created.OrderNumber)
	assert.Len(t, created.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_UnknownCustomer(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_number FROM orders").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), int64(999), domain.StatusPending, int64(14999),
			(*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	input := domain.Order{
		CustomerID: 999,
		Items: []domain.OrderItem{
			{ProductID: 42, ProductName: "Mechanical Keyboard", Quantity: 1, UnitPrice: 14999},
		},
	}
	created, err := repo.Create(context.Background(), &input)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_Success(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	o := sampleOrder(domain.StatusConfirmed)
	expectGetByID(mock, o)

	order, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, order.Status)
	assert.Equal(t, "Ada Lovelace", order.CustomerName)
	assert.Len(t, order.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM orders o").
		WithArgs(int64(999)).
		WillReturnError(pgx.ErrNoRows)

	order, err := repo.GetByID(context.Background(), 999)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_List_Success(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	o := sampleOrder(domain.StatusPending)
	rows := pgxmock.NewRows(append(orderCols, "total_count")).
		AddRow(o.ID, o.OrderNumber, o.CustomerID, o.CustomerName, o.Status, o.TotalAmount,
			o.ShippingAddress, o.ShippingCity, o.ShippingCountry, o.CreatedAt, o.UpdatedAt, 1)

	mock.ExpectQuery("SELECT .+ FROM orders o").
		WithArgs(20, 0).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT .+ FROM order_items").
		WithArgs([]int64{o.ID}).
		WillReturnRows(itemRows())

	orders, total, err := repo.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, total)
	assert.Len(t, orders[0].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_List_Empty(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM orders o").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(append(orderCols, "total_count")))

	orders, total, err := repo.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NotNil(t, orders)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	o := sampleOrder(domain.StatusPending)
	rows := pgxmock.NewRows(append(orderCols, "total_count")).
		AddRow(o.ID, o.OrderNumber, o.CustomerID, o.CustomerName, o.Status, o.TotalAmount,
			o.ShippingAddress, o.ShippingCity, o.ShippingCountry, o.CreatedAt, o.UpdatedAt, 1)

	mock.ExpectQuery("SELECT .+ FROM orders o").
		WithArgs(20, 0, o.CustomerID).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT .+ FROM order_items").
		WithArgs([]int64{o.ID}).
		WillReturnRows(itemRows())

	orders, total, err := repo.ListByCustomer(context.Background(), 7, 1, 20)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_Success(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	o := sampleOrder(domain.StatusConfirmed)
	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.StatusConfirmed, o.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectGetByID(mock, o)

	updated, err := repo.UpdateStatus(context.Background(), 11, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := setupOrderRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.StatusConfirmed, int64(999)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err := repo.UpdateStatus(context.Background(), 999, domain.StatusConfirmed)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
