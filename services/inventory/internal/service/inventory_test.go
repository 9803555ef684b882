package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/inventory/internal/domain"
)

// --- Mock StockRepository ---

type mockStockRepository struct {
	mock.Mock
}

func (m *mockStockRepository) Create(ctx context.Context, entry *domain.StockLedgerEntry) (*domain.StockLedgerEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockLedgerEntry), args.Error(1)
}

func (m *mockStockRepository) GetByProduct(ctx context.Context, productID int64) (*domain.StockLedgerEntry, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockLedgerEntry), args.Error(1)
}

func (m *mockStockRepository) List(ctx context.Context, page, perPage int) ([]domain.StockLedgerEntry, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]domain.StockLedgerEntry), args.Int(1), args.Error(2)
}

func (m *mockStockRepository) ListLowStock(ctx context.Context, page, perPage int) ([]domain.StockLedgerEntry, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]domain.StockLedgerEntry), args.Int(1), args.Error(2)
}

func (m *mockStockRepository) Delete(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *mockStockRepository) AdjustStock(ctx context.Context, productID int64, delta int, reason *string) (*domain.StockLedgerEntry, error) {
	args := m.Called(ctx, productID, delta, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockLedgerEntry), args.Error(1)
}

func (m *mockStockRepository) Reserve(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, bool, error) {
	args := m.Called(ctx, productID, quantity, orderID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.StockLedgerEntry), args.Bool(1), args.Error(2)
}

func (m *mockStockRepository) Release(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, bool, error) {
	args := m.Called(ctx, productID, quantity, orderID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.StockLedgerEntry), args.Bool(1), args.Error(2)
}

func (m *mockStockRepository) ActiveReservations(ctx context.Context, orderID int64) ([]domain.OrderReservation, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.OrderReservation), args.Error(1)
}

func (m *mockStockRepository) ListMovements(ctx context.Context, productID int64, limit int) ([]domain.StockMovement, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type publishedMovement struct {
	productID int64
	quantity  int
	orderID   *int64
}

// recordingPublisher captures published events so tests can assert on what
// the service emitted.
type recordingPublisher struct {
	reserved []publishedMovement
	released []publishedMovement
	lowStock []domain.StockLedgerEntry
}

func (p *recordingPublisher) PublishInventoryReserved(_ context.Context, productID int64, quantity int, orderID *int64) error {
	p.reserved = append(p.reserved, publishedMovement{productID, quantity, orderID})
	return nil
}

func (p *recordingPublisher) PublishInventoryReleased(_ context.Context, productID int64, quantity int, orderID *int64) error {
	p.released = append(p.released, publishedMovement{productID, quantity, orderID})
	return nil
}

func (p *recordingPublisher) PublishInventoryLowStock(_ context.Context, entry *domain.StockLedgerEntry) error {
	p.lowStock = append(p.lowStock, *entry)
	return nil
}

func newTestService(repo *mockStockRepository) (*InventoryService, *recordingPublisher) {
	events := &recordingPublisher{}
	return NewInventoryService(repo, events, newTestLogger()), events
}

func ledgerEntry(available, reserved, minimum int) *domain.StockLedgerEntry {
	return &domain.StockLedgerEntry{
		ID:             1,
		ProductID:      42,
		ProductName:    "Mechanical Keyboard",
		AvailableStock: available,
		ReservedStock:  reserved,
		MinimumStock:   minimum,
	}
}

// --- CreateEntry ---

func TestCreateEntry_Success(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	input := &domain.StockLedgerEntry{ProductID: 42, ProductName: "Mechanical Keyboard", AvailableStock: 100, MinimumStock: 5}
	repo.On("Create", ctx, input).Return(ledgerEntry(100, 0, 5), nil)

	created, err := svc.CreateEntry(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ProductID)
	assert.Equal(t, 100, created.AvailableStock)
	repo.AssertExpectations(t)
}

func TestCreateEntry_DefaultsMinimumStock(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	input := &domain.StockLedgerEntry{ProductID: 42, ProductName: "Mechanical Keyboard", AvailableStock: 100}
	repo.On("Create", ctx, mock.MatchedBy(func(e *domain.StockLedgerEntry) bool {
		return e.MinimumStock == domain.DefaultMinimumStock
	})).Return(ledgerEntry(100, 0, domain.DefaultMinimumStock), nil)

	_, err := svc.CreateEntry(ctx, input)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateEntry_ClearsReservedStock(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	input := &domain.StockLedgerEntry{ProductID: 42, ProductName: "Mechanical Keyboard", AvailableStock: 10, ReservedStock: 99}
	repo.On("Create", ctx, mock.MatchedBy(func(e *domain.StockLedgerEntry) bool {
		return e.ReservedStock == 0
	})).Return(ledgerEntry(10, 0, domain.DefaultMinimumStock), nil)

	_, err := svc.CreateEntry(ctx, input)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateEntry_Validation(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	cases := []*domain.StockLedgerEntry{
		{ProductName: "x", AvailableStock: 1},                  // missing product id
		{ProductID: 42, AvailableStock: 1},                     // missing name
		{ProductID: 42, ProductName: "x", AvailableStock: -1},  // negative stock
	}
	for _, c := range cases {
		_, err := svc.CreateEntry(ctx, c)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	repo.AssertNotCalled(t, "Create")
}

func TestCreateEntry_AlreadyExists(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	input := &domain.StockLedgerEntry{ProductID: 42, ProductName: "Mechanical Keyboard", AvailableStock: 100}
	repo.On("Create", ctx, mock.Anything).Return(nil, apperrors.ErrAlreadyExists)

	_, err := svc.CreateEntry(ctx, input)

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	repo.AssertExpectations(t)
}

// --- GetByProduct ---

func TestGetByProduct_Success(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	expected := ledgerEntry(100, 10, 10)
	repo.On("GetByProduct", ctx, int64(42)).Return(expected, nil)

	entry, err := svc.GetByProduct(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, expected, entry)
	assert.Equal(t, 110, entry.TotalStock())
	repo.AssertExpectations(t)
}

func TestGetByProduct_NotFound(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("GetByProduct", ctx, int64(999)).Return(nil, apperrors.ErrNotFound)

	entry, err := svc.GetByProduct(ctx, 999)

	assert.Nil(t, entry)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

// --- AdjustStock ---

func TestAdjustStock_Success(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("AdjustStock", ctx, int64(42), 50, (*string)(nil)).Return(ledgerEntry(150, 0, 10), nil)

	entry, err := svc.AdjustStock(ctx, 42, 50, nil)

	require.NoError(t, err)
	assert.Equal(t, 150, entry.AvailableStock)
	repo.AssertExpectations(t)
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)

	_, err := svc.AdjustStock(context.Background(), 42, 0, nil)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "AdjustStock")
}

func TestAdjustStock_NegativeDeltaMayGoNegative(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	reason := "shrinkage audit"
	repo.On("AdjustStock", ctx, int64(42), -120, &reason).Return(ledgerEntry(-20, 0, 10), nil)

	entry, err := svc.AdjustStock(ctx, 42, -120, &reason)

	require.NoError(t, err)
	assert.Equal(t, -20, entry.AvailableStock)
	repo.AssertExpectations(t)
}

func TestAdjustStock_NotFound(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("AdjustStock", ctx, int64(999), 5, (*string)(nil)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.AdjustStock(ctx, 999, 5, nil)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestAdjustStock_AlertsWhenAvailableAtOrBelowMinimum(t *testing.T) {
	repo := new(mockStockRepository)
	svc, events := newTestService(repo)
	ctx := context.Background()

	repo.On("AdjustStock", ctx, int64(42), -92, (*string)(nil)).Return(ledgerEntry(8, 0, 10), nil)

	_, err := svc.AdjustStock(ctx, 42, -92, nil)

	require.NoError(t, err)
	require.Len(t, events.lowStock, 1)
	assert.Equal(t, 8, events.lowStock[0].AvailableStock)
}

// --- Reserve ---

func TestReserve_Success(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	orderID := int64(7)
	repo.On("Reserve", ctx, int64(42), 3, &orderID).Return(ledgerEntry(97, 13, 10), true, nil)

	entry, err := svc.Reserve(ctx, 42, 3, &orderID)

	require.NoError(t, err)
	assert.Equal(t, 97, entry.AvailableStock)
	assert.Equal(t, 13, entry.ReservedStock)
	repo.AssertExpectations(t)
}

func TestReserve_Insufficient(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Reserve", ctx, int64(42), 500, (*int64)(nil)).Return(nil, false, nil)

	entry, err := svc.Reserve(ctx, 42, 500, nil)

	assert.Nil(t, entry)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	repo.AssertExpectations(t)
}

func TestReserve_InvalidQuantity(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)

	for _, qty := range []int{0, -3} {
		_, err := svc.Reserve(context.Background(), 42, qty, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	repo.AssertNotCalled(t, "Reserve")
}

func TestReserve_PublishesReservedEvent(t *testing.T) {
	repo := new(mockStockRepository)
	svc, events := newTestService(repo)
	ctx := context.Background()

	orderID := int64(7)
	repo.On("Reserve", ctx, int64(42), 3, &orderID).Return(ledgerEntry(97, 13, 10), true, nil)

	_, err := svc.Reserve(ctx, 42, 3, &orderID)

	require.NoError(t, err)
	require.Len(t, events.reserved, 1)
	assert.Equal(t, publishedMovement{productID: 42, quantity: 3, orderID: &orderID}, events.reserved[0])
	assert.Empty(t, events.lowStock)
}

func TestReserve_AlertsWhenAvailableDropsToMinimum(t *testing.T) {
	repo := new(mockStockRepository)
	svc, events := newTestService(repo)
	ctx := context.Background()

	// Reserving 95 of 100 leaves 5 available against a minimum of 10. The
	// large reserved bucket must not mask the depletion.
	orderID := int64(7)
	repo.On("Reserve", ctx, int64(42), 95, &orderID).Return(ledgerEntry(5, 95, 10), true, nil)

	_, err := svc.Reserve(ctx, 42, 95, &orderID)

	require.NoError(t, err)
	require.Len(t, events.lowStock, 1)
	assert.Equal(t, int64(42), events.lowStock[0].ProductID)
	assert.Equal(t, 5, events.lowStock[0].AvailableStock)
	assert.Equal(t, 10, events.lowStock[0].MinimumStock)
}

func TestReserve_NoAlertAboveMinimum(t *testing.T) {
	repo := new(mockStockRepository)
	svc, events := newTestService(repo)
	ctx := context.Background()

	repo.On("Reserve", ctx, int64(42), 3, (*int64)(nil)).Return(ledgerEntry(97, 13, 10), true, nil)

	_, err := svc.Reserve(ctx, 42, 3, nil)

	require.NoError(t, err)
	assert.Empty(t, events.lowStock)
}

func TestReserve_NotFound(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Reserve", ctx, int64(999), 1, (*int64)(nil)).Return(nil, false, apperrors.ErrNotFound)

	_, err := svc.Reserve(ctx, 999, 1, nil)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

// --- Release ---

func TestRelease_Success(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	orderID := int64(7)
	repo.On("Release", ctx, int64(42), 3, &orderID).Return(ledgerEntry(103, 7, 10), true, nil)

	entry, err := svc.Release(ctx, 42, 3, &orderID)

	require.NoError(t, err)
	assert.Equal(t, 103, entry.AvailableStock)
	assert.Equal(t, 7, entry.ReservedStock)
	repo.AssertExpectations(t)
}

func TestRelease_MoreThanReserved(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Release", ctx, int64(42), 50, (*int64)(nil)).Return(nil, false, nil)

	entry, err := svc.Release(ctx, 42, 50, nil)

	assert.Nil(t, entry)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	repo.AssertExpectations(t)
}

func TestRelease_PublishesReleasedEvent_NeverAlerts(t *testing.T) {
	repo := new(mockStockRepository)
	svc, events := newTestService(repo)
	ctx := context.Background()

	orderID := int64(7)
	// Available stays below the minimum after the release. Releases restore
	// stock, so no alert is published.
	repo.On("Release", ctx, int64(42), 2, &orderID).Return(ledgerEntry(4, 0, 10), true, nil)

	_, err := svc.Release(ctx, 42, 2, &orderID)

	require.NoError(t, err)
	require.Len(t, events.released, 1)
	assert.Equal(t, publishedMovement{productID: 42, quantity: 2, orderID: &orderID}, events.released[0])
	assert.Empty(t, events.lowStock)
}

// --- ReleaseOrderReservations ---

func TestReleaseOrderReservations_AllLines(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	orderID := int64(7)
	repo.On("ActiveReservations", ctx, orderID).Return([]domain.OrderReservation{
		{OrderID: 7, ProductID: 42, Quantity: 3},
		{OrderID: 7, ProductID: 43, Quantity: 1},
	}, nil)
	repo.On("Release", ctx, int64(42), 3, &orderID).Return(ledgerEntry(103, 7, 10), true, nil)
	repo.On("Release", ctx, int64(43), 1, &orderID).Return(ledgerEntry(5, 0, 10), true, nil)

	released, err := svc.ReleaseOrderReservations(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, 2, released)
	repo.AssertExpectations(t)
}

func TestReleaseOrderReservations_PartialFailureContinues(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	orderID := int64(7)
	repo.On("ActiveReservations", ctx, orderID).Return([]domain.OrderReservation{
		{OrderID: 7, ProductID: 42, Quantity: 3},
		{OrderID: 7, ProductID: 43, Quantity: 1},
	}, nil)
	repo.On("Release", ctx, int64(42), 3, &orderID).Return(nil, false, apperrors.ErrNotFound)
	repo.On("Release", ctx, int64(43), 1, &orderID).Return(ledgerEntry(5, 0, 10), true, nil)

	released, err := svc.ReleaseOrderReservations(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, 1, released)
	repo.AssertExpectations(t)
}

func TestReleaseOrderReservations_NoneRecorded(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("ActiveReservations", ctx, int64(8)).Return([]domain.OrderReservation{}, nil)

	released, err := svc.ReleaseOrderReservations(ctx, 8)

	require.NoError(t, err)
	assert.Equal(t, 0, released)
	repo.AssertNotCalled(t, "Release")
}

// --- ListMovements ---

func TestListMovements_DefaultsLimit(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("ListMovements", ctx, int64(42), 50).Return([]domain.StockMovement{
		{ProductID: 42, MovementType: domain.MovementReserved, Quantity: 3},
	}, nil)

	movements, err := svc.ListMovements(ctx, 42, 0)

	require.NoError(t, err)
	assert.Len(t, movements, 1)
	repo.AssertExpectations(t)
}

func TestListMovements_CapsLimit(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("ListMovements", ctx, int64(42), 50).Return([]domain.StockMovement{}, nil)

	_, err := svc.ListMovements(ctx, 42, 500)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// --- List / ListLowStock ---

func TestList_ClampsPagination(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("List", ctx, 1, 20).Return([]domain.StockLedgerEntry{}, 0, nil)

	_, _, err := svc.List(ctx, -1, 0)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListLowStock_Success(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	low := *ledgerEntry(2, 3, 10)
	repo.On("ListLowStock", ctx, 1, 20).Return([]domain.StockLedgerEntry{low}, 1, nil)

	entries, total, err := svc.ListLowStock(ctx, 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsLowStock())
	repo.AssertExpectations(t)
}

// --- DeleteEntry ---

func TestDeleteEntry_Success(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Delete", ctx, int64(42)).Return(nil)

	err := svc.DeleteEntry(ctx, 42)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	repo := new(mockStockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Delete", ctx, int64(999)).Return(apperrors.ErrNotFound)

	err := svc.DeleteEntry(ctx, 999)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}
