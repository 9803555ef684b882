package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/pkg/httputil"
	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/inventory/internal/domain"
	"github.com/avelis/shopworks/services/inventory/internal/event"
	"github.com/avelis/shopworks/services/inventory/internal/service"
)

// ============================================================================
// Mock Repository
// ============================================================================

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderReservation), args.Error(1)
}

func (m *mockStockRepository) ListMovements(ctx context.Context, productID int64, limit int) ([]domain.StockMovement, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

// ============================================================================
// Test Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func testHandler(repo *mockStockRepository) *InventoryHandler {
	svc := service.NewInventoryService(repo, testEventProducer(), testLogger())
	return NewInventoryHandler(svc, testLogger())
}

// setupRouter creates a chi router matching the production route layout.
func setupRouter(handler *InventoryHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Post("/", handler.CreateEntry)
		r.Get("/", handler.List)
		r.Get("/low-stock", handler.ListLowStock)
		r.Get("/{productId}", handler.GetByProduct)
		r.Delete("/{productId}", handler.DeleteEntry)
		r.Put("/{productId}/stock", handler.AdjustStock)
		r.Post("/{productId}/reserve", handler.Reserve)
		r.Post("/{productId}/release", handler.Release)
		r.Get("/{productId}/movements", handler.ListMovements)
	})
	return r
}

// decodeResponse reads the response body into the httputil.Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func sampleEntry() *domain.StockLedgerEntry {
	return &domain.StockLedgerEntry{
		ID:             1,
		ProductID:      42,
		ProductName:    "Mechanical Keyboard",
		AvailableStock: 100,
		ReservedStock:  5,
		MinimumStock:   10,
	}
}

func doJSON(t *testing.T, router *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if raw, ok := body.([]byte); ok {
		reader = bytes.NewReader(raw)
	} else {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// POST /api/v1/inventory - CreateEntry
// ============================================================================

func TestCreateEntry_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.StockLedgerEntry")).
		Return(sampleEntry(), nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/", CreateEntryRequest{
		ProductID:      42,
		ProductName:    "Mechanical Keyboard",
		AvailableStock: 100,
		MinimumStock:   10,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	repo.AssertExpectations(t)
}

func TestCreateEntry_InvalidJSON(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/", []byte(`{invalid`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestCreateEntry_ValidationError_MissingProductID(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/", CreateEntryRequest{
		ProductName:    "Mechanical Keyboard",
		AvailableStock: 100,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "product_id")
}

func TestCreateEntry_Duplicate(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperrors.AlreadyExists("stock ledger entry", "product_id", "42"))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/", CreateEntryRequest{
		ProductID:      42,
		ProductName:    "Mechanical Keyboard",
		AvailableStock: 100,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
	repo.AssertExpectations(t)
}

// ============================================================================
// GET /api/v1/inventory/{productId} - GetByProduct
// ============================================================================

func TestGetByProduct_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("GetByProduct", mock.Anything, int64(42)).Return(sampleEntry(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertExpectations(t)
}

func TestGetByProduct_DerivedFields(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	entry := sampleEntry()
	entry.AvailableStock = 5
	entry.ReservedStock = 95
	repo.On("GetByProduct", mock.Anything, int64(42)).Return(entry, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var body StockEntryResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, 100, body.TotalStock)
	assert.True(t, body.IsLowStock)
}

func TestGetByProduct_NotFound(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("GetByProduct", mock.Anything, int64(999)).
		Return(nil, apperrors.NotFound("stock ledger entry", "999"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestGetByProduct_InvalidID(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
	repo.AssertNotCalled(t, "GetByProduct")
}

// ============================================================================
// GET /api/v1/inventory - List
// ============================================================================

func TestList_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("List", mock.Anything, 1, 20).
		Return([]domain.StockLedgerEntry{*sampleEntry()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp httputil.PaginatedResponse[StockEntryResponse]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.TotalCount)
	repo.AssertExpectations(t)
}

func TestList_PaginationParams(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("List", mock.Anything, 3, 50).
		Return([]domain.StockLedgerEntry{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/?page=3&per_page=50", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

// ============================================================================
// GET /api/v1/inventory/low-stock - ListLowStock
// ============================================================================

func TestListLowStock_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	low := sampleEntry()
	low.AvailableStock = 3
	low.ReservedStock = 2
	repo.On("ListLowStock", mock.Anything, 1, 20).
		Return([]domain.StockLedgerEntry{*low}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/low-stock", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp httputil.PaginatedResponse[StockEntryResponse]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.True(t, resp.Data[0].IsLowStock)
	assert.Equal(t, 5, resp.Data[0].TotalStock)
	repo.AssertExpectations(t)
}

// ============================================================================
// PUT /api/v1/inventory/{productId}/stock - AdjustStock
// ============================================================================

func TestAdjustStock_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	reason := "cycle count correction"
	updated := sampleEntry()
	updated.AvailableStock = 75
	repo.On("AdjustStock", mock.Anything, int64(42), -25, &reason).
		Return(updated, nil)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/inventory/42/stock", AdjustStockRequest{
		Delta:  -25,
		Reason: &reason,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertExpectations(t)
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	rec := doJSON(t, router, http.MethodPut, "/api/v1/inventory/42/stock", AdjustStockRequest{
		Delta: 0,
	})

	// "required" rejects the zero value before the service is reached.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "AdjustStock")
}

func TestAdjustStock_NotFound(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("AdjustStock", mock.Anything, int64(999), 10, (*string)(nil)).
		Return(nil, apperrors.NotFound("stock ledger entry", "999"))

	rec := doJSON(t, router, http.MethodPut, "/api/v1/inventory/999/stock", AdjustStockRequest{
		Delta: 10,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

// ============================================================================
// POST /api/v1/inventory/{productId}/reserve - Reserve
// ============================================================================

func TestReserve_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	orderID := int64(7)
	updated := sampleEntry()
	updated.AvailableStock = 97
	updated.ReservedStock = 8
	repo.On("Reserve", mock.Anything, int64(42), 3, &orderID).
		Return(updated, true, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/42/reserve", ReservationRequest{
		Quantity: 3,
		OrderID:  &orderID,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertExpectations(t)
}

func TestReserve_InsufficientStock(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("Reserve", mock.Anything, int64(42), 500, (*int64)(nil)).
		Return(nil, false, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/42/reserve", ReservationRequest{
		Quantity: 500,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
	repo.AssertExpectations(t)
}

func TestReserve_InvalidQuantity(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/42/reserve", ReservationRequest{
		Quantity: 0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Reserve")
}

// ============================================================================
// POST /api/v1/inventory/{productId}/release - Release
// ============================================================================

func TestRelease_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	updated := sampleEntry()
	updated.AvailableStock = 103
	updated.ReservedStock = 2
	repo.On("Release", mock.Anything, int64(42), 3, (*int64)(nil)).
		Return(updated, true, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/42/release", ReservationRequest{
		Quantity: 3,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertExpectations(t)
}

func TestRelease_MoreThanReserved(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("Release", mock.Anything, int64(42), 50, (*int64)(nil)).
		Return(nil, false, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/42/release", ReservationRequest{
		Quantity: 50,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
	repo.AssertExpectations(t)
}

// ============================================================================
// DELETE /api/v1/inventory/{productId} - DeleteEntry
// ============================================================================

func TestDeleteEntry_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("Delete", mock.Anything, int64(42)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/inventory/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("Delete", mock.Anything, int64(999)).
		Return(apperrors.NotFound("stock ledger entry", "999"))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/inventory/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

// ============================================================================
// GET /api/v1/inventory/{productId}/movements - ListMovements
// ============================================================================

func TestListMovements_Success(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	movements := []domain.StockMovement{
		{ID: "550e8400-e29b-41d4-a716-446655440001", ProductID: 42, MovementType: domain.MovementReserved, Quantity: 3},
		{ID: "550e8400-e29b-41d4-a716-446655440002", ProductID: 42, MovementType: domain.MovementStockIn, Quantity: 100},
	}
	repo.On("ListMovements", mock.Anything, int64(42), 50).Return(movements, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/42/movements", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertExpectations(t)
}

func TestListMovements_ExplicitLimit(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	repo.On("ListMovements", mock.Anything, int64(42), 5).
		Return([]domain.StockMovement{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/42/movements?limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestListMovements_InvalidLimit(t *testing.T) {
	repo := new(mockStockRepository)
	router := setupRouter(testHandler(repo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/42/movements?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
	repo.AssertNotCalled(t, "ListMovements")
}
