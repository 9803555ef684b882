package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelis/shopworks/pkg/httputil"
	"github.com/avelis/shopworks/pkg/validator"
	"github.com/avelis/shopworks/services/inventory/internal/domain"
	"github.com/avelis/shopworks/services/inventory/internal/service"
)

// InventoryHandler handles HTTP requests for the stock ledger endpoints.
type InventoryHandler struct {
	service *service.InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory HTTP handler.
func NewInventoryHandler(svc *service.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateEntryRequest is the JSON request body for creating a ledger entry.
type CreateEntryRequest struct {
	ProductID      int64  `json:"product_id" validate:"required,gt=0"`
	ProductName    string `json:"product_name" validate:"required,min=1,max=255"`
	AvailableStock int    `json:"available_stock" validate:"gte=0"`
	MinimumStock   int    `json:"minimum_stock" validate:"omitempty,gte=0"`
}

// AdjustStockRequest is the JSON request body for adjusting available stock.
type AdjustStockRequest struct {
	Delta  int     `json:"delta" validate:"required"`
	Reason *string `json:"reason" validate:"omitempty,max=255"`
}

// ReservationRequest is the JSON request body for reserving or releasing stock.
type ReservationRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	OrderID  *int64 `json:"order_id" validate:"omitempty,gt=0"`
}

// --- Response DTOs ---

// StockEntryResponse is the JSON representation of a ledger entry, with the
// derived total and low-stock flag alongside the stored fields.
type StockEntryResponse struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name"`
	AvailableStock int       `json:"available_stock"`
	ReservedStock  int       `json:"reserved_stock"`
	MinimumStock   int       `json:"minimum_stock"`
	TotalStock     int       `json:"total_stock"`
	IsLowStock     bool      `json:"is_low_stock"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toEntryResponse(e *domain.StockLedgerEntry) StockEntryResponse {
	return StockEntryResponse{
		ID:             e.ID,
		ProductID:      e.ProductID,
		ProductName:    e.ProductName,
		AvailableStock: e.AvailableStock,
		ReservedStock:  e.ReservedStock,
		MinimumStock:   e.MinimumStock,
		TotalStock:     e.TotalStock(),
		IsLowStock:     e.IsLowStock(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toEntryResponses(entries []domain.StockLedgerEntry) []StockEntryResponse {
	out := make([]StockEntryResponse, len(entries))
	for i := range entries {
		out[i] = toEntryResponse(&entries[i])
	}
	return out
}

// --- Handlers ---

// CreateEntry handles POST /api/v1/inventory
func (h *InventoryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateEntryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	entry := &domain.StockLedgerEntry{
		ProductID:      req.ProductID,
		ProductName:    req.ProductName,
		AvailableStock: req.AvailableStock,
		MinimumStock:   req.MinimumStock,
	}

	created, err := h.service.CreateEntry(r.Context(), entry)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: toEntryResponse(created)})
}

// List handles GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := httputil.ParsePagination(r)

	entries, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse[StockEntryResponse](toEntryResponses(entries), total, page, perPage))
}

// GetByProduct handles GET /api/v1/inventory/{productId}
func (h *InventoryHandler) GetByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	entry, err := h.service.GetByProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toEntryResponse(entry)})
}

// AdjustStock handles PUT /api/v1/inventory/{productId}/stock
func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AdjustStockRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	entry, err := h.service.AdjustStock(r.Context(), productID, req.Delta, req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toEntryResponse(entry)})
}

// Reserve handles POST /api/v1/inventory/{productId}/reserve
func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ReservationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	entry, err := h.service.Reserve(r.Context(), productID, req.Quantity, req.OrderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toEntryResponse(entry)})
}

// Release handles POST /api/v1/inventory/{productId}/release
func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ReservationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	entry, err := h.service.Release(r.Context(), productID, req.Quantity, req.OrderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toEntryResponse(entry)})
}

// DeleteEntry handles DELETE /api/v1/inventory/{productId}
func (h *InventoryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(r.Context(), productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	page, perPage := httputil.ParsePagination(r)

	entries, total, err := h.service.ListLowStock(r.Context(), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse[StockEntryResponse](toEntryResponses(entries), total, page, perPage))
}

// ListMovements handles GET /api/v1/inventory/{productId}/movements
func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "limit must be a valid positive integer"},
			})
			return
		}
		limit = n
	}

	movements, err := h.service.ListMovements(r.Context(), productID, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: movements})
}
