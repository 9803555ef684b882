// Package http contains the HTTP handlers and router for the basket service.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelis/shopworks/pkg/httputil"
	"github.com/avelis/shopworks/pkg/validator"
	"github.com/avelis/shopworks/services/basket/internal/domain"
	"github.com/avelis/shopworks/services/basket/internal/service"
)

// BasketHandler handles HTTP requests for basket endpoints.
type BasketHandler struct {
	service *service.BasketService
	logger  *slog.Logger
}

// NewBasketHandler creates a new basket HTTP handler.
func NewBasketHandler(svc *service.BasketService, logger *slog.Logger) *BasketHandler {
	return &BasketHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding a line.
type AddItemRequest struct {
	ProductID   int64   `json:"product_id" validate:"required,gt=0"`
	ProductName string  `json:"product_name" validate:"required,min=1,max=255"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice   int64   `json:"unit_price" validate:"gte=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=500"`
}

// UpdateQuantityRequest is the JSON request body for a quantity change.
// A quantity of zero removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// BasketResponse is the JSON representation of a basket, with the total
// computed from the lines.
type BasketResponse struct {
	CustomerID int64               `json:"customer_id"`
	Items      []domain.BasketItem `json:"items"`
	TotalPrice int64               `json:"total_price"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func toResponse(basket *domain.Basket) BasketResponse {
	items := basket.Items
	if items == nil {
		items = []domain.BasketItem{}
	}
	return BasketResponse{
		CustomerID: basket.CustomerID,
		Items:      items,
		TotalPrice: basket.TotalPrice(),
		UpdatedAt:  basket.UpdatedAt,
	}
}

// Get handles GET /api/v1/baskets/{customerId}
func (h *BasketHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, ok := httputil.ParseID(w, chi.URLParam(r, "customerId"))
	if !ok {
		return
	}

	basket, err := h.service.GetBasket(r.Context(), customerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toResponse(basket)})
}

// AddItem handles POST /api/v1/baskets/{customerId}/items
func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID, ok := httputil.ParseID(w, chi.URLParam(r, "customerId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	basket, err := h.service.AddItem(r.Context(), customerID, service.AddItemInput{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toResponse(basket)})
}

// UpdateItemQuantity handles PUT /api/v1/baskets/{customerId}/items/{productId}
func (h *BasketHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	customerID, ok := httputil.ParseID(w, chi.URLParam(r, "customerId"))
	if !ok {
		return
	}
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	basket, err := h.service.UpdateItemQuantity(r.Context(), customerID, productID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toResponse(basket)})
}

// RemoveItem handles DELETE /api/v1/baskets/{customerId}/items/{productId}
func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID, ok := httputil.ParseID(w, chi.URLParam(r, "customerId"))
	if !ok {
		return
	}
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	basket, err := h.service.RemoveItem(r.Context(), customerID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toResponse(basket)})
}

// Clear handles DELETE /api/v1/baskets/{customerId}
func (h *BasketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	customerID, ok := httputil.ParseID(w, chi.URLParam(r, "customerId"))
	if !ok {
		return
	}

	if err := h.service.ClearBasket(r.Context(), customerID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/v1/baskets/{customerId}/checkout
func (h *BasketHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID, ok := httputil.ParseID(w, chi.URLParam(r, "customerId"))
	if !ok {
		return
	}

	if err := h.service.Checkout(r.Context(), customerID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
