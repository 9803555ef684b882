package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelis/shopworks/pkg/health"
	"github.com/avelis/shopworks/pkg/middleware"
	"github.com/avelis/shopworks/services/inventory/internal/service"
)

// NewRouter creates a chi router with all inventory service routes registered.
func NewRouter(
	inventoryService *service.InventoryService,
	healthHandler *health.Handler,
	corsConfig middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("inventory"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Inventory API endpoints
	inventoryHandler := NewInventoryHandler(inventoryService, logger)

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/", inventoryHandler.CreateEntry)
		r.Get("/", inventoryHandler.List)
		r.Get("/low-stock", inventoryHandler.ListLowStock)

		r.Get("/{productId}", inventoryHandler.GetByProduct)
		r.Delete("/{productId}", inventoryHandler.DeleteEntry)
		r.Put("/{productId}/stock", inventoryHandler.AdjustStock)
		r.Post("/{productId}/reserve", inventoryHandler.Reserve)
		r.Post("/{productId}/release", inventoryHandler.Release)
		r.Get("/{productId}/movements", inventoryHandler.ListMovements)
	})

	return r
}
