package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelis/shopworks/pkg/health"
	"github.com/avelis/shopworks/pkg/middleware"
	"github.com/avelis/shopworks/services/basket/internal/service"
)

// NewRouter creates a chi router with all basket service routes registered.
func NewRouter(
	basketService *service.BasketService,
	healthHandler *health.Handler,
	corsConfig middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("basket"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	basketHandler := NewBasketHandler(basketService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Route("/baskets", func(r chi.Router) {
			r.Get("/{customerId}", basketHandler.Get)
			r.Delete("/{customerId}", basketHandler.Clear)
			r.Post("/{customerId}/items", basketHandler.AddItem)
			r.Put("/{customerId}/items/{productId}", basketHandler.UpdateItemQuantity)
			r.Delete("/{customerId}/items/{productId}", basketHandler.RemoveItem)
			r.Post("/{customerId}/checkout", basketHandler.Checkout)
		})
	})

	return r
}
