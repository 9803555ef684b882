package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/inventory/internal/domain"
)

// Kafka topics consumed by the inventory service.
var (
	TopicProductCreated      = pkgkafka.Topic("product", "created")
	TopicProductUpdated      = pkgkafka.Topic("product", "updated")
	TopicProductDeleted      = pkgkafka.Topic("product", "deleted")
	TopicProductStockUpdated = pkgkafka.Topic("product", "stock_updated")
	TopicOrderCreated        = pkgkafka.Topic("order", "created")
	TopicOrderCancelled      = pkgkafka.Topic("order", "cancelled")
)

// InventoryService defines the interface required by the event consumer.
type InventoryService interface {
	CreateEntry(ctx context.Context, entry *domain.StockLedgerEntry) (*domain.StockLedgerEntry, error)
	GetByProduct(ctx context.Context, productID int64) (*domain.StockLedgerEntry, error)
	DeleteEntry(ctx context.Context, productID int64) error
	AdjustStock(ctx context.Context, productID int64, delta int, reason *string) (*domain.StockLedgerEntry, error)
	Reserve(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, error)
	ReleaseOrderReservations(ctx context.Context, orderID int64) (int, error)
}

// ProductEventData is the payload of product.created and product.updated events.
type ProductEventData struct {
	ProductID     int64  `json:"productId"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stockQuantity"`
}

// ProductDeletedData is the payload of a product.deleted event.
type ProductDeletedData struct {
	ProductID int64 `json:"productId"`
}

// ProductStockUpdatedData is the payload of a product.stock_updated event.
type ProductStockUpdatedData struct {
	ProductID   int64 `json:"productId"`
	OldQuantity int   `json:"oldQuantity"`
	NewQuantity int   `json:"newQuantity"`
}

// OrderItemData is one line of an order.created payload.
type OrderItemData struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderCreatedData is the payload of an order.created event.
type OrderCreatedData struct {
	OrderID    int64           `json:"orderId"`
	CustomerID int64           `json:"customerId"`
	Items      []OrderItemData `json:"items"`
}

// OrderCancelledData is the payload of an order.cancelled event.
type OrderCancelledData struct {
	OrderID int64 `json:"orderId"`
}

// Consumer processes incoming Kafka events for the inventory service.
type Consumer struct {
	logger  *slog.Logger
	service InventoryService
}

// NewConsumer creates a new event consumer for the inventory service.
func NewConsumer(service InventoryService, logger *slog.Logger) *Consumer {
	return &Consumer{
		service: service,
		logger:  logger,
	}
}

// HandleProductCreated seeds a ledger entry for a new product. Redelivery is
// harmless: an existing entry counts as success.
func (c *Consumer) HandleProductCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.created data: %w", err)
	}

	entry := &domain.StockLedgerEntry{
		ProductID:      data.ProductID,
		ProductName:    data.Name,
		AvailableStock: data.StockQuantity,
	}

	if _, err := c.service.CreateEntry(ctx, entry); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			c.logger.InfoContext(ctx, "ledger entry already exists, skipping product.created",
				slog.Int64("product_id", data.ProductID),
			)
			return nil
		}
		return fmt.Errorf("create ledger entry for product %d: %w", data.ProductID, err)
	}

	c.logger.InfoContext(ctx, "ledger entry created from product.created",
		slog.Int64("product_id", data.ProductID),
		slog.Int("initial_stock", data.StockQuantity),
	)

	return nil
}

// HandleProductUpdated verifies the ledger entry still exists. Stock changes
// arrive separately on product.stock_updated, so this handler only observes.
func (c *Consumer) HandleProductUpdated(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.updated data: %w", err)
	}

	if _, err := c.service.GetByProduct(ctx, data.ProductID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.logger.WarnContext(ctx, "product.updated for unknown ledger entry",
				slog.Int64("product_id", data.ProductID),
			)
			return nil
		}
		return fmt.Errorf("look up ledger entry for product %d: %w", data.ProductID, err)
	}

	c.logger.DebugContext(ctx, "product.updated observed",
		slog.Int64("product_id", data.ProductID),
	)

	return nil
}

// HandleProductDeleted removes the ledger entry. The movement history stays.
func (c *Consumer) HandleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	if err := c.service.DeleteEntry(ctx, data.ProductID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.logger.InfoContext(ctx, "ledger entry already gone, skipping product.deleted",
				slog.Int64("product_id", data.ProductID),
			)
			return nil
		}
		return fmt.Errorf("delete ledger entry for product %d: %w", data.ProductID, err)
	}

	c.logger.InfoContext(ctx, "ledger entry deleted from product.deleted",
		slog.Int64("product_id", data.ProductID),
	)

	return nil
}

// HandleProductStockUpdated applies the quantity delta reported by the
// product service. The idempotency middleware guards against redelivery
// applying the delta twice.
func (c *Consumer) HandleProductStockUpdated(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductStockUpdatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.stock_updated data: %w", err)
	}

	delta := data.NewQuantity - data.OldQuantity
	if delta == 0 {
		return nil
	}

	reason := "product stock sync"
	if _, err := c.service.AdjustStock(ctx, data.ProductID, delta, &reason); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.logger.WarnContext(ctx, "product.stock_updated for unknown ledger entry",
				slog.Int64("product_id", data.ProductID),
			)
			return nil
		}
		return fmt.Errorf("apply stock delta for product %d: %w", data.ProductID, err)
	}

	c.logger.InfoContext(ctx, "stock delta applied from product.stock_updated",
		slog.Int64("product_id", data.ProductID),
		slog.Int("delta", delta),
	)

	return nil
}

// HandleOrderCreated reserves stock for each order line independently.
// A failed line is logged and skipped rather than rolling back the others:
// retrying the whole event would double-reserve the lines that succeeded.
func (c *Consumer) HandleOrderCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data OrderCreatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal order.created data: %w", err)
	}

	c.logger.InfoContext(ctx, "processing order.created event",
		slog.Int64("order_id", data.OrderID),
		slog.Int("line_count", len(data.Items)),
	)

	for _, item := range data.Items {
		if _, err := c.service.Reserve(ctx, item.ProductID, item.Quantity, &data.OrderID); err != nil {
			c.logger.ErrorContext(ctx, "failed to reserve stock for order line",
				slog.Int64("order_id", data.OrderID),
				slog.Int64("product_id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// HandleOrderCancelled releases the reservations recorded for the order.
func (c *Consumer) HandleOrderCancelled(ctx context.Context, event *pkgkafka.Event) error {
	var data OrderCancelledData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal order.cancelled data: %w", err)
	}

	released, err := c.service.ReleaseOrderReservations(ctx, data.OrderID)
	if err != nil {
		return fmt.Errorf("release reservations for order %d: %w", data.OrderID, err)
	}

	c.logger.InfoContext(ctx, "reservations released for cancelled order",
		slog.Int64("order_id", data.OrderID),
		slog.Int("released_count", released),
	)

	return nil
}
