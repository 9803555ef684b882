package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/inventory/internal/domain"
)

// Event types for inventory domain events.
const (
	TypeInventoryReserved = "inventory.reserved"
	TypeInventoryReleased = "inventory.released"
	TypeInventoryLowStock = "inventory.low_stock"
)

// Kafka topics for inventory domain events.
var (
	TopicInventoryReserved = pkgkafka.Topic("inventory", "reserved")
	TopicInventoryReleased = pkgkafka.Topic("inventory", "released")
	TopicInventoryLowStock = pkgkafka.Topic("inventory", "low_stock")
)

// Source identifier for events originating from the inventory service.
const SourceInventoryService = "inventory-service"

// InventoryReservedData is the payload for an inventory.reserved event.
type InventoryReservedData struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	OrderID   *int64 `json:"orderId,omitempty"`
}

// InventoryReleasedData is the payload for an inventory.released event.
type InventoryReleasedData struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	OrderID   *int64 `json:"orderId,omitempty"`
}

// InventoryLowStockData is the payload for an inventory.low_stock event.
type InventoryLowStockData struct {
	ProductID    int64 `json:"productId"`
	CurrentStock int   `json:"currentStock"`
	MinimumStock int   `json:"minimumStock"`
}

// Producer publishes inventory domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the inventory service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

// PublishInventoryReserved publishes an inventory.reserved event.
func (p *Producer) PublishInventoryReserved(ctx context.Context, productID int64, quantity int, orderID *int64) error {
	data := InventoryReservedData{
		ProductID: productID,
		Quantity:  quantity,
		OrderID:   orderID,
	}

	event, err := pkgkafka.NewEvent(TypeInventoryReserved, SourceInventoryService, data)
	if err != nil {
		return fmt.Errorf("create inventory.reserved event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicInventoryReserved, productKey(productID), event); err != nil {
		return fmt.Errorf("publish inventory.reserved event: %w", err)
	}

	p.logger.DebugContext(ctx, "published inventory.reserved event",
		slog.Int64("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return nil
}

// PublishInventoryReleased publishes an inventory.released event.
func (p *Producer) PublishInventoryReleased(ctx context.Context, productID int64, quantity int, orderID *int64) error {
	data := InventoryReleasedData{
		ProductID: productID,
		Quantity:  quantity,
		OrderID:   orderID,
	}

	event, err := pkgkafka.NewEvent(TypeInventoryReleased, SourceInventoryService, data)
	if err != nil {
		return fmt.Errorf("create inventory.released event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicInventoryReleased, productKey(productID), event); err != nil {
		return fmt.Errorf("publish inventory.released event: %w", err)
	}

	p.logger.DebugContext(ctx, "published inventory.released event",
		slog.Int64("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return nil
}

// lowStockData builds the alert payload. currentStock carries the available
// quantity; reserved stock is committed elsewhere and is not sellable.
func lowStockData(entry *domain.StockLedgerEntry) InventoryLowStockData {
	return InventoryLowStockData{
		ProductID:    entry.ProductID,
		CurrentStock: entry.AvailableStock,
		MinimumStock: entry.MinimumStock,
	}
}

// PublishInventoryLowStock publishes an inventory.low_stock alert.
func (p *Producer) PublishInventoryLowStock(ctx context.Context, entry *domain.StockLedgerEntry) error {
	data := lowStockData(entry)

	event, err := pkgkafka.NewEvent(TypeInventoryLowStock, SourceInventoryService, data)
	if err != nil {
		return fmt.Errorf("create inventory.low_stock event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicInventoryLowStock, productKey(entry.ProductID), event); err != nil {
		return fmt.Errorf("publish inventory.low_stock event: %w", err)
	}

	p.logger.DebugContext(ctx, "published inventory.low_stock event",
		slog.Int64("product_id", entry.ProductID),
		slog.Int("current_stock", data.CurrentStock),
		slog.Int("minimum_stock", data.MinimumStock),
	)

	return nil
}
