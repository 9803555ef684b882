package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/product/internal/domain"
)

// Event types for product domain events.
const (
	TypeProductCreated      = "product.created"
	TypeProductUpdated      = "product.updated"
	TypeProductDeleted      = "product.deleted"
	TypeProductStockUpdated = "product.stock_updated"
)

// Kafka topics for product domain events.
var (
	TopicProductCreated      = pkgkafka.Topic("product", "created")
	TopicProductUpdated      = pkgkafka.Topic("product", "updated")
	TopicProductDeleted      = pkgkafka.Topic("product", "deleted")
	TopicProductStockUpdated = pkgkafka.Topic("product", "stock_updated")
)

// Source identifier for events originating from the product service.
const SourceProductService = "product-service"

// ProductEventData is the payload for product.created and product.updated events.
type ProductEventData struct {
	ProductID     int64   `json:"productId"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	Price         int64   `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
	CategoryID    int64   `json:"categoryId"`
	SupplierID    *int64  `json:"supplierId,omitempty"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ProductID int64 `json:"productId"`
}

// ProductStockUpdatedData is the payload for a product.stock_updated event.
type ProductStockUpdatedData struct {
	ProductID   int64 `json:"productId"`
	OldQuantity int   `json:"oldQuantity"`
	NewQuantity int   `json:"newQuantity"`
}

// Producer publishes product domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the product service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

func productData(p *domain.Product) ProductEventData {
	return ProductEventData{
		ProductID:     p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		SupplierID:    p.SupplierID,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	event, err := pkgkafka.NewEvent(TypeProductCreated, SourceProductService, productData(product))
	if err != nil {
		return fmt.Errorf("create product.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductCreated, productKey(product.ID), event); err != nil {
		return fmt.Errorf("publish product.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.created event",
		slog.Int64("product_id", product.ID),
	)

	return nil
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	event, err := pkgkafka.NewEvent(TypeProductUpdated, SourceProductService, productData(product))
	if err != nil {
		return fmt.Errorf("create product.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductUpdated, productKey(product.ID), event); err != nil {
		return fmt.Errorf("publish product.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.updated event",
		slog.Int64("product_id", product.ID),
	)

	return nil
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID int64) error {
	event, err := pkgkafka.NewEvent(TypeProductDeleted, SourceProductService, ProductDeletedData{ProductID: productID})
	if err != nil {
		return fmt.Errorf("create product.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductDeleted, productKey(productID), event); err != nil {
		return fmt.Errorf("publish product.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.Int64("product_id", productID),
	)

	return nil
}

// PublishProductStockUpdated publishes a product.stock_updated event carrying
// the old and new quantity so consumers can apply the delta.
func (p *Producer) PublishProductStockUpdated(ctx context.Context, productID int64, oldQuantity, newQuantity int) error {
	data := ProductStockUpdatedData{
		ProductID:   productID,
		OldQuantity: oldQuantity,
		NewQuantity: newQuantity,
	}

	event, err := pkgkafka.NewEvent(TypeProductStockUpdated, SourceProductService, data)
	if err != nil {
		return fmt.Errorf("create product.stock_updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductStockUpdated, productKey(productID), event); err != nil {
		return fmt.Errorf("publish product.stock_updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.stock_updated event",
		slog.Int64("product_id", productID),
		slog.Int("old_quantity", oldQuantity),
		slog.Int("new_quantity", newQuantity),
	)

	return nil
}
