// Package service implements the basket business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/basket/internal/client"
	"github.com/avelis/shopworks/services/basket/internal/domain"
	"github.com/avelis/shopworks/services/basket/internal/repository"
)

// Basket upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single line.
	MaxQuantityPerItem = 100
	// MaxItemsPerBasket is the maximum number of distinct lines in a basket.
	MaxItemsPerBasket = 50
)

// ProductGetter fetches product details for price refresh. Satisfied by
// client.ProductClient.
type ProductGetter interface {
	GetProduct(ctx context.Context, id int64) (*client.Product, error)
}

// AddItemInput holds the parameters for adding a line to the basket.
type AddItemInput struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   int64
	ImageURL    *string
}

func (in *AddItemInput) validate() error {
	if in.ProductID <= 0 {
		return apperrors.InvalidInput("product id is required")
	}
	if in.ProductName == "" {
		return apperrors.InvalidInput("product name is required")
	}
	if in.Quantity <= 0 {
		return apperrors.InvalidInput("quantity must be greater than 0")
	}
	if in.Quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	if in.UnitPrice < 0 {
		return apperrors.InvalidInput("unit price must not be negative")
	}
	return nil
}

// BasketService implements the business logic for basket operations.
type BasketService struct {
	repo     repository.BasketRepository
	products ProductGetter
	logger   *slog.Logger
}

// NewBasketService creates a new basket service.
func NewBasketService(repo repository.BasketRepository, products ProductGetter, logger *slog.Logger) *BasketService {
	return &BasketService{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

// GetBasket retrieves the customer's basket with line prices refreshed from
// the product service. A customer without a basket gets an empty one.
func (s *BasketService) GetBasket(ctx context.Context, customerID int64) (*domain.Basket, error) {
	if customerID <= 0 {
		return nil, apperrors.InvalidInput("customer id is required")
	}

	basket, err := s.repo.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewBasket(customerID), nil
		}
		return nil, fmt.Errorf("get basket: %w", err)
	}

	s.refreshPrices(ctx, basket)

	return basket, nil
}

// refreshPrices overwrites cached line names and prices with the product
// service's current values. Lookup failures keep the cached line so a catalog
// outage degrades to stale prices instead of an error.
func (s *BasketService) refreshPrices(ctx context.Context, basket *domain.Basket) {
	for i := range basket.Items {
		item := &basket.Items[i]

		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			s.logger.WarnContext(ctx, "price refresh failed, keeping cached price",
				slog.Int64("product_id", item.ProductID),
				slog.String("error", err.Error()),
			)
			continue
		}

		item.ProductName = product.Name
		item.UnitPrice = product.Price
	}
}

// AddItem adds a line to the customer's basket, merging quantities when the
// product is already present.
func (s *BasketService) AddItem(ctx context.Context, customerID int64, input AddItemInput) (*domain.Basket, error) {
	if customerID <= 0 {
		return nil, apperrors.InvalidInput("customer id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	basket, err := s.repo.Get(ctx, customerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get basket: %w", err)
		}
		basket = domain.NewBasket(customerID)
	}

	if idx := basket.FindItemIndex(input.ProductID); idx >= 0 {
		newQty := basket.Items[idx].Quantity + input.Quantity
		if newQty > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		basket.Items[idx].Quantity = newQty
		basket.Items[idx].ProductName = input.ProductName
		basket.Items[idx].UnitPrice = input.UnitPrice
		basket.Items[idx].ImageURL = input.ImageURL
	} else {
		if len(basket.Items) >= MaxItemsPerBasket {
			return nil, apperrors.InvalidInput(fmt.Sprintf("basket must not contain more than %d items", MaxItemsPerBasket))
		}
		basket.Items = append(basket.Items, domain.BasketItem{
			ProductID:   input.ProductID,
			ProductName: input.ProductName,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			ImageURL:    input.ImageURL,
		})
	}

	basket.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, basket); err != nil {
		return nil, fmt.Errorf("save basket: %w", err)
	}

	s.logger.InfoContext(ctx, "item added to basket",
		slog.Int64("customer_id", customerID),
		slog.Int64("product_id", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	return basket, nil
}

// UpdateItemQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line.
func (s *BasketService) UpdateItemQuantity(ctx context.Context, customerID, productID int64, quantity int) (*domain.Basket, error) {
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	basket, err := s.repo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	idx := basket.FindItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("basket item", fmt.Sprintf("%d", productID))
	}

	if quantity <= 0 {
		basket.Items = append(basket.Items[:idx], basket.Items[idx+1:]...)
	} else {
		basket.Items[idx].Quantity = quantity
	}

	basket.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, basket); err != nil {
		return nil, fmt.Errorf("save basket: %w", err)
	}

	return basket, nil
}

// RemoveItem removes a line from the customer's basket.
func (s *BasketService) RemoveItem(ctx context.Context, customerID, productID int64) (*domain.Basket, error) {
	basket, err := s.repo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	idx := basket.FindItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("basket item", fmt.Sprintf("%d", productID))
	}

	basket.Items = append(basket.Items[:idx], basket.Items[idx+1:]...)
	basket.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, basket); err != nil {
		return nil, fmt.Errorf("save basket: %w", err)
	}

	s.logger.InfoContext(ctx, "item removed from basket",
		slog.Int64("customer_id", customerID),
		slog.Int64("product_id", productID),
	)

	return basket, nil
}

// ClearBasket deletes the customer's basket. Clearing an absent basket is a
// no-op.
func (s *BasketService) ClearBasket(ctx context.Context, customerID int64) error {
	if customerID <= 0 {
		return apperrors.InvalidInput("customer id is required")
	}

	if err := s.repo.Delete(ctx, customerID); err != nil {
		return fmt.Errorf("delete basket: %w", err)
	}

	s.logger.InfoContext(ctx, "basket cleared", slog.Int64("customer_id", customerID))

	return nil
}

// Checkout clears the basket after verifying it is not empty. Order creation
// is an explicit call to the order service made by the client before
// checkout.
func (s *BasketService) Checkout(ctx context.Context, customerID int64) error {
	basket, err := s.repo.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidInput("basket is empty")
		}
		return fmt.Errorf("get basket: %w", err)
	}

	if len(basket.Items) == 0 {
		return apperrors.InvalidInput("basket is empty")
	}

	if err := s.repo.Delete(ctx, customerID); err != nil {
		return fmt.Errorf("delete basket: %w", err)
	}

	s.logger.InfoContext(ctx, "basket checked out",
		slog.Int64("customer_id", customerID),
		slog.Int("item_count", basket.ItemCount()),
		slog.Int64("total_price", basket.TotalPrice()),
	)

	return nil
}
