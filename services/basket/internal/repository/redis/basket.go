// Package redis implements the basket repository on top of Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/basket/internal/domain"
)

const keyPrefix = "basket:"

func basketKey(customerID int64) string {
	return keyPrefix + strconv.FormatInt(customerID, 10)
}

// BasketRepository implements repository.BasketRepository using Redis.
type BasketRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBasketRepository creates a new Redis-backed basket repository.
func NewBasketRepository(client *redis.Client, ttl time.Duration) *BasketRepository {
	return &BasketRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a basket by customer id from Redis.
func (r *BasketRepository) Get(ctx context.Context, customerID int64) (*domain.Basket, error) {
	data, err := r.client.Get(ctx, basketKey(customerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("basket", strconv.FormatInt(customerID, 10))
		}
		return nil, fmt.Errorf("redis get basket: %w", err)
	}

	var basket domain.Basket
	if err := json.Unmarshal(data, &basket); err != nil {
		return nil, fmt.Errorf("unmarshal basket: %w", err)
	}

	return &basket, nil
}

// Save persists a basket to Redis with the configured TTL.
func (r *BasketRepository) Save(ctx context.Context, basket *domain.Basket) error {
	data, err := json.Marshal(basket)
	if err != nil {
		return fmt.Errorf("marshal basket: %w", err)
	}

	if err := r.client.Set(ctx, basketKey(basket.CustomerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set basket: %w", err)
	}

	return nil
}

// Delete removes a basket from Redis by customer id.
func (r *BasketRepository) Delete(ctx context.Context, customerID int64) error {
	if err := r.client.Del(ctx, basketKey(customerID)).Err(); err != nil {
		return fmt.Errorf("redis del basket: %w", err)
	}

	return nil
}
