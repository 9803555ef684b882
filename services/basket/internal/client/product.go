// Package client holds the HTTP clients the basket service uses to talk to
// other services.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/pkg/httpclient"
)

// Product is the subset of the product service representation the basket
// cares about. Price is in minor currency units (cents).
type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// ProductClient fetches products from the product service through a circuit
// breaker so a struggling catalog cannot take the basket down with it.
type ProductClient struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewProductClient creates a product service client.
func NewProductClient(baseURL string, cb *httpclient.CircuitBreakerClient, logger *slog.Logger) *ProductClient {
	return &ProductClient{
		baseURL: baseURL,
		http:    cb,
		logger:  logger,
	}
}

// GetProduct retrieves a single product by id.
func (c *ProductClient) GetProduct(ctx context.Context, id int64) (*Product, error) {
	url := fmt.Sprintf("%s/api/v1/products/%d", c.baseURL, id)

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFound("product", fmt.Sprintf("%d", id))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("product service returned status %d for product %d", resp.StatusCode, id)
	}

	var envelope struct {
		Data Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode product %d: %w", id, err)
	}

	return &envelope.Data, nil
}
