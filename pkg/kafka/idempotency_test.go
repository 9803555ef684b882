package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryIdempotencyStore_AddAndContains(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	ctx := context.Background()

	exists, err := store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Add(ctx, "evt-1"))

	exists, err = store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "evt-1"))
	time.Sleep(time.Millisecond)

	exists, err := store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, exists, "expired entries should not be reported as processed")
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, e *Event) error {
		calls++
		return nil
	}, discardLogger())

	event, err := NewEvent("commerce.product.created", "product-service", map[string]int{"productId": 1})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), event))
	require.NoError(t, handler(context.Background(), event))

	assert.Equal(t, 1, calls, "second delivery must be skipped")
}

func TestIdempotentHandler_FailedProcessingIsNotRecorded(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, e *Event) error {
		calls++
		if calls == 1 {
			return errors.New("transient failure")
		}
		return nil
	}, discardLogger())

	event, err := NewEvent("commerce.order.created", "order-service", map[string]int{"orderId": 1})
	require.NoError(t, err)

	assert.Error(t, handler(context.Background(), event))
	// Redelivery after a failure must be processed again.
	require.NoError(t, handler(context.Background(), event))
	assert.Equal(t, 2, calls)
}

func TestIdempotentHandler_MissingEventIDPassesThrough(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	calls := 0
	handler := IdempotentHandler(store, func(ctx context.Context, e *Event) error {
		calls++
		return nil
	}, discardLogger())

	event := &Event{Type: "commerce.customer.created"}

	require.NoError(t, handler(context.Background(), event))
	require.NoError(t, handler(context.Background(), event))

	assert.Equal(t, 2, calls, "events without IDs cannot be deduplicated")
	assert.Equal(t, 0, store.Len())
}

type failingStore struct{}

func (failingStore) Contains(context.Context, string) (bool, error) {
	return false, errors.New("store unavailable")
}

func (failingStore) Add(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestIdempotentHandler_StoreFailureProcessesAnyway(t *testing.T) {
	calls := 0
	handler := IdempotentHandler(failingStore{}, func(ctx context.Context, e *Event) error {
		calls++
		return nil
	}, discardLogger())

	event, err := NewEvent("commerce.customer.updated", "customer-service", map[string]int{"customerId": 5})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), event))
	assert.Equal(t, 1, calls)
}
