package event

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/order/internal/domain"
)

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func testConsumer(repo *mockCustomerRepository) *Consumer {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewConsumer(repo, logger)
}

func mustEvent(t *testing.T, eventType string, data any) *pkgkafka.Event {
	t.Helper()
	event, err := pkgkafka.NewEvent(eventType, "customer-service", data)
	require.NoError(t, err)
	return event
}

func TestHandleCustomerCreated_UpsertsReplica(t *testing.T) {
	repo := new(mockCustomerRepository)
	consumer := testConsumer(repo)
	ctx := context.Background()

	repo.On("Upsert", ctx, &domain.Customer{ID: 7, Name: "Ada Lovelace", Email: "ada@example.com"}).
		Return(nil)

	event := mustEvent(t, "customer.created", CustomerEventData{
		CustomerID: 7,
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
	})

	err := consumer.HandleCustomerCreated(ctx, event)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleCustomerUpdated_UpsertsReplica(t *testing.T) {
	repo := new(mockCustomerRepository)
	consumer := testConsumer(repo)
	ctx := context.Background()

	repo.On("Upsert", ctx, &domain.Customer{ID: 7, Name: "Ada King", Email: "ada@example.org"}).
		Return(nil)

	event := mustEvent(t, "customer.updated", CustomerEventData{
		CustomerID: 7,
		Name:       "Ada King",
		Email:      "ada@example.org",
	})

	err := consumer.HandleCustomerUpdated(ctx, event)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleCustomerCreated_RepositoryError(t *testing.T) {
	repo := new(mockCustomerRepository)
	consumer := testConsumer(repo)
	ctx := context.Background()

	repo.On("Upsert", ctx, mock.Anything).Return(errors.New("connection refused"))

	event := mustEvent(t, "customer.created", CustomerEventData{CustomerID: 7})

	err := consumer.HandleCustomerCreated(ctx, event)

	assert.Error(t, err)
}

func TestHandlers_MalformedPayload(t *testing.T) {
	repo := new(mockCustomerRepository)
	consumer := testConsumer(repo)
	ctx := context.Background()

	bad := &pkgkafka.Event{ID: "bad", Type: "customer.created", Data: []byte("{not json")}

	assert.Error(t, consumer.HandleCustomerCreated(ctx, bad))
	assert.Error(t, consumer.HandleCustomerUpdated(ctx, bad))
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
