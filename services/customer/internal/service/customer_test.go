package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	pkgkafka "github.com/avelis/shopworks/pkg/kafka"
	"github.com/avelis/shopworks/services/customer/internal/domain"
	"github.com/avelis/shopworks/services/customer/internal/event"
)

// --- Mock CustomerRepository ---

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) List(ctx context.Context, page, perPage int) ([]domain.Customer, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]domain.Customer), args.Int(1), args.Error(2)
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCustomerService(repo *mockCustomerRepository) *CustomerService {
	logger := newTestLogger()
	// Kafka producer without a reachable broker; publish failures are logged
	// and do not fail the operation.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	producer := event.NewProducer(kafkaProducer, logger)
	return NewCustomerService(repo, producer, logger)
}

func storedCustomer() *domain.Customer {
	return &domain.Customer{
		ID:        7,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}
}

func validInput() *CustomerInput {
	return &CustomerInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}
}

// --- CreateCustomer ---

func TestCreateCustomer_Success(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.Email == "ada@example.com" && c.FirstName == "Ada"
	})).Return(storedCustomer(), nil)

	created, err := svc.CreateCustomer(ctx, validInput())

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "Ada Lovelace", created.FullName())
	repo.AssertExpectations(t)
}

func TestCreateCustomer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CustomerInput)
	}{
		{"empty first name", func(in *CustomerInput) { in.FirstName = "" }},
		{"blank last name", func(in *CustomerInput) { in.LastName = "   " }},
		{"empty email", func(in *CustomerInput) { in.Email = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockCustomerRepository)
			svc := newTestCustomerService(repo)

			input := validInput()
			tt.mutate(input)

			created, err := svc.CreateCustomer(context.Background(), input)

			assert.Nil(t, created)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).
		Return(nil, apperrors.AlreadyExists("customer", "email", "ada@example.com"))

	created, err := svc.CreateCustomer(ctx, validInput())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	repo.AssertExpectations(t)
}

// --- Get / List ---

func TestGetCustomer_NotFound(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(999)).Return(nil, apperrors.NotFound("customer", "999"))

	customer, err := svc.GetCustomer(ctx, 999)

	assert.Nil(t, customer)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestGetCustomerByEmail_Success(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ada@example.com").Return(storedCustomer(), nil)

	customer, err := svc.GetCustomerByEmail(ctx, "ada@example.com")

	require.NoError(t, err)
	assert.Equal(t, int64(7), customer.ID)
	repo.AssertExpectations(t)
}

func TestGetCustomerByEmail_Empty(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)

	customer, err := svc.GetCustomerByEmail(context.Background(), "  ")

	assert.Nil(t, customer)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestListCustomers_Success(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("List", ctx, 1, 20).Return([]domain.Customer{*storedCustomer()}, 1, nil)

	customers, total, err := svc.ListCustomers(ctx, 1, 20)

	require.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.Equal(t, 1, total)
	repo.AssertExpectations(t)
}

// --- UpdateCustomer ---

func TestUpdateCustomer_Success(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.ID == 7 && c.Email == "ada@example.com"
	})).Return(storedCustomer(), nil)

	updated, err := svc.UpdateCustomer(ctx, 7, validInput())

	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.ID)
	repo.AssertExpectations(t)
}

func TestUpdateCustomer_NotFound(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("Update", ctx, mock.Anything).Return(nil, apperrors.NotFound("customer", "999"))

	updated, err := svc.UpdateCustomer(ctx, 999, validInput())

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestUpdateCustomer_Validation(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)

	input := validInput()
	input.Email = ""
	updated, err := svc.UpdateCustomer(context.Background(), 7, input)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- DeleteCustomer ---

func TestDeleteCustomer_Success(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("Delete", ctx, int64(7)).Return(nil)

	err := svc.DeleteCustomer(ctx, 7)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteCustomer_NotFound(t *testing.T) {
	repo := new(mockCustomerRepository)
	svc := newTestCustomerService(repo)
	ctx := context.Background()

	repo.On("Delete", ctx, int64(999)).Return(apperrors.NotFound("customer", "999"))

	err := svc.DeleteCustomer(ctx, 999)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}
