// Package service implements the business logic of the customer service.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/customer/internal/domain"
	"github.com/avelis/shopworks/services/customer/internal/event"
	"github.com/avelis/shopworks/services/customer/internal/repository"
)

// CustomerService implements the business logic for customer operations.
type CustomerService struct {
	repo     repository.CustomerRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(repo repository.CustomerRepository, producer *event.Producer, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CustomerInput holds the parameters for creating or updating a customer.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Address   *string
	City      *string
	Country   *string
}

func (in *CustomerInput) validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return apperrors.InvalidInput("first name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return apperrors.InvalidInput("last name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return apperrors.InvalidInput("email is required")
	}
	return nil
}

func (in *CustomerInput) toDomain(id int64) *domain.Customer {
	return &domain.Customer{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		City:      in.City,
		Country:   in.Country,
	}
}

// CreateCustomer creates a new customer and publishes a customer.created event.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CustomerInput) (*domain.Customer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, input.toDomain(0))
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	if err := s.producer.PublishCustomerCreated(ctx, created); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.created event",
			slog.Int64("customer_id", created.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "customer created",
		slog.Int64("customer_id", created.ID),
		slog.String("email", created.Email),
	)

	return created, nil
}

// GetCustomer retrieves a customer by its id.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer by id: %w", err)
	}
	return customer, nil
}

// GetCustomerByEmail retrieves a customer by email address.
func (s *CustomerService) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	customer, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return customer, nil
}

// ListCustomers returns customers with pagination.
func (s *CustomerService) ListCustomers(ctx context.Context, page, perPage int) ([]domain.Customer, int, error) {
	customers, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	return customers, total, nil
}

// UpdateCustomer replaces a customer's fields and publishes a customer.updated
// event.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, input *CustomerInput) (*domain.Customer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, input.toDomain(id))
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	if err := s.producer.PublishCustomerUpdated(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.updated event",
			slog.Int64("customer_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "customer updated",
		slog.Int64("customer_id", updated.ID),
	)

	return updated, nil
}

// DeleteCustomer removes a customer and publishes a customer.deleted event.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	if err := s.producer.PublishCustomerDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.deleted event",
			slog.Int64("customer_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "customer deleted",
		slog.Int64("customer_id", id),
	)

	return nil
}
