package services

import (
	"context"
	"fmt"
	"time"

	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/repositories"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error)
	GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error)
	AddAddress(ctx context.Context, req *CreateAddressRequest) (*models.Address, error)
}

type CreateCustomerRequest struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name" validate:"required"`
	Email     string    `json:"email" validate:"required"`
	Phone     *string   `json:"phone"`
}

type CreateAddressRequest struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Line1      string    `json:"line1" validate:"required"`
	Line2      *string   `json:"line2"`
	City       string    `json:"city" validate:"required"`
	PostalCode string    `json:"postal_code" validate:"required"`
	Country    string    `json:"country" validate:"required"`
}

type customerService struct {
	customerRepo repositories.CustomerRepository
}

func NewCustomerService(customerRepo repositories.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) Create(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error) {
	if req.TenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant ID is required", common.ErrValidation)
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: first name, last name and email are required", common.ErrValidation)
	}

	now := time.Now().UTC()
	customer := &models.Customer{
		ID:        uuid.New(),
		TenantID:  req.TenantID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(customer.TenantID, tenantID); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	return s.customerRepo.List(ctx, tenantID, limit, offset)
}

func (s *customerService) AddAddress(ctx context.Context, req *CreateAddressRequest) (*models.Address, error) {
	if req.Line1 == "" || req.City == "" || req.PostalCode == "" || req.Country == "" {
		return nil, fmt.Errorf("%w: line1, city, postal code and country are required", common.ErrValidation)
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(customer.TenantID, req.TenantID); err != nil {
		return nil, err
	}

	address := &models.Address{
		ID:         uuid.New(),
		TenantID:   req.TenantID,
		CustomerID: req.CustomerID,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.customerRepo.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}
