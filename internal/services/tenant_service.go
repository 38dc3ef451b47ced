package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"commercehub/internal/caching"
	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/repositories"

	"github.com/google/uuid"
)

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	Update(ctx context.Context, req *UpdateTenantRequest) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	cache      caching.CacheService
}

func NewTenantService(tenantRepo repositories.TenantRepository, cache caching.CacheService) TenantService {
	return &tenantService{tenantRepo: tenantRepo, cache: cache}
}

type CreateTenantRequest struct {
	Name      string `json:"name" validate:"required"`
	Subdomain string `json:"subdomain" validate:"required"`
}

type UpdateTenantRequest struct {
	ID        uuid.UUID
	Name      string `json:"name" validate:"required"`
	Subdomain string `json:"subdomain" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" || req.Subdomain == "" {
		return nil, fmt.Errorf("%w: name and subdomain are required", common.ErrValidation)
	}
	if strings.TrimSpace(req.Subdomain) != req.Subdomain || strings.Contains(req.Subdomain, " ") {
		return nil, fmt.Errorf("%w: subdomain cannot have spaces", common.ErrValidation)
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      req.Name,
		Subdomain: strings.ToLower(req.Subdomain),
		Status:    "active",
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	if subdomain == "" {
		return nil, fmt.Errorf("%w: subdomain is required", common.ErrValidation)
	}
	return s.tenantRepo.GetBySubdomain(ctx, subdomain)
}

func (s *tenantService) Update(ctx context.Context, req *UpdateTenantRequest) error {
	existing, err := s.tenantRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Subdomain = req.Subdomain
	existing.Status = req.Status

	if err := s.tenantRepo.Update(ctx, existing); err != nil {
		return err
	}

	// Tenant-scoped cache entries may reflect the old status or
	// subdomain.
	if s.cache != nil {
		if err := s.cache.InvalidateTenantCache(ctx, existing.ID); err != nil {
			log.Printf("failed to invalidate cache for tenant %s: %v", existing.ID, err)
		}
	}
	return nil
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.tenantRepo.List(ctx, limit, offset)
}
