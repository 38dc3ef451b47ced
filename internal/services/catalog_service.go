package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"commercehub/internal/caching"
	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const catalogCacheTTL = 15 * time.Minute

// CatalogService owns the product and category facts the order and
// pricing core reads. Reads go through the cache; writes invalidate.
type CatalogService interface {
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product) error
	ListProducts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error)
	SearchProducts(ctx context.Context, tenantID uuid.UUID, filter *models.ProductSearchFilter) ([]*models.Product, error)
	ListLowStockProducts(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error)
	RestockProduct(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error

	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Category, error)
}

type CreateProductRequest struct {
	TenantID          uuid.UUID       `json:"tenant_id"`
	CategoryID        *uuid.UUID      `json:"category_id"`
	Name              string          `json:"name" validate:"required"`
	Description       *string         `json:"description"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type CreateCategoryRequest struct {
	TenantID    uuid.UUID  `json:"tenant_id"`
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

type catalogService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	cache        caching.CacheService
}

func NewCatalogService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, cache caching.CacheService) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if req.TenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant ID is required", common.ErrValidation)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", common.ErrValidation)
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: product price must be positive", common.ErrValidation)
	}
	if req.StockQuantity < 0 || req.LowStockThreshold < 0 {
		return nil, fmt.Errorf("%w: stock quantity and threshold cannot be negative", common.ErrValidation)
	}
	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if err := common.EnsureTenant(category.TenantID, req.TenantID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:                uuid.New(),
		TenantID:          req.TenantID,
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetProduct(ctx, tenantID, productID); err == nil && cached != nil {
			return cached, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(product.TenantID, tenantID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, tenantID, product, catalogCacheTTL); err != nil {
			log.Printf("failed to cache product %s: %v", product.ID, err)
		}
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product) error {
	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	if err := common.EnsureTenant(existing.TenantID, tenantID); err != nil {
		return err
	}
	if product.Price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: product price must be positive", common.ErrValidation)
	}

	product.TenantID = tenantID
	if err := s.productRepo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	s.invalidateProduct(ctx, tenantID, product.ID)
	return nil
}

func (s *catalogService) invalidateProduct(ctx context.Context, tenantID, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteProduct(ctx, tenantID, productID); err != nil {
		log.Printf("failed to invalidate cached product %s: %v", productID, err)
	}
	if err := s.cache.DeletePriceQuote(ctx, tenantID, productID); err != nil {
		log.Printf("failed to invalidate cached price quote for product %s: %v", productID, err)
	}
}

func (s *catalogService) ListProducts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	return s.productRepo.List(ctx, tenantID, limit, offset)
}

func (s *catalogService) SearchProducts(ctx context.Context, tenantID uuid.UUID, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	return s.productRepo.AdvancedSearch(ctx, tenantID, filter)
}

func (s *catalogService) ListLowStockProducts(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	return s.productRepo.ListLowStock(ctx, tenantID)
}

func (s *catalogService) RestockProduct(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: restock quantity must be positive", common.ErrValidation)
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := common.EnsureTenant(product.TenantID, tenantID); err != nil {
		return err
	}
	if err := s.productRepo.RestoreStock(ctx, tenantID, productID, quantity); err != nil {
		return fmt.Errorf("failed to restock product: %w", err)
	}
	s.invalidateProduct(ctx, tenantID, productID)
	return nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if req.TenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant ID is required", common.ErrValidation)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", common.ErrValidation)
	}
	if req.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if err := common.EnsureTenant(parent.TenantID, req.TenantID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	category := &models.Category{
		ID:          uuid.New(),
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *catalogService) GetCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (*models.Category, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCategory(ctx, tenantID, categoryID); err == nil && cached != nil {
			return cached, nil
		}
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(category.TenantID, tenantID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategory(ctx, tenantID, category, catalogCacheTTL); err != nil {
			log.Printf("failed to cache category %s: %v", category.ID, err)
		}
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, tenantID, limit, offset)
}
