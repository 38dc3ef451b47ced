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

// ActiveCampaignView is a campaign plus derived fields for the admin
// listing.
type ActiveCampaignView struct {
	Campaign      *models.Campaign `json:"campaign"`
	RemainingDays int              `json:"remaining_days"`
}

// CampaignService owns campaign administration: lifecycle, product and
// category assignment, and the active listing the storefront admin
// reads.
type CampaignService interface {
	CreateCampaign(ctx context.Context, tenantID uuid.UUID, name string, discountPercent decimal.Decimal, startsAt, endsAt time.Time) (*models.Campaign, error)
	GetCampaign(ctx context.Context, tenantID, campaignID uuid.UUID) (*models.Campaign, error)
	UpdateCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, name string, discountPercent decimal.Decimal, startsAt, endsAt time.Time) (*models.Campaign, error)
	DeactivateCampaign(ctx context.Context, tenantID, campaignID uuid.UUID) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error)
	ListActiveCampaigns(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]ActiveCampaignView, error)

	AssignProduct(ctx context.Context, tenantID, campaignID, productID uuid.UUID, discountedPrice decimal.Decimal) (*models.ProductCampaign, error)
	AssignCategory(ctx context.Context, tenantID, campaignID, categoryID uuid.UUID) (*models.CategoryCampaign, error)

	// DeactivateExpired flips the active flag on campaigns whose window
	// has closed. Run from the background sweep.
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}

type campaignService struct {
	campaignRepo repositories.CampaignRepository
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	cache        caching.CacheService
}

func NewCampaignService(
	campaignRepo repositories.CampaignRepository,
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	cache caching.CacheService,
) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

func (s *campaignService) loadGuarded(ctx context.Context, tenantID, campaignID uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(campaign.TenantID, tenantID); err != nil {
		return nil, err
	}
	return campaign, nil
}

// invalidateQuotes drops cached price quotes for the tenant. Campaign
// writes change resolution outcomes, so stale quotes must not outlive
// the write.
func (s *campaignService) invalidateQuotes(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteTenantPriceQuotes(ctx, tenantID); err != nil {
		log.Printf("failed to invalidate price quotes for tenant %s: %v", tenantID, err)
	}
}

func (s *campaignService) CreateCampaign(ctx context.Context, tenantID uuid.UUID, name string, discountPercent decimal.Decimal, startsAt, endsAt time.Time) (*models.Campaign, error) {
	campaign, err := models.NewCampaign(tenantID, name, discountPercent, startsAt, endsAt)
	if err != nil {
		return nil, err
	}
	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	s.invalidateQuotes(ctx, tenantID)
	return campaign, nil
}

func (s *campaignService) GetCampaign(ctx context.Context, tenantID, campaignID uuid.UUID) (*models.Campaign, error) {
	return s.loadGuarded(ctx, tenantID, campaignID)
}

func (s *campaignService) UpdateCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, name string, discountPercent decimal.Decimal, startsAt, endsAt time.Time) (*models.Campaign, error) {
	campaign, err := s.loadGuarded(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: campaign name is required", common.ErrValidation)
	}
	if err := models.ValidateDiscountPercent(discountPercent); err != nil {
		return nil, err
	}
	if !startsAt.Before(endsAt) {
		return nil, fmt.Errorf("%w: campaign must start before it ends", common.ErrValidation)
	}

	campaign.Name = name
	campaign.DiscountPercent = discountPercent
	campaign.StartsAt = startsAt.UTC()
	campaign.EndsAt = endsAt.UTC()
	campaign.UpdatedAt = time.Now().UTC()
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}
	s.invalidateQuotes(ctx, tenantID)
	return campaign, nil
}

func (s *campaignService) DeactivateCampaign(ctx context.Context, tenantID, campaignID uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.loadGuarded(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.Active {
		return campaign, nil
	}

	campaign.Active = false
	campaign.UpdatedAt = time.Now().UTC()
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to deactivate campaign: %w", err)
	}
	s.invalidateQuotes(ctx, tenantID)
	return campaign, nil
}

func (s *campaignService) ListCampaigns(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error) {
	return s.campaignRepo.List(ctx, tenantID, limit, offset)
}

func (s *campaignService) ListActiveCampaigns(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]ActiveCampaignView, error) {
	campaigns, err := s.campaignRepo.ListActive(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	views := make([]ActiveCampaignView, 0, len(campaigns))
	for _, campaign := range campaigns {
		views = append(views, ActiveCampaignView{
			Campaign:      campaign,
			RemainingDays: campaign.RemainingDays(asOf),
		})
	}
	return views, nil
}

// AssignProduct attaches a campaign to a product, capturing the
// product's current price as the original and validating the discounted
// price against it. Resolution later trusts this stored invariant.
func (s *campaignService) AssignProduct(ctx context.Context, tenantID, campaignID, productID uuid.UUID, discountedPrice decimal.Decimal) (*models.ProductCampaign, error) {
	campaign, err := s.loadGuarded(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(product.TenantID, tenantID); err != nil {
		return nil, err
	}

	assignment, err := models.NewProductCampaign(tenantID, product.ID, campaign.ID, product.Price, discountedPrice)
	if err != nil {
		return nil, err
	}
	if err := s.campaignRepo.AssignProduct(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to assign product to campaign: %w", err)
	}
	s.invalidateQuotes(ctx, tenantID)
	return assignment, nil
}

func (s *campaignService) AssignCategory(ctx context.Context, tenantID, campaignID, categoryID uuid.UUID) (*models.CategoryCampaign, error) {
	campaign, err := s.loadGuarded(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(category.TenantID, tenantID); err != nil {
		return nil, err
	}

	assignment := &models.CategoryCampaign{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CategoryID: category.ID,
		CampaignID: campaign.ID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.campaignRepo.AssignCategory(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to assign category to campaign: %w", err)
	}
	s.invalidateQuotes(ctx, tenantID)
	return assignment, nil
}

func (s *campaignService) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	count, err := s.campaignRepo.DeactivateExpired(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired campaigns: %w", err)
	}
	if count > 0 {
		log.Printf("deactivated %d expired campaign(s)", count)
	}
	return count, nil
}
