package services

import (
	"context"
	"fmt"
	"time"

	"commercehub/internal/caching"
	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// priceQuoteTTL bounds staleness of cached quotes. Campaign windows
// open and close on their own clock, so quotes expire quickly instead
// of being invalidated on every campaign write.
const priceQuoteTTL = 1 * time.Minute

// PricingService resolves the effective selling price of a product at a
// given instant from the active campaigns that cover it.
type PricingService interface {
	// ResolvePrice applies the campaign precedence rules: product-level
	// offers override category-level ones whenever any exist; within the
	// winning tier the lowest effective price wins, ties broken by
	// earliest campaign start. With no active campaign the base price is
	// returned unchanged. The zero asOf means "now"; only now-resolutions
	// go through the quote cache, a quote pinned to an explicit instant
	// must never be served for a different one.
	ResolvePrice(ctx context.Context, tenantID, productID uuid.UUID, asOf time.Time) (*models.PriceResolution, error)
}

type pricingService struct {
	productRepo  repositories.ProductRepository
	campaignRepo repositories.CampaignRepository
	cache        caching.CacheService
}

func NewPricingService(productRepo repositories.ProductRepository, campaignRepo repositories.CampaignRepository, cache caching.CacheService) PricingService {
	return &pricingService{
		productRepo:  productRepo,
		campaignRepo: campaignRepo,
		cache:        cache,
	}
}

// priceOffer is one candidate effective price during resolution.
type priceOffer struct {
	campaignID     uuid.UUID
	effectivePrice decimal.Decimal
	startsAt       time.Time
}

func (s *pricingService) ResolvePrice(ctx context.Context, tenantID, productID uuid.UUID, asOf time.Time) (*models.PriceResolution, error) {
	cacheable := asOf.IsZero()
	if cacheable {
		asOf = time.Now().UTC()
	}
	if cacheable && s.cache != nil {
		if cached, err := s.cache.GetPriceQuote(ctx, tenantID, productID); err == nil && cached != nil {
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

	offers, err := s.collectOffers(ctx, tenantID, product, asOf)
	if err != nil {
		return nil, err
	}

	resolution := &models.PriceResolution{
		ProductID:      product.ID,
		BasePrice:      product.Price,
		EffectivePrice: product.Price,
		ResolvedAt:     asOf,
	}
	if best := bestOffer(offers); best != nil && best.effectivePrice.LessThan(product.Price) {
		id := best.campaignID
		resolution.AppliedCampaignID = &id
		resolution.EffectivePrice = best.effectivePrice
	}

	if cacheable && s.cache != nil {
		// Resolution stays correct without the cache.
		_ = s.cache.SetPriceQuote(ctx, tenantID, resolution, priceQuoteTTL)
	}
	return resolution, nil
}

// collectOffers gathers the winning tier of candidates: product-level
// assignments override category-level ones whenever any exist.
func (s *pricingService) collectOffers(ctx context.Context, tenantID uuid.UUID, product *models.Product, asOf time.Time) ([]priceOffer, error) {
	productRows, err := s.campaignRepo.ActiveProductCampaigns(ctx, tenantID, product.ID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load product campaigns: %w", err)
	}
	if len(productRows) > 0 {
		offers := make([]priceOffer, 0, len(productRows))
		for _, row := range productRows {
			offers = append(offers, priceOffer{
				campaignID:     row.Campaign.ID,
				effectivePrice: row.Assignment.DiscountedPrice,
				startsAt:       row.Campaign.StartsAt,
			})
		}
		return offers, nil
	}

	if product.CategoryID == nil {
		return nil, nil
	}
	categoryRows, err := s.campaignRepo.ActiveCategoryCampaigns(ctx, tenantID, *product.CategoryID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load category campaigns: %w", err)
	}
	hundred := decimal.NewFromInt(100)
	offers := make([]priceOffer, 0, len(categoryRows))
	for _, row := range categoryRows {
		effective := product.Price.Mul(hundred.Sub(row.Campaign.DiscountPercent)).Div(hundred)
		offers = append(offers, priceOffer{
			campaignID:     row.Campaign.ID,
			effectivePrice: effective,
			startsAt:       row.Campaign.StartsAt,
		})
	}
	return offers, nil
}

// bestOffer picks the lowest effective price, ties broken by earliest
// campaign start.
func bestOffer(offers []priceOffer) *priceOffer {
	var best *priceOffer
	for i := range offers {
		offer := &offers[i]
		switch {
		case best == nil:
			best = offer
		case offer.effectivePrice.LessThan(best.effectivePrice):
			best = offer
		case offer.effectivePrice.Equal(best.effectivePrice) && offer.startsAt.Before(best.startsAt):
			best = offer
		}
	}
	return best
}
