package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"commercehub/internal/common"
)

// Campaign is a time-bounded percentage discount owned by a tenant. It
// applies to products directly (ProductCampaign) or to every product of
// a category (CategoryCampaign). Campaigns are never retroactive:
// resolution always evaluates an explicit instant.
type Campaign struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Name            string          `json:"name" db:"name"`
	DiscountPercent decimal.Decimal `json:"discount_percent" db:"discount_percent"`
	StartsAt        time.Time       `json:"starts_at" db:"starts_at"`
	EndsAt          time.Time       `json:"ends_at" db:"ends_at"`
	Active          bool            `json:"active" db:"active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// NewCampaign validates and builds a campaign. Discount must be in
// (0,100], and the window must be ordered.
func NewCampaign(tenantID uuid.UUID, name string, discountPercent decimal.Decimal, startsAt, endsAt time.Time) (*Campaign, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant ID is required", common.ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: campaign name is required", common.ErrValidation)
	}
	if err := ValidateDiscountPercent(discountPercent); err != nil {
		return nil, err
	}
	if !startsAt.Before(endsAt) {
		return nil, fmt.Errorf("%w: campaign must start before it ends", common.ErrValidation)
	}

	now := time.Now().UTC()
	return &Campaign{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Name:            strings.TrimSpace(name),
		DiscountPercent: discountPercent,
		StartsAt:        startsAt.UTC(),
		EndsAt:          endsAt.UTC(),
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ValidateDiscountPercent checks the (0,100] bound.
func ValidateDiscountPercent(p decimal.Decimal) error {
	if p.LessThanOrEqual(decimal.Zero) || p.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: discount percent must be in (0,100]", common.ErrValidation)
	}
	return nil
}

// IsCurrentlyActiveAt reports whether the campaign applies at the given
// instant: the active flag is set and asOf falls inside the window.
func (c *Campaign) IsCurrentlyActiveAt(asOf time.Time) bool {
	return c.Active && !asOf.Before(c.StartsAt) && !asOf.After(c.EndsAt)
}

// RemainingDays returns whole days until the campaign ends, zero when it
// is not currently active.
func (c *Campaign) RemainingDays(asOf time.Time) int {
	if !c.IsCurrentlyActiveAt(asOf) {
		return 0
	}
	days := int(c.EndsAt.Sub(asOf).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ProductCampaign attaches a campaign to one product with explicit
// original and discounted prices captured at assignment time.
type ProductCampaign struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	ProductID       uuid.UUID       `json:"product_id" db:"product_id"`
	CampaignID      uuid.UUID       `json:"campaign_id" db:"campaign_id"`
	OriginalPrice   decimal.Decimal `json:"original_price" db:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price" db:"discounted_price"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// NewProductCampaign enforces originalPrice > 0 and
// 0 <= discountedPrice < originalPrice at assignment time. Resolution
// trusts this stored invariant and never re-checks it.
func NewProductCampaign(tenantID, productID, campaignID uuid.UUID, originalPrice, discountedPrice decimal.Decimal) (*ProductCampaign, error) {
	if productID == uuid.Nil || campaignID == uuid.Nil {
		return nil, fmt.Errorf("%w: product ID and campaign ID are required", common.ErrValidation)
	}
	if originalPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: original price must be positive", common.ErrValidation)
	}
	if discountedPrice.IsNegative() || discountedPrice.GreaterThanOrEqual(originalPrice) {
		return nil, fmt.Errorf("%w: discounted price must be in [0, original price)", common.ErrValidation)
	}

	return &ProductCampaign{
		ID:              uuid.New(),
		TenantID:        tenantID,
		ProductID:       productID,
		CampaignID:      campaignID,
		OriginalPrice:   originalPrice,
		DiscountedPrice: discountedPrice,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// CategoryCampaign attaches a campaign to a whole category. The
// effective price is derived from the campaign's discount percent at
// resolution time.
type CategoryCampaign struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TenantID   uuid.UUID `json:"tenant_id" db:"tenant_id"`
	CategoryID uuid.UUID `json:"category_id" db:"category_id"`
	CampaignID uuid.UUID `json:"campaign_id" db:"campaign_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PriceResolution is the outcome of campaign-based price resolution for
// one product at one instant.
type PriceResolution struct {
	ProductID         uuid.UUID       `json:"product_id"`
	BasePrice         decimal.Decimal `json:"base_price"`
	EffectivePrice    decimal.Decimal `json:"effective_price"`
	AppliedCampaignID *uuid.UUID      `json:"applied_campaign_id,omitempty"`
	ResolvedAt        time.Time       `json:"resolved_at"`
}

// Discounted reports whether a campaign actually lowered the price.
func (r *PriceResolution) Discounted() bool {
	return r.AppliedCampaignID != nil && r.EffectivePrice.LessThan(r.BasePrice)
}
