package models

import (
	"testing"
	"time"

	"commercehub/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCampaign(t *testing.T, discount int64, startsAt, endsAt time.Time) *Campaign {
	t.Helper()
	campaign, err := NewCampaign(uuid.New(), "Summer Sale", decimal.NewFromInt(discount), startsAt, endsAt)
	require.NoError(t, err)
	return campaign
}

func TestNewCampaign_Valid(t *testing.T) {
	now := time.Now().UTC()
	campaign := newTestCampaign(t, 20, now, now.Add(7*24*time.Hour))

	assert.True(t, campaign.Active)
	assert.Equal(t, "Summer Sale", campaign.Name)
}

func TestNewCampaign_DiscountBounds(t *testing.T) {
	now := time.Now().UTC()
	later := now.Add(time.Hour)

	tests := []struct {
		name     string
		discount decimal.Decimal
		wantErr  bool
	}{
		{"zero", decimal.Zero, true},
		{"negative", decimal.NewFromInt(-5), true},
		{"above hundred", decimal.NewFromInt(101), true},
		{"hundred allowed", decimal.NewFromInt(100), false},
		{"fractional", decimal.NewFromFloat(12.5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCampaign(uuid.New(), "Sale", tt.discount, now, later)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewCampaign_WindowMustBeOrdered(t *testing.T) {
	now := time.Now().UTC()

	_, err := NewCampaign(uuid.New(), "Sale", decimal.NewFromInt(10), now, now)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = NewCampaign(uuid.New(), "Sale", decimal.NewFromInt(10), now.Add(time.Hour), now)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestIsCurrentlyActiveAt(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	campaign := newTestCampaign(t, 15, start, end)

	assert.False(t, campaign.IsCurrentlyActiveAt(start.Add(-time.Second)))
	assert.True(t, campaign.IsCurrentlyActiveAt(start))
	assert.True(t, campaign.IsCurrentlyActiveAt(start.Add(10*24*time.Hour)))
	assert.True(t, campaign.IsCurrentlyActiveAt(end))
	assert.False(t, campaign.IsCurrentlyActiveAt(end.Add(time.Second)))

	campaign.Active = false
	assert.False(t, campaign.IsCurrentlyActiveAt(start.Add(10*24*time.Hour)),
		"deactivated campaign is never active inside its window")
}

func TestRemainingDays(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)
	campaign := newTestCampaign(t, 15, start, end)

	assert.Equal(t, 10, campaign.RemainingDays(start))
	assert.Equal(t, 3, campaign.RemainingDays(end.Add(-3*24*time.Hour)))
	assert.Equal(t, 0, campaign.RemainingDays(end.Add(time.Hour)), "expired campaign has no remaining days")
	assert.Equal(t, 0, campaign.RemainingDays(start.Add(-time.Hour)), "not yet started")
}

func TestNewProductCampaign_PriceInvariant(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	campaignID := uuid.New()

	tests := []struct {
		name       string
		original   decimal.Decimal
		discounted decimal.Decimal
		wantErr    bool
	}{
		{"valid", decimal.NewFromInt(100), decimal.NewFromInt(80), false},
		{"free allowed", decimal.NewFromInt(100), decimal.Zero, false},
		{"equal prices", decimal.NewFromInt(100), decimal.NewFromInt(100), true},
		{"discounted above original", decimal.NewFromInt(100), decimal.NewFromInt(120), true},
		{"negative discounted", decimal.NewFromInt(100), decimal.NewFromInt(-1), true},
		{"zero original", decimal.Zero, decimal.Zero, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProductCampaign(tenantID, productID, campaignID, tt.original, tt.discounted)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPriceResolution_Discounted(t *testing.T) {
	campaignID := uuid.New()

	full := &PriceResolution{
		ProductID:      uuid.New(),
		BasePrice:      decimal.NewFromInt(100),
		EffectivePrice: decimal.NewFromInt(100),
	}
	assert.False(t, full.Discounted())

	reduced := &PriceResolution{
		ProductID:         uuid.New(),
		BasePrice:         decimal.NewFromInt(100),
		EffectivePrice:    decimal.NewFromInt(80),
		AppliedCampaignID: &campaignID,
	}
	assert.True(t, reduced.Discounted())
}
