package handlers

import (
	"net/http"
	"time"

	"commercehub/internal/common"
	"commercehub/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CampaignHandlers handles HTTP requests for campaigns and price
// resolution
type CampaignHandlers struct {
	campaignService services.CampaignService
	pricingService  services.PricingService
}

func NewCampaignHandlers(campaignService services.CampaignService, pricingService services.PricingService) *CampaignHandlers {
	return &CampaignHandlers{
		campaignService: campaignService,
		pricingService:  pricingService,
	}
}

type campaignRequest struct {
	Name            string    `json:"name"`
	DiscountPercent string    `json:"discount_percent"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

func (r *campaignRequest) discount() (decimal.Decimal, error) {
	return decimal.NewFromString(r.DiscountPercent)
}

// CreateCampaign handles POST /campaigns
func (h *CampaignHandlers) CreateCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req campaignRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	discount, err := req.discount()
	if err != nil {
		return common.SendValidationError(c, "discount_percent", "must be a decimal number")
	}
	if err := common.ValidateDateRange(req.StartsAt, req.EndsAt); err != nil {
		return common.SendClientError(c, err.Error())
	}

	campaign, err := h.campaignService.CreateCampaign(ctx, tenantID, req.Name, discount, req.StartsAt, req.EndsAt)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, campaign)
}

// GetCampaign handles GET /campaigns/:id
func (h *CampaignHandlers) GetCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	campaignID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	campaign, err := h.campaignService.GetCampaign(ctx, tenantID, campaignID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// UpdateCampaign handles PUT /campaigns/:id
func (h *CampaignHandlers) UpdateCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	campaignID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req campaignRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	discount, err := req.discount()
	if err != nil {
		return common.SendValidationError(c, "discount_percent", "must be a decimal number")
	}
	if err := common.ValidateDateRange(req.StartsAt, req.EndsAt); err != nil {
		return common.SendClientError(c, err.Error())
	}

	campaign, err := h.campaignService.UpdateCampaign(ctx, tenantID, campaignID, req.Name, discount, req.StartsAt, req.EndsAt)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// DeactivateCampaign handles POST /campaigns/:id/deactivate
func (h *CampaignHandlers) DeactivateCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	campaignID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	campaign, err := h.campaignService.DeactivateCampaign(ctx, tenantID, campaignID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// ListCampaigns handles GET /campaigns; ?active=true returns the active
// view with remaining days
func (h *CampaignHandlers) ListCampaigns(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if c.QueryParam("active") == "true" {
		views, err := h.campaignService.ListActiveCampaigns(ctx, tenantID, time.Now().UTC())
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, views)
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	campaigns, err := h.campaignService.ListCampaigns(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, campaigns)
}

// AssignProduct handles POST /campaigns/:id/products
func (h *CampaignHandlers) AssignProduct(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	campaignID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		ProductID       string `json:"product_id"`
		DiscountedPrice string `json:"discounted_price"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	productID, err := common.ValidateUUID(req.ProductID, "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	discountedPrice, err := decimal.NewFromString(req.DiscountedPrice)
	if err != nil {
		return common.SendValidationError(c, "discounted_price", "must be a decimal number")
	}
	if err := common.ValidateNonNegativeAmount(discountedPrice, "discounted_price"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	assignment, err := h.campaignService.AssignProduct(ctx, tenantID, campaignID, productID, discountedPrice)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, assignment)
}

// AssignCategory handles POST /campaigns/:id/categories
func (h *CampaignHandlers) AssignCategory(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	campaignID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		CategoryID string `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	categoryID, err := common.ValidateUUID(req.CategoryID, "category_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	assignment, err := h.campaignService.AssignCategory(ctx, tenantID, campaignID, categoryID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, assignment)
}

// ResolvePrice handles GET /products/:id/price with optional as_of
// (RFC 3339)
func (h *CampaignHandlers) ResolvePrice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	// The zero asOf lets the service resolve "now" and use its quote
	// cache; an explicit as_of pins the instant and bypasses it.
	var asOf time.Time
	if asOfParam := c.QueryParam("as_of"); asOfParam != "" {
		parsed, err := time.Parse(time.RFC3339, asOfParam)
		if err != nil {
			return common.SendValidationError(c, "as_of", "must be an RFC 3339 timestamp")
		}
		asOf = parsed.UTC()
	}

	resolution, err := h.pricingService.ResolvePrice(ctx, tenantID, productID, asOf)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, resolution)
}
