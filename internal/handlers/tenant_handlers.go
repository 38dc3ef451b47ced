package handlers

import (
	"net/http"

	"commercehub/internal/common"
	"commercehub/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers handles HTTP requests for tenant administration
type TenantHandlers struct {
	tenantService services.TenantService
}

func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// CreateTenant handles POST /tenants
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.tenantService.Create(ctx, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

// GetTenant handles GET /tenants/:id
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	tenant, err := h.tenantService.GetByID(ctx, tenantID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant handles PUT /tenants/:id
func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req services.UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.ID = tenantID

	if err := h.tenantService.Update(ctx, &req); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTenants handles GET /tenants
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	tenants, err := h.tenantService.List(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, tenants)
}
