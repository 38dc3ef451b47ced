package handlers

import (
	"net/http"

	"commercehub/internal/common"
	"commercehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles HTTP requests for categories
type CategoryHandlers struct {
	catalogService services.CatalogService
}

func NewCategoryHandlers(catalogService services.CatalogService) *CategoryHandlers {
	return &CategoryHandlers{catalogService: catalogService}
}

// CreateCategory handles POST /categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		ParentID    *string `json:"parent_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		parsed, err := common.ValidateUUID(*req.ParentID, "parent_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		parentID = &parsed
	}

	category, err := h.catalogService.CreateCategory(ctx, &services.CreateCategoryRequest{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    parentID,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	categoryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	category, err := h.catalogService.GetCategory(ctx, tenantID, categoryID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	categories, err := h.catalogService.ListCategories(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}
