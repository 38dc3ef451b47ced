package handlers

import (
	"net/http"

	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const maxDescriptionLength = 2000

// ProductHandlers handles HTTP requests for the product catalog
type ProductHandlers struct {
	catalogService services.CatalogService
}

func NewProductHandlers(catalogService services.CatalogService) *ProductHandlers {
	return &ProductHandlers{catalogService: catalogService}
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		CategoryID        *string `json:"category_id"`
		Name              string  `json:"name"`
		Description       *string `json:"description"`
		Price             string  `json:"price"`
		StockQuantity     int     `json:"stock_quantity"`
		LowStockThreshold int     `json:"low_stock_threshold"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateOptionalString(req.Description, "description", maxDescriptionLength); err != nil {
		return common.SendValidationError(c, "description", err.Error())
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return common.SendValidationError(c, "price", "must be a decimal number")
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		parsed, err := common.ValidateUUID(*req.CategoryID, "category_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		categoryID = &parsed
	}

	product, err := h.catalogService.CreateProduct(ctx, &services.CreateProductRequest{
		TenantID:          tenantID,
		CategoryID:        categoryID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.catalogService.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// ListProducts handles GET /products; supports search via ?q= and
// ?low_stock=true
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if c.QueryParam("low_stock") == "true" {
		products, err := h.catalogService.ListLowStockProducts(ctx, tenantID)
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, products)
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if query := c.QueryParam("q"); query != "" {
		filter := &models.ProductSearchFilter{
			Query:     query,
			SortBy:    c.QueryParam("sort_by"),
			SortOrder: c.QueryParam("sort_order"),
			Limit:     limit,
			Offset:    offset,
		}
		if categoryParam := c.QueryParam("category_id"); categoryParam != "" {
			categoryID, err := common.ValidateUUID(categoryParam, "category_id")
			if err != nil {
				return common.SendClientError(c, err.Error())
			}
			filter.CategoryID = &categoryID
		}
		products, err := h.catalogService.SearchProducts(ctx, tenantID, filter)
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, products)
	}

	products, err := h.catalogService.ListProducts(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.catalogService.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req struct {
		Name              *string `json:"name"`
		Description       *string `json:"description"`
		Price             *string `json:"price"`
		LowStockThreshold *int    `json:"low_stock_threshold"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		if err := common.ValidateOptionalString(req.Description, "description", maxDescriptionLength); err != nil {
			return common.SendValidationError(c, "description", err.Error())
		}
		existing.Description = req.Description
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			return common.SendValidationError(c, "price", "must be a decimal number")
		}
		existing.Price = price
	}
	if req.LowStockThreshold != nil {
		existing.LowStockThreshold = *req.LowStockThreshold
	}

	if err := h.catalogService.UpdateProduct(ctx, tenantID, existing); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

// RestockProduct handles POST /products/:id/restock
func (h *ProductHandlers) RestockProduct(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", 1000000); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}

	if err := h.catalogService.RestockProduct(ctx, tenantID, productID, req.Quantity); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
