package handlers

import (
	"context"
	"net/http"

	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReturnHandlers handles HTTP requests for return requests
type ReturnHandlers struct {
	returnService services.ReturnService
}

func NewReturnHandlers(returnService services.ReturnService) *ReturnHandlers {
	return &ReturnHandlers{returnService: returnService}
}

// CreateReturnRequest handles POST /returns
func (h *ReturnHandlers) CreateReturnRequest(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		OrderID     string  `json:"order_id"`
		OrderLineID string  `json:"order_line_id"`
		Quantity    int     `json:"quantity"`
		Reason      string  `json:"reason"`
		Comments    *string `json:"comments"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	orderID, err := common.ValidateUUID(req.OrderID, "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	orderLineID, err := common.ValidateUUID(req.OrderLineID, "order_line_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", 10000); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}
	if err := common.ValidateRequiredString(req.Reason, "reason"); err != nil {
		return common.SendValidationError(c, "reason", err.Error())
	}

	rr, err := h.returnService.CreateReturnRequest(ctx, tenantID, orderID, orderLineID, req.Quantity, req.Reason, req.Comments)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, rr)
}

// GetReturnRequest handles GET /returns/:id
func (h *ReturnHandlers) GetReturnRequest(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	requestID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	rr, err := h.returnService.GetReturnRequest(ctx, tenantID, requestID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, rr)
}

// ListReturnRequests handles GET /returns with optional status and
// order_id filters
func (h *ReturnHandlers) ListReturnRequests(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if orderParam := c.QueryParam("order_id"); orderParam != "" {
		orderID, err := common.ValidateUUID(orderParam, "order_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		requests, err := h.returnService.ListReturnRequestsByOrder(ctx, tenantID, orderID)
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, requests)
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if status := c.QueryParam("status"); status != "" {
		requests, err := h.returnService.ListReturnRequestsByStatus(ctx, tenantID, models.ReturnStatus(status), limit, offset)
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, requests)
	}

	requests, err := h.returnService.ListReturnRequests(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *ReturnHandlers) applyResolution(c echo.Context, apply func(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error)) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	requestID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Response *string `json:"response"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	rr, err := apply(ctx, tenantID, requestID, req.Response)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, rr)
}

// ApproveReturnRequest handles POST /returns/:id/approve
func (h *ReturnHandlers) ApproveReturnRequest(c echo.Context) error {
	return h.applyResolution(c, h.returnService.ApproveReturnRequest)
}

// RejectReturnRequest handles POST /returns/:id/reject
func (h *ReturnHandlers) RejectReturnRequest(c echo.Context) error {
	return h.applyResolution(c, h.returnService.RejectReturnRequest)
}

// MarkReturnProcessing handles POST /returns/:id/process
func (h *ReturnHandlers) MarkReturnProcessing(c echo.Context) error {
	return h.applyResolution(c, h.returnService.MarkReturnProcessing)
}

// CompleteReturnRequest handles POST /returns/:id/complete
func (h *ReturnHandlers) CompleteReturnRequest(c echo.Context) error {
	return h.applyResolution(c, h.returnService.CompleteReturnRequest)
}
