package handlers

import (
	"context"
	"net/http"

	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderService
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		CustomerID        string `json:"customer_id"`
		ShippingAddressID string `json:"shipping_address_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customerID, err := common.ValidateUUID(req.CustomerID, "customer_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	addressID, err := common.ValidateUUID(req.ShippingAddressID, "shipping_address_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.CreateOrder(ctx, tenantID, customerID, addressID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /orders with optional status and customer_id filters
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if customerParam := c.QueryParam("customer_id"); customerParam != "" {
		customerID, err := common.ValidateUUID(customerParam, "customer_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		orders, err := h.orderService.ListOrdersByCustomer(ctx, tenantID, customerID, limit, offset)
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, orders)
	}

	if status := c.QueryParam("status"); status != "" {
		orders, err := h.orderService.ListOrdersByStatus(ctx, tenantID, models.OrderStatus(status), limit, offset)
		if err != nil {
			return common.SendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, orders)
	}

	orders, err := h.orderService.ListOrders(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// AddLine handles POST /orders/:id/lines
func (h *OrderHandlers) AddLine(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		ProductID string  `json:"product_id"`
		Quantity  int     `json:"quantity"`
		UnitPrice *string `json:"unit_price"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	productID, err := common.ValidateUUID(req.ProductID, "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", 10000); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}

	// Omitting unit_price asks the pricing resolver for the current
	// effective price.
	var unitPrice *decimal.Decimal
	if req.UnitPrice != nil {
		parsed, err := decimal.NewFromString(*req.UnitPrice)
		if err != nil {
			return common.SendValidationError(c, "unit_price", "must be a decimal number")
		}
		if err := common.ValidatePositiveAmount(parsed, "unit_price", decimal.NewFromInt(1000000)); err != nil {
			return common.SendValidationError(c, "unit_price", err.Error())
		}
		unitPrice = &parsed
	}

	order, err := h.orderService.AddLine(ctx, tenantID, orderID, productID, req.Quantity, unitPrice)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// RemoveLine handles DELETE /orders/:id/lines/:lineId
func (h *OrderHandlers) RemoveLine(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	lineID, err := common.ValidateUUID(c.Param("lineId"), "lineId")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.RemoveLine(ctx, tenantID, orderID, lineID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// applyTransition factors the shared shape of the lifecycle endpoints:
// tenant from context, order ID from the path, one aggregate method.
func (h *OrderHandlers) applyTransition(c echo.Context, apply func(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := apply(ctx, tenantID, orderID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// ConfirmOrder handles POST /orders/:id/confirm
func (h *OrderHandlers) ConfirmOrder(c echo.Context) error {
	return h.applyTransition(c, h.orderService.ConfirmOrder)
}

// ShipOrder handles POST /orders/:id/ship
func (h *OrderHandlers) ShipOrder(c echo.Context) error {
	return h.applyTransition(c, h.orderService.ShipOrder)
}

// DeliverOrder handles POST /orders/:id/deliver
func (h *OrderHandlers) DeliverOrder(c echo.Context) error {
	return h.applyTransition(c, h.orderService.DeliverOrder)
}

// MarkOrderReceived handles POST /orders/:id/receive
func (h *OrderHandlers) MarkOrderReceived(c echo.Context) error {
	return h.applyTransition(c, h.orderService.MarkOrderReceived)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandlers) CancelOrder(c echo.Context) error {
	return h.applyTransition(c, h.orderService.CancelOrder)
}

// MarkOrderPaid handles POST /orders/:id/pay
func (h *OrderHandlers) MarkOrderPaid(c echo.Context) error {
	return h.applyTransition(c, h.orderService.MarkOrderPaid)
}

// MarkPaymentFailed handles POST /orders/:id/payment-failed
func (h *OrderHandlers) MarkPaymentFailed(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.orderService.MarkPaymentFailed(ctx, tenantID, orderID, req.Reason); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}
