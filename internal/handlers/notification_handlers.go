package handlers

import (
	"net/http"

	"commercehub/internal/common"
	"commercehub/internal/services"

	"github.com/labstack/echo/v4"
)

// NotificationHandlers handles HTTP requests for notifications
type NotificationHandlers struct {
	notificationService services.NotificationService
}

func NewNotificationHandlers(notificationService services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notificationService: notificationService}
}

// ListNotifications handles GET /notifications with optional
// ?unread=true filter
func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset, err := parsePagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	unreadOnly := c.QueryParam("unread") == "true"
	notifications, err := h.notificationService.List(ctx, tenantID, unreadOnly, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// CountUnread handles GET /notifications/unread-count
func (h *NotificationHandlers) CountUnread(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	count, err := h.notificationService.CountUnread(ctx, tenantID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"unread_count": count})
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandlers) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	notificationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	notification, err := h.notificationService.MarkRead(ctx, tenantID, notificationID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, notification)
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandlers) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.notificationService.MarkAllRead(ctx, tenantID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
