package services

import (
	"context"
	"fmt"
	"log"

	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/repositories"

	"github.com/google/uuid"
)

// NotificationService persists notifications for core events and serves
// the read/unread surface. Emission never fails the business operation
// that triggered it; emit methods log and swallow storage errors.
type NotificationService interface {
	EmitNewOrder(ctx context.Context, order *models.Order)
	EmitLowStock(ctx context.Context, product *models.Product)
	EmitReturnRequest(ctx context.Context, rr *models.ReturnRequest)
	EmitPaymentFailed(ctx context.Context, tenantID, orderID uuid.UUID, reason string)

	List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, tenantID, notificationID uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, tenantID uuid.UUID) error
	CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) emit(ctx context.Context, tenantID uuid.UUID, nType models.NotificationType, title, message string, entityType string, entityID uuid.UUID, data models.JSONB) {
	notification := &models.Notification{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Type:       nType,
		Priority:   models.PriorityForType(nType),
		Title:      title,
		Message:    message,
		EntityType: &entityType,
		EntityID:   &entityID,
		Data:       data,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("failed to emit %s notification for tenant %s: %v", nType, tenantID, err)
	}
}

func (s *notificationService) EmitNewOrder(ctx context.Context, order *models.Order) {
	s.emit(ctx, order.TenantID, models.NotificationTypeNewOrder,
		"New order confirmed",
		fmt.Sprintf("Order %s confirmed with %d line(s), total %s", order.ID, len(order.Lines), order.TotalAmount.StringFixed(2)),
		"order", order.ID,
		models.JSONB{"total_amount": order.TotalAmount.String(), "line_count": len(order.Lines)})
}

func (s *notificationService) EmitLowStock(ctx context.Context, product *models.Product) {
	s.emit(ctx, product.TenantID, models.NotificationTypeLowStock,
		"Low stock alert",
		fmt.Sprintf("Product %q is down to %d unit(s), threshold %d", product.Name, product.StockQuantity, product.LowStockThreshold),
		"product", product.ID,
		models.LowStockData{
			ProductID:    product.ID,
			ProductName:  product.Name,
			CurrentStock: product.StockQuantity,
			Threshold:    product.LowStockThreshold,
		}.JSONB())
}

func (s *notificationService) EmitReturnRequest(ctx context.Context, rr *models.ReturnRequest) {
	s.emit(ctx, rr.TenantID, models.NotificationTypeReturnRequest,
		"Return requested",
		fmt.Sprintf("Return of %d unit(s) requested for order %s: %s", rr.Quantity, rr.OrderID, rr.Reason),
		"return_request", rr.ID,
		models.JSONB{"order_id": rr.OrderID.String(), "quantity": rr.Quantity, "reason": rr.Reason})
}

func (s *notificationService) EmitPaymentFailed(ctx context.Context, tenantID, orderID uuid.UUID, reason string) {
	s.emit(ctx, tenantID, models.NotificationTypePaymentFailed,
		"Payment failed",
		fmt.Sprintf("Payment for order %s failed: %s", orderID, reason),
		"order", orderID,
		models.JSONB{"order_id": orderID.String(), "reason": reason})
}

func (s *notificationService) List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	return s.notificationRepo.List(ctx, tenantID, unreadOnly, limit, offset)
}

func (s *notificationService) MarkRead(ctx context.Context, tenantID, notificationID uuid.UUID) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(notification.TenantID, tenantID); err != nil {
		return nil, err
	}

	notification.MarkRead()
	if err := s.notificationRepo.Update(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, tenantID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, tenantID)
}

func (s *notificationService) CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.notificationRepo.CountUnread(ctx, tenantID)
}
