package services

import (
	"context"
	"fmt"

	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/repositories"

	"github.com/google/uuid"
)

// ReturnService drives the return request workflow hanging off
// delivered orders.
type ReturnService interface {
	// CreateReturnRequest validates the parent order: it must belong to
	// the tenant, be delivered or completed, and contain the referenced
	// line for the referenced product. Quantity may not exceed the
	// line's ordered quantity. Duplicate requests per line are allowed;
	// resolving conflicting ones is an admin decision, not a create-time
	// check.
	CreateReturnRequest(ctx context.Context, tenantID, orderID, orderLineID uuid.UUID, quantity int, reason string, comments *string) (*models.ReturnRequest, error)
	GetReturnRequest(ctx context.Context, tenantID, requestID uuid.UUID) (*models.ReturnRequest, error)
	ListReturnRequests(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReturnRequest, error)
	ListReturnRequestsByStatus(ctx context.Context, tenantID uuid.UUID, status models.ReturnStatus, limit, offset int) ([]*models.ReturnRequest, error)
	ListReturnRequestsByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.ReturnRequest, error)

	ApproveReturnRequest(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error)
	RejectReturnRequest(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error)
	MarkReturnProcessing(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error)
	CompleteReturnRequest(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error)
}

type returnService struct {
	returnRepo    repositories.ReturnRequestRepository
	orderRepo     repositories.OrderRepository
	productRepo   repositories.ProductRepository
	notifications NotificationService
}

func NewReturnService(
	returnRepo repositories.ReturnRequestRepository,
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	notifications NotificationService,
) ReturnService {
	return &returnService{
		returnRepo:    returnRepo,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		notifications: notifications,
	}
}

func (s *returnService) loadGuarded(ctx context.Context, tenantID, requestID uuid.UUID) (*models.ReturnRequest, error) {
	rr, err := s.returnRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(rr.TenantID, tenantID); err != nil {
		return nil, err
	}
	return rr, nil
}

func (s *returnService) CreateReturnRequest(ctx context.Context, tenantID, orderID, orderLineID uuid.UUID, quantity int, reason string, comments *string) (*models.ReturnRequest, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(order.TenantID, tenantID); err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusDelivered && order.Status != models.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: returns require a delivered order, current status %q",
			common.ErrInvalidStateTransition, order.Status)
	}

	line := order.LineByID(orderLineID)
	if line == nil {
		return nil, fmt.Errorf("%w: order line %s not found on order %s", common.ErrNotFound, orderLineID, orderID)
	}
	if quantity > line.Quantity {
		return nil, fmt.Errorf("%w: cannot return %d unit(s) of a line with quantity %d",
			common.ErrValidation, quantity, line.Quantity)
	}

	rr, err := models.NewReturnRequest(tenantID, order.ID, line.ID, line.ProductID, order.CustomerID, quantity, reason, comments)
	if err != nil {
		return nil, err
	}
	if err := s.returnRepo.Create(ctx, rr); err != nil {
		return nil, fmt.Errorf("failed to create return request: %w", err)
	}

	s.notifications.EmitReturnRequest(ctx, rr)
	return rr, nil
}

func (s *returnService) GetReturnRequest(ctx context.Context, tenantID, requestID uuid.UUID) (*models.ReturnRequest, error) {
	return s.loadGuarded(ctx, tenantID, requestID)
}

func (s *returnService) ListReturnRequests(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReturnRequest, error) {
	return s.returnRepo.List(ctx, tenantID, limit, offset)
}

func (s *returnService) ListReturnRequestsByStatus(ctx context.Context, tenantID uuid.UUID, status models.ReturnStatus, limit, offset int) ([]*models.ReturnRequest, error) {
	return s.returnRepo.ListByStatus(ctx, tenantID, status, limit, offset)
}

func (s *returnService) ListReturnRequestsByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.ReturnRequest, error) {
	return s.returnRepo.ListByOrder(ctx, tenantID, orderID)
}

func (s *returnService) resolve(ctx context.Context, tenantID, requestID uuid.UUID, response *string, apply func(*models.ReturnRequest, *string) error) (*models.ReturnRequest, error) {
	rr, err := s.loadGuarded(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if err := apply(rr, response); err != nil {
		return nil, err
	}
	if err := s.returnRepo.Update(ctx, rr); err != nil {
		return nil, fmt.Errorf("failed to update return request: %w", err)
	}
	return rr, nil
}

func (s *returnService) ApproveReturnRequest(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error) {
	return s.resolve(ctx, tenantID, requestID, response, (*models.ReturnRequest).Approve)
}

func (s *returnService) RejectReturnRequest(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error) {
	return s.resolve(ctx, tenantID, requestID, response, (*models.ReturnRequest).Reject)
}

func (s *returnService) MarkReturnProcessing(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error) {
	return s.resolve(ctx, tenantID, requestID, response, (*models.ReturnRequest).MarkProcessing)
}

// CompleteReturnRequest finishes the workflow and puts the returned
// units back into stock.
func (s *returnService) CompleteReturnRequest(ctx context.Context, tenantID, requestID uuid.UUID, response *string) (*models.ReturnRequest, error) {
	rr, err := s.resolve(ctx, tenantID, requestID, response, (*models.ReturnRequest).Complete)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.RestoreStock(ctx, tenantID, rr.ProductID, rr.Quantity); err != nil {
		return nil, fmt.Errorf("return completed but stock restore failed: %w", err)
	}
	return rr, nil
}
