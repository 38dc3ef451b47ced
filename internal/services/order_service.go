package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"commercehub/internal/common"
	"commercehub/internal/models"
	"commercehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService drives the order aggregate: line edits while pending,
// the confirm/ship/deliver/complete lifecycle, and the stock movements
// that bracket it. Every operation runs the tenant guard against the
// loaded aggregate before touching it.
type OrderService interface {
	CreateOrder(ctx context.Context, tenantID, customerID, shippingAddressID uuid.UUID) (*models.Order, error)
	GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListOrdersByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, limit, offset int) ([]*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Order, error)

	// AddLine appends or merges a line on a pending order. A nil unit
	// price asks the pricing resolver for the product's current
	// effective price; an explicit price is recorded as given.
	AddLine(ctx context.Context, tenantID, orderID, productID uuid.UUID, quantity int, unitPrice *decimal.Decimal) (*models.Order, error)
	RemoveLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*models.Order, error)

	ConfirmOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	ShipOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	DeliverOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	MarkOrderReceived(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	CancelOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	MarkPaymentFailed(ctx context.Context, tenantID, orderID uuid.UUID, reason string) error
}

type orderService struct {
	orderRepo     repositories.OrderRepository
	productRepo   repositories.ProductRepository
	customerRepo  repositories.CustomerRepository
	pricing       PricingService
	notifications NotificationService
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	customerRepo repositories.CustomerRepository,
	pricing PricingService,
	notifications NotificationService,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		pricing:       pricing,
		notifications: notifications,
	}
}

// loadGuarded fetches the aggregate and runs the tenant guard. A
// cross-tenant hit fails loudly with the mismatch, never as not found.
func (s *orderService) loadGuarded(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(order.TenantID, tenantID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) CreateOrder(ctx context.Context, tenantID, customerID, shippingAddressID uuid.UUID) (*models.Order, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(customer.TenantID, tenantID); err != nil {
		return nil, err
	}
	address, err := s.customerRepo.GetAddressByID(ctx, shippingAddressID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(address.TenantID, tenantID); err != nil {
		return nil, err
	}
	if address.CustomerID != customerID {
		return nil, fmt.Errorf("%w: address %s does not belong to customer %s", common.ErrValidation, shippingAddressID, customerID)
	}

	order, err := models.NewOrder(tenantID, customerID, shippingAddressID)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	return s.loadGuarded(ctx, tenantID, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return s.orderRepo.List(ctx, tenantID, limit, offset)
}

func (s *orderService) ListOrdersByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, limit, offset int) ([]*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", common.ErrValidation, status)
	}
	return s.orderRepo.ListByStatus(ctx, tenantID, status, limit, offset)
}

func (s *orderService) ListOrdersByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return s.orderRepo.ListByCustomer(ctx, tenantID, customerID, limit, offset)
}

func (s *orderService) AddLine(ctx context.Context, tenantID, orderID, productID uuid.UUID, quantity int, unitPrice *decimal.Decimal) (*models.Order, error) {
	order, err := s.loadGuarded(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := common.EnsureTenant(product.TenantID, tenantID); err != nil {
		return nil, err
	}

	price := decimal.Zero
	if unitPrice != nil {
		price = *unitPrice
	} else {
		quote, err := s.pricing.ResolvePrice(ctx, tenantID, productID, time.Time{})
		if err != nil {
			return nil, err
		}
		price = quote.EffectivePrice
	}

	if err := order.AddLine(productID, quantity, price); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveLines(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order lines: %w", err)
	}
	return order, nil
}

func (s *orderService) RemoveLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*models.Order, error) {
	order, err := s.loadGuarded(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveLines(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order lines: %w", err)
	}
	return order, nil
}

// ConfirmOrder reserves stock line by line through the conditional
// decrement, then transitions the aggregate. Any line failing the
// decrement rolls back the lines already reserved and leaves the order
// untouched.
func (s *orderService) ConfirmOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadGuarded(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: can only confirm order in status %q, current status %q",
			common.ErrInvalidStateTransition, models.OrderStatusPending, order.Status)
	}
	if len(order.Lines) == 0 {
		return nil, fmt.Errorf("%w: confirm requires at least one line", common.ErrEmptyOrder)
	}

	reserved := make([]*models.OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		if err := s.productRepo.DecrementStock(ctx, tenantID, line.ProductID, line.Quantity); err != nil {
			s.releaseStock(ctx, tenantID, reserved)
			return nil, err
		}
		reserved = append(reserved, line)
	}

	if err := order.Confirm(); err != nil {
		s.releaseStock(ctx, tenantID, reserved)
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		s.releaseStock(ctx, tenantID, reserved)
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	s.notifications.EmitNewOrder(ctx, order)
	s.checkLowStock(ctx, tenantID, order.Lines)
	return order, nil
}

func (s *orderService) releaseStock(ctx context.Context, tenantID uuid.UUID, lines []*models.OrderLine) {
	for _, line := range lines {
		if err := s.productRepo.RestoreStock(ctx, tenantID, line.ProductID, line.Quantity); err != nil {
			log.Printf("failed to restore %d unit(s) of product %s for tenant %s: %v",
				line.Quantity, line.ProductID, tenantID, err)
		}
	}
}

// checkLowStock emits at most one low stock notification per product
// whose post-decrement level sits at or below its threshold.
func (s *orderService) checkLowStock(ctx context.Context, tenantID uuid.UUID, lines []*models.OrderLine) {
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true

		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			log.Printf("low stock check skipped for product %s: %v", line.ProductID, err)
			continue
		}
		if product.LowOnStock() {
			s.notifications.EmitLowStock(ctx, product)
		}
	}
}

func (s *orderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, apply func(*models.Order) error) (*models.Order, error) {
	order, err := s.loadGuarded(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := apply(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, nil
}

func (s *orderService) ShipOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, tenantID, orderID, (*models.Order).Ship)
}

func (s *orderService) DeliverOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, tenantID, orderID, (*models.Order).Deliver)
}

func (s *orderService) MarkOrderReceived(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, tenantID, orderID, (*models.Order).MarkReceived)
}

// CancelOrder cancels and, when stock was already reserved at confirm
// time, releases it back to the catalog.
func (s *orderService) CancelOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadGuarded(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	hadReservedStock := order.Status == models.OrderStatusProcessing || order.Status == models.OrderStatusShipped
	if err := order.Cancel(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if hadReservedStock {
		s.releaseStock(ctx, tenantID, order.Lines)
	}
	return order, nil
}

func (s *orderService) MarkOrderPaid(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, tenantID, orderID, (*models.Order).MarkPaid)
}

// MarkPaymentFailed records a failed settlement attempt. The order's
// state is left alone; the failure is surfaced as a critical
// notification only.
func (s *orderService) MarkPaymentFailed(ctx context.Context, tenantID, orderID uuid.UUID, reason string) error {
	order, err := s.loadGuarded(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = "unspecified payment failure"
	}
	s.notifications.EmitPaymentFailed(ctx, order.TenantID, order.ID, reason)
	return nil
}
