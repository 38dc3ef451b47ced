package jobs

import (
	"context"
	"log"

	"commercehub/internal/repositories"
	"commercehub/internal/services"

	"github.com/google/uuid"
)

// StockAlertService scans a tenant's catalog for products at or below
// their low stock threshold and emits notifications through the
// emitter.
type StockAlertService struct {
	productRepo   repositories.ProductRepository
	notifications services.NotificationService
}

func NewStockAlertService(productRepo repositories.ProductRepository, notifications services.NotificationService) *StockAlertService {
	return &StockAlertService{
		productRepo:   productRepo,
		notifications: notifications,
	}
}

// CheckLowStock emits one low stock notification per product currently
// at or below its threshold and returns how many were found.
func (a *StockAlertService) CheckLowStock(ctx context.Context, tenantID uuid.UUID) (int, error) {
	products, err := a.productRepo.ListLowStock(ctx, tenantID)
	if err != nil {
		log.Printf("Failed to list low stock products for tenant %s: %v", tenantID.String(), err)
		return 0, err
	}

	for _, product := range products {
		a.notifications.EmitLowStock(ctx, product)
	}
	if len(products) > 0 {
		log.Printf("Low stock: %d product(s) for tenant %s", len(products), tenantID.String())
	}
	return len(products), nil
}
