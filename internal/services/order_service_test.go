package services

import (
	"context"
	"testing"

	"commercehub/internal/common"
	"commercehub/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockOrderRepo     *MockOrderRepository
	mockProductRepo   *MockProductRepository
	mockCustomerRepo  *MockCustomerRepository
	mockPricing       *MockPricingService
	mockNotifications *MockNotificationService
	service           OrderService

	tenantID uuid.UUID
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.mockOrderRepo = &MockOrderRepository{}
	suite.mockProductRepo = &MockProductRepository{}
	suite.mockCustomerRepo = &MockCustomerRepository{}
	suite.mockPricing = &MockPricingService{}
	suite.mockNotifications = &MockNotificationService{}
	suite.service = NewOrderService(
		suite.mockOrderRepo,
		suite.mockProductRepo,
		suite.mockCustomerRepo,
		suite.mockPricing,
		suite.mockNotifications,
	)

	suite.mockOrderRepo.Test(suite.T())
	suite.mockProductRepo.Test(suite.T())
	suite.mockCustomerRepo.Test(suite.T())
	suite.mockPricing.Test(suite.T())
	suite.mockNotifications.Test(suite.T())

	suite.tenantID = uuid.New()
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockProductRepo.AssertExpectations(suite.T())
	suite.mockCustomerRepo.AssertExpectations(suite.T())
	suite.mockPricing.AssertExpectations(suite.T())
	suite.mockNotifications.AssertExpectations(suite.T())
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) pendingOrder(lineQuantities ...int) *models.Order {
	order, err := models.NewOrder(suite.tenantID, uuid.New(), uuid.New())
	suite.Require().NoError(err)
	for _, qty := range lineQuantities {
		suite.Require().NoError(order.AddLine(uuid.New(), qty, decimal.NewFromInt(10)))
	}
	return order
}

func (suite *OrderServiceTestSuite) healthyProduct(id uuid.UUID) *models.Product {
	return &models.Product{
		ID:                id,
		TenantID:          suite.tenantID,
		Name:              "Ceramic Mug",
		Price:             decimal.NewFromInt(10),
		StockQuantity:     100,
		LowStockThreshold: 5,
	}
}

func (suite *OrderServiceTestSuite) TestCreateOrder_Success() {
	ctx := context.Background()
	customerID := uuid.New()
	addressID := uuid.New()

	suite.mockCustomerRepo.On("GetByID", ctx, customerID).
		Return(&models.Customer{ID: customerID, TenantID: suite.tenantID}, nil)
	suite.mockCustomerRepo.On("GetAddressByID", ctx, addressID).
		Return(&models.Address{ID: addressID, TenantID: suite.tenantID, CustomerID: customerID}, nil)
	suite.mockOrderRepo.On("Create", ctx, mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := suite.service.CreateOrder(ctx, suite.tenantID, customerID, addressID)

	suite.NoError(err)
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.Empty(order.Lines)
}

func (suite *OrderServiceTestSuite) TestCreateOrder_AddressOfOtherCustomer() {
	ctx := context.Background()
	customerID := uuid.New()
	addressID := uuid.New()

	suite.mockCustomerRepo.On("GetByID", ctx, customerID).
		Return(&models.Customer{ID: customerID, TenantID: suite.tenantID}, nil)
	suite.mockCustomerRepo.On("GetAddressByID", ctx, addressID).
		Return(&models.Address{ID: addressID, TenantID: suite.tenantID, CustomerID: uuid.New()}, nil)

	_, err := suite.service.CreateOrder(ctx, suite.tenantID, customerID, addressID)

	suite.ErrorIs(err, common.ErrValidation)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "Create", ctx, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestGetOrder_TenantMismatch() {
	ctx := context.Background()
	order := suite.pendingOrder()

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := suite.service.GetOrder(ctx, uuid.New(), order.ID)

	suite.ErrorIs(err, common.ErrTenantMismatch)
	suite.NotErrorIs(err, common.ErrNotFound, "cross-tenant access must fail loudly, not as not found")
}

func (suite *OrderServiceTestSuite) TestAddLine_ResolvesPriceWhenNotGiven() {
	ctx := context.Background()
	order := suite.pendingOrder()
	productID := uuid.New()

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	suite.mockProductRepo.On("GetByID", ctx, productID).Return(suite.healthyProduct(productID), nil)
	suite.mockPricing.On("ResolvePrice", ctx, suite.tenantID, productID, mock.AnythingOfType("time.Time")).
		Return(&models.PriceResolution{
			ProductID:      productID,
			BasePrice:      decimal.NewFromInt(10),
			EffectivePrice: decimal.NewFromInt(8),
		}, nil)
	suite.mockOrderRepo.On("SaveLines", ctx, order).Return(nil)

	updated, err := suite.service.AddLine(ctx, suite.tenantID, order.ID, productID, 3, nil)

	suite.NoError(err)
	suite.Len(updated.Lines, 1)
	suite.True(updated.Lines[0].UnitPrice.Equal(decimal.NewFromInt(8)))
	suite.True(updated.TotalAmount.Equal(decimal.NewFromInt(24)))
}

func (suite *OrderServiceTestSuite) TestAddLine_ExplicitPriceSkipsResolver() {
	ctx := context.Background()
	order := suite.pendingOrder()
	productID := uuid.New()
	price := decimal.NewFromInt(12)

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	suite.mockProductRepo.On("GetByID", ctx, productID).Return(suite.healthyProduct(productID), nil)
	suite.mockOrderRepo.On("SaveLines", ctx, order).Return(nil)

	updated, err := suite.service.AddLine(ctx, suite.tenantID, order.ID, productID, 2, &price)

	suite.NoError(err)
	suite.True(updated.Lines[0].UnitPrice.Equal(price))
	suite.mockPricing.AssertNotCalled(suite.T(), "ResolvePrice",
		ctx, suite.tenantID, productID, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestConfirmOrder_ReservesStockAndEmits() {
	ctx := context.Background()
	order := suite.pendingOrder(2, 3)

	for _, line := range order.Lines {
		suite.mockProductRepo.On("DecrementStock", ctx, suite.tenantID, line.ProductID, line.Quantity).Return(nil)
		suite.mockProductRepo.On("GetByID", ctx, line.ProductID).
			Return(suite.healthyProduct(line.ProductID), nil)
	}
	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	suite.mockOrderRepo.On("UpdateStatus", ctx, order).Return(nil)
	suite.mockNotifications.On("EmitNewOrder", ctx, order).Return()

	confirmed, err := suite.service.ConfirmOrder(ctx, suite.tenantID, order.ID)

	suite.NoError(err)
	suite.Equal(models.OrderStatusProcessing, confirmed.Status)
}

func (suite *OrderServiceTestSuite) TestConfirmOrder_LowStockAfterReservation() {
	ctx := context.Background()
	order := suite.pendingOrder(2)
	line := order.Lines[0]
	depleted := suite.healthyProduct(line.ProductID)
	depleted.StockQuantity = 4

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	suite.mockProductRepo.On("DecrementStock", ctx, suite.tenantID, line.ProductID, line.Quantity).Return(nil)
	suite.mockOrderRepo.On("UpdateStatus", ctx, order).Return(nil)
	suite.mockNotifications.On("EmitNewOrder", ctx, order).Return()
	suite.mockProductRepo.On("GetByID", ctx, line.ProductID).Return(depleted, nil)
	suite.mockNotifications.On("EmitLowStock", ctx, depleted).Return()

	_, err := suite.service.ConfirmOrder(ctx, suite.tenantID, order.ID)

	suite.NoError(err)
}

func (suite *OrderServiceTestSuite) TestConfirmOrder_InsufficientStockRollsBack() {
	ctx := context.Background()
	order := suite.pendingOrder(2, 3)
	first, second := order.Lines[0], order.Lines[1]

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	suite.mockProductRepo.On("DecrementStock", ctx, suite.tenantID, first.ProductID, first.Quantity).Return(nil)
	suite.mockProductRepo.On("DecrementStock", ctx, suite.tenantID, second.ProductID, second.Quantity).
		Return(common.ErrInsufficientStock)
	// Only the line already reserved is released.
	suite.mockProductRepo.On("RestoreStock", ctx, suite.tenantID, first.ProductID, first.Quantity).Return(nil)

	_, err := suite.service.ConfirmOrder(ctx, suite.tenantID, order.ID)

	suite.ErrorIs(err, common.ErrInsufficientStock)
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateStatus", ctx, order)
	suite.mockNotifications.AssertNotCalled(suite.T(), "EmitNewOrder", ctx, order)
}

func (suite *OrderServiceTestSuite) TestConfirmOrder_EmptyOrder() {
	ctx := context.Background()
	order := suite.pendingOrder()

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := suite.service.ConfirmOrder(ctx, suite.tenantID, order.ID)

	suite.ErrorIs(err, common.ErrEmptyOrder)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_AfterConfirmRestoresStock() {
	ctx := context.Background()
	order := suite.pendingOrder(4)
	order.Status = models.OrderStatusProcessing
	line := order.Lines[0]

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	suite.mockOrderRepo.On("UpdateStatus", ctx, order).Return(nil)
	suite.mockProductRepo.On("RestoreStock", ctx, suite.tenantID, line.ProductID, line.Quantity).Return(nil)

	cancelled, err := suite.service.CancelOrder(ctx, suite.tenantID, order.ID)

	suite.NoError(err)
	suite.Equal(models.OrderStatusCancelled, cancelled.Status)
}

func (suite *OrderServiceTestSuite) TestCancelOrder_PendingKeepsStockUntouched() {
	ctx := context.Background()
	order := suite.pendingOrder(4)
	line := order.Lines[0]

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	suite.mockOrderRepo.On("UpdateStatus", ctx, order).Return(nil)

	cancelled, err := suite.service.CancelOrder(ctx, suite.tenantID, order.ID)

	suite.NoError(err)
	suite.Equal(models.OrderStatusCancelled, cancelled.Status)
	suite.mockProductRepo.AssertNotCalled(suite.T(), "RestoreStock",
		ctx, suite.tenantID, line.ProductID, line.Quantity)
}

func (suite *OrderServiceTestSuite) TestMarkPaymentFailed_EmitsWithoutStateChange() {
	ctx := context.Background()
	order := suite.pendingOrder(1)
	order.Status = models.OrderStatusProcessing

	suite.mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	suite.mockNotifications.On("EmitPaymentFailed", ctx, suite.tenantID, order.ID, "card declined").Return()

	err := suite.service.MarkPaymentFailed(ctx, suite.tenantID, order.ID, "card declined")

	suite.NoError(err)
	suite.Equal(models.OrderStatusProcessing, order.Status)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateStatus", ctx, order)
}

func (suite *OrderServiceTestSuite) TestListOrdersByStatus_UnknownStatus() {
	ctx := context.Background()

	_, err := suite.service.ListOrdersByStatus(ctx, suite.tenantID, models.OrderStatus("archived"), 50, 0)

	suite.ErrorIs(err, common.ErrValidation)
}
