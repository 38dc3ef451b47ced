package services

import (
	"context"
	"strings"
	"time"

	"commercehub/internal/caching"
	"commercehub/internal/models"
	"commercehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, tenantID, productID, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) RestoreStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, tenantID, productID, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) AdvancedSearch(ctx context.Context, tenantID uuid.UUID, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.Product), args.Error(1)
}

type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) ListActive(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*models.Campaign, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).([]*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCampaignRepository) AssignProduct(ctx context.Context, pc *models.ProductCampaign) error {
	args := m.Called(ctx, pc)
	return args.Error(0)
}

func (m *MockCampaignRepository) AssignCategory(ctx context.Context, cc *models.CategoryCampaign) error {
	args := m.Called(ctx, cc)
	return args.Error(0)
}

func (m *MockCampaignRepository) ActiveProductCampaigns(ctx context.Context, tenantID, productID uuid.UUID, asOf time.Time) ([]repositories.ProductCampaignRow, error) {
	args := m.Called(ctx, tenantID, productID, asOf)
	return args.Get(0).([]repositories.ProductCampaignRow), args.Error(1)
}

func (m *MockCampaignRepository) ActiveCategoryCampaigns(ctx context.Context, tenantID, categoryID uuid.UUID, asOf time.Time) ([]repositories.CategoryCampaignRow, error) {
	args := m.Called(ctx, tenantID, categoryID, asOf)
	return args.Get(0).([]repositories.CategoryCampaignRow), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveLines(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID, customerID, limit, offset)
	return args.Get(0).([]*models.Order), args.Error(1)
}

type MockReturnRequestRepository struct {
	mock.Mock
}

func (m *MockReturnRequestRepository) Create(ctx context.Context, rr *models.ReturnRequest) error {
	args := m.Called(ctx, rr)
	return args.Error(0)
}

func (m *MockReturnRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReturnRequest), args.Error(1)
}

func (m *MockReturnRequestRepository) Update(ctx context.Context, rr *models.ReturnRequest) error {
	args := m.Called(ctx, rr)
	return args.Error(0)
}

func (m *MockReturnRequestRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReturnRequest, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.ReturnRequest), args.Error(1)
}

func (m *MockReturnRequestRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.ReturnStatus, limit, offset int) ([]*models.ReturnRequest, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	return args.Get(0).([]*models.ReturnRequest), args.Error(1)
}

func (m *MockReturnRequestRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.ReturnRequest, error) {
	args := m.Called(ctx, tenantID, orderID)
	return args.Get(0).([]*models.ReturnRequest), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Update(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, tenantID, unreadOnly, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) EmitNewOrder(ctx context.Context, order *models.Order) {
	m.Called(ctx, order)
}

func (m *MockNotificationService) EmitLowStock(ctx context.Context, product *models.Product) {
	m.Called(ctx, product)
}

func (m *MockNotificationService) EmitReturnRequest(ctx context.Context, rr *models.ReturnRequest) {
	m.Called(ctx, rr)
}

func (m *MockNotificationService) EmitPaymentFailed(ctx context.Context, tenantID, orderID uuid.UUID, reason string) {
	m.Called(ctx, tenantID, orderID, reason)
}

func (m *MockNotificationService) List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, tenantID, unreadOnly, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, tenantID, notificationID uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, tenantID, notificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockNotificationService) CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) ResolvePrice(ctx context.Context, tenantID, productID uuid.UUID, asOf time.Time) (*models.PriceResolution, error) {
	args := m.Called(ctx, tenantID, productID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceResolution), args.Error(1)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

// fakeCache is an in-memory CacheService so cache interactions can be
// observed without Redis.
type fakeCache struct {
	products           map[string]*models.Product
	categories         map[string]*models.Category
	quotes             map[string]*models.PriceResolution
	invalidatedTenants []uuid.UUID
}

var _ caching.CacheService = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{
		products:   make(map[string]*models.Product),
		categories: make(map[string]*models.Category),
		quotes:     make(map[string]*models.PriceResolution),
	}
}

func fakeCacheKey(tenantID, id uuid.UUID) string {
	return tenantID.String() + ":" + id.String()
}

func (f *fakeCache) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	return f.products[fakeCacheKey(tenantID, productID)], nil
}

func (f *fakeCache) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	f.products[fakeCacheKey(tenantID, product.ID)] = product
	return nil
}

func (f *fakeCache) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	delete(f.products, fakeCacheKey(tenantID, productID))
	return nil
}

func (f *fakeCache) GetCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (*models.Category, error) {
	return f.categories[fakeCacheKey(tenantID, categoryID)], nil
}

func (f *fakeCache) SetCategory(ctx context.Context, tenantID uuid.UUID, category *models.Category, ttl time.Duration) error {
	f.categories[fakeCacheKey(tenantID, category.ID)] = category
	return nil
}

func (f *fakeCache) DeleteCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	delete(f.categories, fakeCacheKey(tenantID, categoryID))
	return nil
}

func (f *fakeCache) GetPriceQuote(ctx context.Context, tenantID, productID uuid.UUID) (*models.PriceResolution, error) {
	return f.quotes[fakeCacheKey(tenantID, productID)], nil
}

func (f *fakeCache) SetPriceQuote(ctx context.Context, tenantID uuid.UUID, quote *models.PriceResolution, ttl time.Duration) error {
	f.quotes[fakeCacheKey(tenantID, quote.ProductID)] = quote
	return nil
}

func (f *fakeCache) DeletePriceQuote(ctx context.Context, tenantID, productID uuid.UUID) error {
	delete(f.quotes, fakeCacheKey(tenantID, productID))
	return nil
}

func (f *fakeCache) DeleteTenantPriceQuotes(ctx context.Context, tenantID uuid.UUID) error {
	for key := range f.quotes {
		if strings.HasPrefix(key, tenantID.String()+":") {
			delete(f.quotes, key)
		}
	}
	return nil
}

func (f *fakeCache) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	f.invalidatedTenants = append(f.invalidatedTenants, tenantID)
	prefix := tenantID.String() + ":"
	for key := range f.products {
		if strings.HasPrefix(key, prefix) {
			delete(f.products, key)
		}
	}
	for key := range f.categories {
		if strings.HasPrefix(key, prefix) {
			delete(f.categories, key)
		}
	}
	return f.DeleteTenantPriceQuotes(ctx, tenantID)
}

func (f *fakeCache) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}
