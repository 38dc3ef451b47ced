package repositories

import (
	"context"
	"testing"
	"time"

	"commercehub/internal/common"
	"commercehub/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ProductRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      ProductRepository
	tenantID  uuid.UUID
	productID uuid.UUID
	context   context.Context
}

func (suite *ProductRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewProductRepo(mock)
	suite.tenantID = uuid.New()
	suite.productID = uuid.New()
	suite.context = context.Background()
}

func (suite *ProductRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}

func (suite *ProductRepoTestSuite) TestDecrementStock_Success() {
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(3, suite.tenantID, suite.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.DecrementStock(suite.context, suite.tenantID, suite.productID, 3)
	assert.NoError(suite.T(), err)
}

func (suite *ProductRepoTestSuite) TestDecrementStock_InsufficientStock() {
	// The conditional update matches no row when stock_quantity < the
	// requested amount; the repo must refuse instead of going negative.
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(50, suite.tenantID, suite.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.DecrementStock(suite.context, suite.tenantID, suite.productID, 50)
	assert.ErrorIs(suite.T(), err, common.ErrInsufficientStock)
}

func (suite *ProductRepoTestSuite) TestRestoreStock_Success() {
	suite.mock.ExpectExec(`UPDATE products`).
		WithArgs(3, suite.tenantID, suite.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.RestoreStock(suite.context, suite.tenantID, suite.productID, 3)
	assert.NoError(suite.T(), err)
}

func (suite *ProductRepoTestSuite) TestGetByID_Success() {
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "category_id", "name", "description", "price",
		"stock_quantity", "low_stock_threshold", "version", "created_at", "updated_at",
	}).AddRow(suite.productID, suite.tenantID, nil, "Ceramic Mug", nil,
		decimal.NewFromInt(25), 40, 5, int64(1), now, now)

	suite.mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs(suite.productID).
		WillReturnRows(rows)

	product, err := suite.repo.GetByID(suite.context, suite.productID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Ceramic Mug", product.Name)
	assert.Equal(suite.T(), 40, product.StockQuantity)
}

func (suite *ProductRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs(suite.productID).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.GetByID(suite.context, suite.productID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ProductRepoTestSuite) TestListLowStock() {
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "category_id", "name", "description", "price",
		"stock_quantity", "low_stock_threshold", "version", "created_at", "updated_at",
	}).AddRow(suite.productID, suite.tenantID, nil, "Ceramic Mug", nil,
		decimal.NewFromInt(25), 2, 5, int64(3), now, now)

	suite.mock.ExpectQuery(`SELECT (.+) FROM products WHERE tenant_id = \$1 AND stock_quantity <= low_stock_threshold`).
		WithArgs(suite.tenantID).
		WillReturnRows(rows)

	products, err := suite.repo.ListLowStock(suite.context, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), products, 1)
	assert.True(suite.T(), products[0].LowOnStock())
}

func (suite *ProductRepoTestSuite) TestCreate_Success() {
	product := &models.Product{
		ID:                suite.productID,
		TenantID:          suite.tenantID,
		Name:              "Ceramic Mug",
		Price:             decimal.NewFromInt(25),
		StockQuantity:     40,
		LowStockThreshold: 5,
	}

	suite.mock.ExpectExec(`INSERT INTO products`).
		WithArgs(product.ID, product.TenantID, product.CategoryID, product.Name,
			product.Description, product.Price, product.StockQuantity, product.LowStockThreshold).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, product)
	assert.NoError(suite.T(), err)
}
