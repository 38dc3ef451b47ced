package repositories

import (
	"context"
	"errors"
	"fmt"

	"commercehub/internal/common"
	"commercehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReturnRequestRepository interface {
	Create(ctx context.Context, rr *models.ReturnRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	Update(ctx context.Context, rr *models.ReturnRequest) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReturnRequest, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.ReturnStatus, limit, offset int) ([]*models.ReturnRequest, error)
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.ReturnRequest, error)
}

type returnRequestRepo struct {
	db DB
}

func NewReturnRequestRepo(db DB) ReturnRequestRepository {
	return &returnRequestRepo{db: db}
}

const returnColumns = `id, tenant_id, order_id, order_line_id, product_id, customer_id, quantity, reason, comments, status, admin_response, request_date, resolution_date`

func scanReturnRequest(row pgx.Row, rr *models.ReturnRequest) error {
	return row.Scan(&rr.ID, &rr.TenantID, &rr.OrderID, &rr.OrderLineID, &rr.ProductID, &rr.CustomerID,
		&rr.Quantity, &rr.Reason, &rr.Comments, &rr.Status, &rr.AdminResponse, &rr.RequestDate, &rr.ResolutionDate)
}

func (r *returnRequestRepo) Create(ctx context.Context, rr *models.ReturnRequest) error {
	query := `
		INSERT INTO return_requests (id, tenant_id, order_id, order_line_id, product_id, customer_id, quantity, reason, comments, status, admin_response, request_date, resolution_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query, rr.ID, rr.TenantID, rr.OrderID, rr.OrderLineID, rr.ProductID,
		rr.CustomerID, rr.Quantity, rr.Reason, rr.Comments, rr.Status, rr.AdminResponse, rr.RequestDate, rr.ResolutionDate)
	return err
}

func (r *returnRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	rr := &models.ReturnRequest{}
	query := `SELECT ` + returnColumns + ` FROM return_requests WHERE id = $1`
	if err := scanReturnRequest(r.db.QueryRow(ctx, query, id), rr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: return request %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return rr, nil
}

func (r *returnRequestRepo) Update(ctx context.Context, rr *models.ReturnRequest) error {
	query := `
		UPDATE return_requests
		SET status = $1, admin_response = $2, resolution_date = $3
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, rr.Status, rr.AdminResponse, rr.ResolutionDate, rr.TenantID, rr.ID)
	return err
}

func (r *returnRequestRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReturnRequest, error) {
	query := `SELECT ` + returnColumns + ` FROM return_requests WHERE tenant_id = $1 ORDER BY request_date DESC LIMIT $2 OFFSET $3`
	return r.queryReturns(ctx, query, tenantID, limit, offset)
}

func (r *returnRequestRepo) ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.ReturnStatus, limit, offset int) ([]*models.ReturnRequest, error) {
	query := `SELECT ` + returnColumns + ` FROM return_requests WHERE tenant_id = $1 AND status = $2 ORDER BY request_date DESC LIMIT $3 OFFSET $4`
	return r.queryReturns(ctx, query, tenantID, status, limit, offset)
}

func (r *returnRequestRepo) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.ReturnRequest, error) {
	query := `SELECT ` + returnColumns + ` FROM return_requests WHERE tenant_id = $1 AND order_id = $2 ORDER BY request_date DESC`
	return r.queryReturns(ctx, query, tenantID, orderID)
}

func (r *returnRequestRepo) queryReturns(ctx context.Context, query string, args ...interface{}) ([]*models.ReturnRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.ReturnRequest
	for rows.Next() {
		rr := &models.ReturnRequest{}
		if err := scanReturnRequest(rows, rr); err != nil {
			return nil, err
		}
		requests = append(requests, rr)
	}
	return requests, rows.Err()
}
