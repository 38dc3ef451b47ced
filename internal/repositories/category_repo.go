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

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Category, error)
}

type categoryRepo struct {
	db DB
}

func NewCategoryRepo(db DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, tenant_id, name, description, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.TenantID, category.Name, category.Description, category.ParentID)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, tenant_id, name, description, parent_id, created_at, updated_at FROM categories WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&category.ID, &category.TenantID, &category.Name,
		&category.Description, &category.ParentID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, parent_id = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, category.Name, category.Description, category.ParentID, category.TenantID, category.ID)
	return err
}

func (r *categoryRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Category, error) {
	query := `SELECT id, tenant_id, name, description, parent_id, created_at, updated_at FROM categories WHERE tenant_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.TenantID, &category.Name, &category.Description,
			&category.ParentID, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
