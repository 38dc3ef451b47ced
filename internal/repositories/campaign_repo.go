package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commercehub/internal/common"
	"commercehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductCampaignRow pairs an assignment with its campaign so the
// resolver reads one consistent snapshot per query.
type ProductCampaignRow struct {
	Assignment models.ProductCampaign
	Campaign   models.Campaign
}

// CategoryCampaignRow pairs a category assignment with its campaign.
type CategoryCampaignRow struct {
	Assignment models.CategoryCampaign
	Campaign   models.Campaign
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error)
	ListActive(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*models.Campaign, error)
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)

	AssignProduct(ctx context.Context, pc *models.ProductCampaign) error
	AssignCategory(ctx context.Context, cc *models.CategoryCampaign) error
	// ActiveProductCampaigns and ActiveCategoryCampaigns feed the
	// resolver; each returns only rows whose campaign window contains
	// asOf and whose active flag is set.
	ActiveProductCampaigns(ctx context.Context, tenantID, productID uuid.UUID, asOf time.Time) ([]ProductCampaignRow, error)
	ActiveCategoryCampaigns(ctx context.Context, tenantID, categoryID uuid.UUID, asOf time.Time) ([]CategoryCampaignRow, error)
}

type campaignRepo struct {
	db DB
}

func NewCampaignRepo(db DB) CampaignRepository {
	return &campaignRepo{db: db}
}

const campaignColumns = `id, tenant_id, name, discount_percent, starts_at, ends_at, active, created_at, updated_at`

func scanCampaign(row pgx.Row, c *models.Campaign) error {
	return row.Scan(&c.ID, &c.TenantID, &c.Name, &c.DiscountPercent, &c.StartsAt, &c.EndsAt,
		&c.Active, &c.CreatedAt, &c.UpdatedAt)
}

func (r *campaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, tenant_id, name, discount_percent, starts_at, ends_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, campaign.ID, campaign.TenantID, campaign.Name, campaign.DiscountPercent,
		campaign.StartsAt, campaign.EndsAt, campaign.Active)
	return err
}

func (r *campaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	if err := scanCampaign(r.db.QueryRow(ctx, query, id), campaign); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: campaign %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return campaign, nil
}

func (r *campaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $1, discount_percent = $2, starts_at = $3, ends_at = $4, active = $5, updated_at = NOW()
		WHERE tenant_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, campaign.Name, campaign.DiscountPercent, campaign.StartsAt,
		campaign.EndsAt, campaign.Active, campaign.TenantID, campaign.ID)
	return err
}

func (r *campaignRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE tenant_id = $1 ORDER BY starts_at DESC LIMIT $2 OFFSET $3`
	return r.queryCampaigns(ctx, query, tenantID, limit, offset)
}

func (r *campaignRepo) ListActive(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE tenant_id = $1 AND active = TRUE AND starts_at <= $2 AND ends_at >= $2
		ORDER BY ends_at
	`
	return r.queryCampaigns(ctx, query, tenantID, asOf)
}

// DeactivateExpired flips the active flag off for every campaign whose
// window has fully passed. Used by the scheduled sweep.
func (r *campaignRepo) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	query := `UPDATE campaigns SET active = FALSE, updated_at = NOW() WHERE active = TRUE AND ends_at < $1`
	tag, err := r.db.Exec(ctx, query, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *campaignRepo) AssignProduct(ctx context.Context, pc *models.ProductCampaign) error {
	query := `
		INSERT INTO product_campaigns (id, tenant_id, product_id, campaign_id, original_price, discounted_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, pc.ID, pc.TenantID, pc.ProductID, pc.CampaignID, pc.OriginalPrice, pc.DiscountedPrice)
	return err
}

func (r *campaignRepo) AssignCategory(ctx context.Context, cc *models.CategoryCampaign) error {
	query := `
		INSERT INTO category_campaigns (id, tenant_id, category_id, campaign_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, cc.ID, cc.TenantID, cc.CategoryID, cc.CampaignID)
	return err
}

func (r *campaignRepo) ActiveProductCampaigns(ctx context.Context, tenantID, productID uuid.UUID, asOf time.Time) ([]ProductCampaignRow, error) {
	query := `
		SELECT pc.id, pc.tenant_id, pc.product_id, pc.campaign_id, pc.original_price, pc.discounted_price, pc.created_at,
		       c.id, c.tenant_id, c.name, c.discount_percent, c.starts_at, c.ends_at, c.active, c.created_at, c.updated_at
		FROM product_campaigns pc
		JOIN campaigns c ON c.id = pc.campaign_id AND c.tenant_id = pc.tenant_id
		WHERE pc.tenant_id = $1 AND pc.product_id = $2
		  AND c.active = TRUE AND c.starts_at <= $3 AND c.ends_at >= $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, productID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProductCampaignRow
	for rows.Next() {
		var row ProductCampaignRow
		err := rows.Scan(&row.Assignment.ID, &row.Assignment.TenantID, &row.Assignment.ProductID,
			&row.Assignment.CampaignID, &row.Assignment.OriginalPrice, &row.Assignment.DiscountedPrice,
			&row.Assignment.CreatedAt,
			&row.Campaign.ID, &row.Campaign.TenantID, &row.Campaign.Name, &row.Campaign.DiscountPercent,
			&row.Campaign.StartsAt, &row.Campaign.EndsAt, &row.Campaign.Active,
			&row.Campaign.CreatedAt, &row.Campaign.UpdatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *campaignRepo) ActiveCategoryCampaigns(ctx context.Context, tenantID, categoryID uuid.UUID, asOf time.Time) ([]CategoryCampaignRow, error) {
	query := `
		SELECT cc.id, cc.tenant_id, cc.category_id, cc.campaign_id, cc.created_at,
		       c.id, c.tenant_id, c.name, c.discount_percent, c.starts_at, c.ends_at, c.active, c.created_at, c.updated_at
		FROM category_campaigns cc
		JOIN campaigns c ON c.id = cc.campaign_id AND c.tenant_id = cc.tenant_id
		WHERE cc.tenant_id = $1 AND cc.category_id = $2
		  AND c.active = TRUE AND c.starts_at <= $3 AND c.ends_at >= $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, categoryID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryCampaignRow
	for rows.Next() {
		var row CategoryCampaignRow
		err := rows.Scan(&row.Assignment.ID, &row.Assignment.TenantID, &row.Assignment.CategoryID,
			&row.Assignment.CampaignID, &row.Assignment.CreatedAt,
			&row.Campaign.ID, &row.Campaign.TenantID, &row.Campaign.Name, &row.Campaign.DiscountPercent,
			&row.Campaign.StartsAt, &row.Campaign.EndsAt, &row.Campaign.Active,
			&row.Campaign.CreatedAt, &row.Campaign.UpdatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *campaignRepo) queryCampaigns(ctx context.Context, query string, args ...interface{}) ([]*models.Campaign, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		campaign := &models.Campaign{}
		if err := scanCampaign(rows, campaign); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}
