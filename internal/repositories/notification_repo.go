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

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	Update(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, tenantID uuid.UUID) error
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepo(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

const notificationColumns = `id, tenant_id, type, priority, title, message, entity_type, entity_id, is_read, read_at, data, created_at`

func scanNotification(row pgx.Row, n *models.Notification) error {
	return row.Scan(&n.ID, &n.TenantID, &n.Type, &n.Priority, &n.Title, &n.Message,
		&n.EntityType, &n.EntityID, &n.IsRead, &n.ReadAt, &n.Data, &n.CreatedAt)
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, tenant_id, type, priority, title, message, entity_type, entity_id, is_read, read_at, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`
	_, err := r.db.Exec(ctx, query, n.ID, n.TenantID, n.Type, n.Priority, n.Title, n.Message,
		n.EntityType, n.EntityID, n.IsRead, n.ReadAt, n.Data)
	return err
}

func (r *notificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n := &models.Notification{}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	if err := scanNotification(r.db.QueryRow(ctx, query, id), n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: notification %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return n, nil
}

func (r *notificationRepo) Update(ctx context.Context, n *models.Notification) error {
	query := `UPDATE notifications SET is_read = $1, read_at = $2 WHERE tenant_id = $3 AND id = $4`
	_, err := r.db.Exec(ctx, query, n.IsRead, n.ReadAt, n.TenantID, n.ID)
	return err
}

func (r *notificationRepo) List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE tenant_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := scanNotification(rows, n); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE tenant_id = $1 AND is_read = FALSE`
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, tenantID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE tenant_id = $1 AND is_read = FALSE`
	_, err := r.db.Exec(ctx, query, tenantID)
	return err
}
