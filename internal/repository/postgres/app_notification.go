package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/repository"
)

type appNotificationRepository struct {
	db *sqlx.DB
}

func NewAppNotificationRepository(db *sqlx.DB) repository.AppNotificationRepository {
	return &appNotificationRepository{db: db}
}

func (r *appNotificationRepository) Create(ctx context.Context, n *model.AppNotification) error {
	query := `
		INSERT INTO app_notifications (
			id, user_id, title, body, icon, action, is_read, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Body, n.Icon, n.Action, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create app notification: %w", err)
	}
	return nil
}

func (r *appNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.AppNotification, error) {
	query := `
		SELECT * FROM app_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	if unreadOnly {
		query = `
			SELECT * FROM app_notifications
			WHERE user_id = $1 AND is_read = false
			ORDER BY created_at DESC
		`
	}

	var notifications []*model.AppNotification
	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list app notifications: %w", err)
	}
	return notifications, nil
}

func (r *appNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE app_notifications SET is_read = true, read_at = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (r *appNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE app_notifications SET is_read = true, read_at = $1 WHERE user_id = $2 AND is_read = false`

	if _, err := r.db.ExecContext(ctx, query, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *appNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM app_notifications WHERE user_id = $1 AND is_read = false`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
