package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/repository"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, event_type, subject, content, recipient, status,
			retry_count, last_error, next_retry_at, sent_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	n.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.EventType, n.Subject, n.Content, n.Recipient, n.Status,
		n.RetryCount, n.LastError, n.NextRetryAt, n.SentAt, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	query := `
		UPDATE notifications
		SET status = $1, retry_count = $2, last_error = $3, next_retry_at = $4,
		    sent_at = $5, updated_at = $6
		WHERE id = $7
	`
	n.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		n.Status, n.RetryCount, n.LastError, n.NextRetryAt, n.SentAt, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*model.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE status = $1 AND next_retry_at <= $2
		ORDER BY next_retry_at ASC
		LIMIT $3
	`

	var notifications []*model.Notification
	err := r.db.SelectContext(ctx, &notifications, query, model.NotificationStatusRetrying, before, limit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	return notifications, nil
}
