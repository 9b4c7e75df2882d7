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

type inviteRepository struct {
	db *sqlx.DB
}

func NewInviteRepository(db *sqlx.DB) repository.InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) Create(ctx context.Context, i *model.Invite) error {
	query := `
		INSERT INTO invites (
			id, invite_type, status, deposit_id, sender_id, addressee, message,
			date_limit, token_hash, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.CreatedAt = time.Now()
	i.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		i.ID, i.InviteType, i.Status, i.DepositID, i.SenderID, i.Addressee, i.Message,
		i.DateLimit, i.TokenHash, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *inviteRepository) Update(ctx context.Context, i *model.Invite) error {
	query := `
		UPDATE invites
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	i.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, i.Status, i.UpdatedAt, i.ID); err != nil {
		return fmt.Errorf("failed to update invite: %w", err)
	}
	return nil
}

func (r *inviteRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invite, error) {
	query := `SELECT * FROM invites WHERE id = $1`

	var i model.Invite
	if err := r.db.GetContext(ctx, &i, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &i, nil
}

func (r *inviteRepository) ListByDeposit(ctx context.Context, depositID uuid.UUID) ([]*model.Invite, error) {
	query := `
		SELECT * FROM invites
		WHERE deposit_id = $1
		ORDER BY created_at DESC
	`

	var invites []*model.Invite
	if err := r.db.SelectContext(ctx, &invites, query, depositID); err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}
