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

type depositRepository struct {
	db *sqlx.DB
}

func NewDepositRepository(db *sqlx.DB) repository.DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(ctx context.Context, d *model.Deposit) error {
	query := `
		INSERT INTO deposits (
			id, community_id, owner_id, title, abstract, authors, status, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.CommunityID, d.OwnerID, d.Title, d.Abstract, d.Authors, d.Status, d.Version, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}
	return nil
}

func (r *depositRepository) Update(ctx context.Context, d *model.Deposit) error {
	query := `
		UPDATE deposits
		SET title = $1, abstract = $2, authors = $3, status = $4, version = $5, updated_at = $6
		WHERE id = $7
	`
	d.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		d.Title, d.Abstract, d.Authors, d.Status, d.Version, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deposit: %w", err)
	}
	return nil
}

func (r *depositRepository) Get(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	query := `SELECT * FROM deposits WHERE id = $1`

	var d model.Deposit
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}
	return &d, nil
}

func (r *depositRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID, status model.DepositStatus) ([]*model.Deposit, error) {
	query := `
		SELECT * FROM deposits
		WHERE community_id = $1 AND status = $2
		ORDER BY created_at DESC
	`

	var deposits []*model.Deposit
	if err := r.db.SelectContext(ctx, &deposits, query, communityID, status); err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	return deposits, nil
}

func (r *depositRepository) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	query := `
		INSERT INTO deposit_history (
			id, deposit_id, actor_name, description, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.DepositID, entry.ActorName, entry.Description, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (r *depositRepository) ListHistory(ctx context.Context, depositID uuid.UUID) ([]*model.HistoryEntry, error) {
	query := `
		SELECT * FROM deposit_history
		WHERE deposit_id = $1
		ORDER BY created_at ASC
	`

	var entries []*model.HistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, depositID); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}
