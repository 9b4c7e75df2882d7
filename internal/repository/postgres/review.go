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

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rev *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, deposit_id, owner_id, status, decision, comments, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`
	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	rev.CreatedAt = time.Now()
	rev.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		rev.ID, rev.DepositID, rev.OwnerID, rev.Status, rev.Decision, rev.Comments, rev.CreatedAt, rev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Update(ctx context.Context, rev *model.Review) error {
	query := `
		UPDATE reviews
		SET status = $1, decision = $2, comments = $3, updated_at = $4
		WHERE id = $5
	`
	rev.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		rev.Status, rev.Decision, rev.Comments, rev.UpdatedAt, rev.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `SELECT * FROM reviews WHERE id = $1`

	var rev model.Review
	if err := r.db.GetContext(ctx, &rev, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &rev, nil
}
