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

type communityRepository struct {
	db *sqlx.DB
}

func NewCommunityRepository(db *sqlx.DB) repository.CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, c *model.Community) error {
	query := `
		INSERT INTO communities (
			id, name, codename, description, logo_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Codename, c.Description, c.LogoURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create community: %w", err)
	}
	return nil
}

func (r *communityRepository) Get(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	query := `SELECT * FROM communities WHERE id = $1`

	var c model.Community
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return &c, nil
}
