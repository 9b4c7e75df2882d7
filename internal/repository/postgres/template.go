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

type templateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) repository.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, t *model.Template) error {
	query := `
		INSERT INTO templates (
			id, name, category, title, description, template, community_id, is_customizable, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Category, t.Title, t.Description, t.Template, t.CommunityID, t.IsCustomizable, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) Update(ctx context.Context, t *model.Template) error {
	query := `
		UPDATE templates
		SET title = $1, description = $2, template = $3, is_customizable = $4, updated_at = $5
		WHERE id = $6
	`
	t.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.Template, t.IsCustomizable, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

func (r *templateRepository) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	query := `SELECT * FROM templates WHERE id = $1`

	var t model.Template
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &t, nil
}

func (r *templateRepository) FindByName(ctx context.Context, name string, communityID *uuid.UUID) (*model.Template, error) {
	var (
		query = `SELECT * FROM templates WHERE name = $1 AND community_id IS NULL`
		args  = []interface{}{name}
	)
	if communityID != nil {
		query = `SELECT * FROM templates WHERE name = $1 AND community_id = $2`
		args = append(args, *communityID)
	}

	var t model.Template
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return &t, nil
}

func (r *templateRepository) List(ctx context.Context, communityID *uuid.UUID) ([]*model.Template, error) {
	var (
		query = `SELECT * FROM templates WHERE community_id IS NULL ORDER BY name ASC`
		args  []interface{}
	)
	if communityID != nil {
		query = `SELECT * FROM templates WHERE community_id = $1 ORDER BY name ASC`
		args = append(args, *communityID)
	}

	var templates []*model.Template
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}
