package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/repository"
	"github.com/orvium/orvium-api/pkg/errors"
)

// Resolver implements the template lookup policy: a community-scoped
// customizable template wins over the system default of the same name.
type Resolver struct {
	repo repository.TemplateRepository
}

func NewResolver(repo repository.TemplateRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the template source applicable to (name, communityID).
// A nil communityID skips straight to the system default. Fails with
// TemplateNotFound when neither scope has a match.
func (r *Resolver) Resolve(ctx context.Context, name string, communityID *uuid.UUID) (*model.Template, error) {
	if communityID != nil {
		t, err := r.repo.FindByName(ctx, name, communityID)
		if err != nil {
			return nil, err
		}
		if t != nil && t.IsCustomizable {
			return t, nil
		}
	}

	t, err := r.repo.FindByName(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.TemplateNotFound(name, nil)
	}
	return t, nil
}
