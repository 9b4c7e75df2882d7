package template

import (
	"context"
	"fmt"

	"github.com/aymerick/raymond"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/repository"
	"github.com/orvium/orvium-api/pkg/errors"
)

// Service manages stored templates. Sources are parsed on write so a broken
// template is rejected at save time instead of at send time.
type Service struct {
	templates repository.TemplateRepository
}

func NewService(templates repository.TemplateRepository) *Service {
	return &Service{templates: templates}
}

func (s *Service) Create(ctx context.Context, t *model.Template) error {
	if t.Name == "" {
		return errors.BadRequest("template name is required", nil)
	}
	if _, err := raymond.Parse(t.Template); err != nil {
		return errors.BadRequest(fmt.Sprintf("template does not parse: %v", err), err)
	}

	t.ID = uuid.New()
	if err := s.templates.Create(ctx, t); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// Update replaces the source of an existing template. Community templates can
// only be updated when the system default allows customization.
func (s *Service) Update(ctx context.Context, id uuid.UUID, source string) (*model.Template, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.NotFound("template", nil)
	}
	if t.CommunityID != nil {
		system, err := s.templates.FindByName(ctx, t.Name, nil)
		if err != nil {
			return nil, err
		}
		if system != nil && !system.IsCustomizable {
			return nil, errors.Forbidden("template is not customizable", nil)
		}
	}
	if _, err := raymond.Parse(source); err != nil {
		return nil, errors.BadRequest(fmt.Sprintf("template does not parse: %v", err), err)
	}

	t.Template = source
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.NotFound("template", nil)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, communityID *uuid.UUID) ([]*model.Template, error) {
	return s.templates.List(ctx, communityID)
}
