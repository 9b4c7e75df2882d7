package template

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/pkg/errors"
)

type fakeTemplateRepo struct {
	templates []*model.Template
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t *model.Template) error {
	f.templates = append(f.templates, t)
	return nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, t *model.Template) error { return nil }

func (f *fakeTemplateRepo) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	for _, t := range f.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTemplateRepo) FindByName(ctx context.Context, name string, communityID *uuid.UUID) (*model.Template, error) {
	for _, t := range f.templates {
		if t.Name != name {
			continue
		}
		if communityID == nil && t.CommunityID == nil {
			return t, nil
		}
		if communityID != nil && t.CommunityID != nil && *t.CommunityID == *communityID {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTemplateRepo) List(ctx context.Context, communityID *uuid.UUID) ([]*model.Template, error) {
	return f.templates, nil
}

func TestResolveCommunityOverrideWins(t *testing.T) {
	communityID := uuid.New()
	repo := &fakeTemplateRepo{templates: []*model.Template{
		{ID: uuid.New(), Name: "deposit-published", Template: "system body"},
		{ID: uuid.New(), Name: "deposit-published", Template: "community body", CommunityID: &communityID, IsCustomizable: true},
	}}
	r := NewResolver(repo)

	resolved, err := r.Resolve(context.Background(), "deposit-published", &communityID)
	require.NoError(t, err)
	assert.Equal(t, "community body", resolved.Template)
}

func TestResolveFallsBackToSystem(t *testing.T) {
	communityID := uuid.New()
	repo := &fakeTemplateRepo{templates: []*model.Template{
		{ID: uuid.New(), Name: "deposit-published", Template: "system body"},
	}}
	r := NewResolver(repo)

	resolved, err := r.Resolve(context.Background(), "deposit-published", &communityID)
	require.NoError(t, err)
	assert.Equal(t, "system body", resolved.Template)
	assert.Nil(t, resolved.CommunityID)
}

func TestResolveIgnoresNonCustomizableOverride(t *testing.T) {
	communityID := uuid.New()
	repo := &fakeTemplateRepo{templates: []*model.Template{
		{ID: uuid.New(), Name: "deposit-published", Template: "system body"},
		{ID: uuid.New(), Name: "deposit-published", Template: "community body", CommunityID: &communityID},
	}}
	r := NewResolver(repo)

	resolved, err := r.Resolve(context.Background(), "deposit-published", &communityID)
	require.NoError(t, err)
	assert.Equal(t, "system body", resolved.Template)
}

func TestResolveSystemScopeSkipsCommunityLookup(t *testing.T) {
	communityID := uuid.New()
	repo := &fakeTemplateRepo{templates: []*model.Template{
		{ID: uuid.New(), Name: "confirm-email", Template: "system body"},
		{ID: uuid.New(), Name: "confirm-email", Template: "community body", CommunityID: &communityID, IsCustomizable: true},
	}}
	r := NewResolver(repo)

	resolved, err := r.Resolve(context.Background(), "confirm-email", nil)
	require.NoError(t, err)
	assert.Equal(t, "system body", resolved.Template)
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(&fakeTemplateRepo{})

	_, err := r.Resolve(context.Background(), "no-such-template", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTemplateNotFound))
}
