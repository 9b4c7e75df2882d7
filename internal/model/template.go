package model

import (
	"time"

	"github.com/google/uuid"
)

type TemplateCategory string

const (
	TemplateCategorySystem TemplateCategory = "system"
	TemplateCategoryEmail  TemplateCategory = "email"
)

// Template is a stored handlebars source keyed by name. A nil CommunityID
// marks the system default; a community row with the same name overrides it
// when IsCustomizable is set.
type Template struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	Name           string           `db:"name" json:"name"`
	Category       TemplateCategory `db:"category" json:"category"`
	Title          string           `db:"title" json:"title"`
	Description    string           `db:"description" json:"description"`
	Template       string           `db:"template" json:"template"`
	CommunityID    *uuid.UUID       `db:"community_id" json:"community_id,omitempty"`
	IsCustomizable bool             `db:"is_customizable" json:"is_customizable"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}
