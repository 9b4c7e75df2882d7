package model

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusDraft     ReviewStatus = "draft"
	ReviewStatusPublished ReviewStatus = "published"
)

type ReviewDecision string

const (
	ReviewDecisionAccepted      ReviewDecision = "accepted"
	ReviewDecisionMinorRevision ReviewDecision = "minor_revision"
	ReviewDecisionMajorRevision ReviewDecision = "major_revision"
)

type Review struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	DepositID uuid.UUID      `db:"deposit_id" json:"deposit_id"`
	OwnerID   uuid.UUID      `db:"owner_id" json:"owner_id"`
	Status    ReviewStatus   `db:"status" json:"status"`
	Decision  ReviewDecision `db:"decision" json:"decision"`
	Comments  string         `db:"comments" json:"comments"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
