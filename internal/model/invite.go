package model

import (
	"time"

	"github.com/google/uuid"
)

type InviteType string

const (
	InviteTypeReview   InviteType = "review"
	InviteTypeCopyEdit InviteType = "copy_edit"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
)

// Invite is a request sent to a third party to review or copy-edit a deposit.
type Invite struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	InviteType InviteType   `db:"invite_type" json:"invite_type"`
	Status     InviteStatus `db:"status" json:"status"`
	DepositID  uuid.UUID    `db:"deposit_id" json:"deposit_id"`
	SenderID   uuid.UUID    `db:"sender_id" json:"sender_id"`
	Addressee  string       `db:"addressee" json:"addressee"`
	Message    string       `db:"message" json:"message"`
	DateLimit  *time.Time   `db:"date_limit" json:"date_limit,omitempty"`
	TokenHash  string       `db:"token_hash" json:"-"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}
