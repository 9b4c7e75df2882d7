package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	FirstName             string    `db:"first_name" json:"first_name"`
	LastName              string    `db:"last_name" json:"last_name"`
	Nickname              string    `db:"nickname" json:"nickname"`
	Email                 string    `db:"email" json:"email"`
	EmailConfirmed        bool      `db:"email_confirmed" json:"email_confirmed"`
	ConfirmationTokenHash string    `db:"confirmation_token_hash" json:"-"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// FullName is the display name used in notifications and history entries.
func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}
