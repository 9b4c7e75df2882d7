package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DepositStatus string

const (
	DepositStatusDraft           DepositStatus = "draft"
	DepositStatusPendingApproval DepositStatus = "pending_approval"
	DepositStatusPublished       DepositStatus = "published"
	DepositStatusRejected        DepositStatus = "rejected"
)

type Author struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

// AuthorList is stored as a jsonb column.
type AuthorList []Author

func (a AuthorList) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AuthorList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported author list type %T", src)
	}
}

// Deposit is a scholarly publication submission record.
type Deposit struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	CommunityID uuid.UUID     `db:"community_id" json:"community_id"`
	OwnerID     uuid.UUID     `db:"owner_id" json:"owner_id"`
	Title       string        `db:"title" json:"title"`
	Abstract    string        `db:"abstract" json:"abstract"`
	Authors     AuthorList    `db:"authors" json:"authors"`
	Status      DepositStatus `db:"status" json:"status"`
	Version     int           `db:"version" json:"version"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// HistoryEntry is one line of a deposit's append-only history log.
type HistoryEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DepositID   uuid.UUID `db:"deposit_id" json:"deposit_id"`
	ActorName   string    `db:"actor_name" json:"actor_name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
