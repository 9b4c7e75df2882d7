package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/model"
)

type TemplateRepository interface {
	Create(ctx context.Context, t *model.Template) error
	Update(ctx context.Context, t *model.Template) error
	Get(ctx context.Context, id uuid.UUID) (*model.Template, error)
	// FindByName returns the template matching (name, communityID), where a
	// nil communityID matches the system-scoped row. A nil result with nil
	// error means no match.
	FindByName(ctx context.Context, name string, communityID *uuid.UUID) (*model.Template, error)
	List(ctx context.Context, communityID *uuid.UUID) ([]*model.Template, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	Update(ctx context.Context, n *model.Notification) error
	// ListDue returns retrying notifications whose next retry time has
	// passed, oldest first.
	ListDue(ctx context.Context, before time.Time, limit int) ([]*model.Notification, error)
}

type AppNotificationRepository interface {
	Create(ctx context.Context, n *model.AppNotification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.AppNotification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type DepositRepository interface {
	Create(ctx context.Context, d *model.Deposit) error
	Update(ctx context.Context, d *model.Deposit) error
	Get(ctx context.Context, id uuid.UUID) (*model.Deposit, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID, status model.DepositStatus) ([]*model.Deposit, error)
	// AppendHistory appends one entry to the deposit's ordered history log.
	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error
	ListHistory(ctx context.Context, depositID uuid.UUID) ([]*model.HistoryEntry, error)
}

type InviteRepository interface {
	Create(ctx context.Context, i *model.Invite) error
	Update(ctx context.Context, i *model.Invite) error
	Get(ctx context.Context, id uuid.UUID) (*model.Invite, error)
	ListByDeposit(ctx context.Context, depositID uuid.UUID) ([]*model.Invite, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *model.Review) error
	Update(ctx context.Context, r *model.Review) error
	Get(ctx context.Context, id uuid.UUID) (*model.Review, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type CommunityRepository interface {
	Create(ctx context.Context, c *model.Community) error
	Get(ctx context.Context, id uuid.UUID) (*model.Community, error)
}

type PushSubscriptionRepository interface {
	Create(ctx context.Context, s *model.PushSubscription) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.PushSubscription, error)
}
