package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/model"
)

// Type tags a notification event kind. The tag doubles as the template name
// used for email template lookup.
type Type string

const (
	TypeDepositSubmitted         Type = "deposit-submitted"
	TypeDepositPublished         Type = "deposit-published"
	TypeDepositRejected          Type = "deposit-rejected"
	TypeReviewInvitation         Type = "review-invitation"
	TypeReviewInvitationAccepted Type = "review-invitation-accepted"
	TypeReviewCreated            Type = "review-created"
	TypeCommentCreated           Type = "comment-created"
	TypeConfirmEmail             Type = "confirm-email"
)

// Scope governs template lookup: community-scoped events may use a
// community-customized template, system events never do.
type Scope string

const (
	ScopeCommunity Scope = "community"
	ScopeSystem    Scope = "system"
)

// Platform carries the platform-wide values every event renders with.
type Platform struct {
	AppName      string
	PublicURL    string
	SupportEmail string
}

// Payload is the immutable data an event is constructed with. Only the
// fields meaningful for the event's type are set.
type Payload struct {
	Deposit   *model.Deposit
	Community *model.Community
	Sender    *model.User
	User      *model.User
	Invite    *model.Invite
	Review    *model.Review
	Reason    string
	Token     string
	DateLimit *time.Time
	Extra     map[string]interface{}
}

// Event is a tagged union over the notification kinds. Construction never
// fails and queries never mutate it.
type Event struct {
	typ      Type
	platform Platform
	payload  Payload
}

func (e *Event) Type() Type { return e.typ }

// TemplateName is the key used for email template resolution.
func (e *Event) TemplateName() string { return string(e.typ) }

func (e *Event) Scope() Scope {
	if e.typ == TypeConfirmEmail {
		return ScopeSystem
	}
	return ScopeCommunity
}

// CommunityID returns the scoping community for template resolution, nil for
// system-scoped events or events carrying no community.
func (e *Event) CommunityID() *uuid.UUID {
	if e.Scope() == ScopeSystem || e.payload.Community == nil {
		return nil
	}
	id := e.payload.Community.ID
	return &id
}

func (e *Event) Payload() Payload { return e.payload }

func NewDepositSubmitted(platform Platform, deposit *model.Deposit, community *model.Community, sender *model.User) *Event {
	return &Event{
		typ:      TypeDepositSubmitted,
		platform: platform,
		payload:  Payload{Deposit: deposit, Community: community, Sender: sender},
	}
}

func NewDepositPublished(platform Platform, deposit *model.Deposit, community *model.Community, sender *model.User) *Event {
	return &Event{
		typ:      TypeDepositPublished,
		platform: platform,
		payload:  Payload{Deposit: deposit, Community: community, Sender: sender},
	}
}

func NewDepositRejected(platform Platform, deposit *model.Deposit, community *model.Community, sender *model.User, reason string) *Event {
	return &Event{
		typ:      TypeDepositRejected,
		platform: platform,
		payload:  Payload{Deposit: deposit, Community: community, Sender: sender, Reason: reason},
	}
}

func NewReviewInvitation(platform Platform, deposit *model.Deposit, community *model.Community, sender *model.User, invite *model.Invite) *Event {
	return &Event{
		typ:      TypeReviewInvitation,
		platform: platform,
		payload:  Payload{Deposit: deposit, Community: community, Sender: sender, Invite: invite, DateLimit: invite.DateLimit},
	}
}

func NewReviewInvitationAccepted(platform Platform, deposit *model.Deposit, community *model.Community, reviewer *model.User) *Event {
	return &Event{
		typ:      TypeReviewInvitationAccepted,
		platform: platform,
		payload:  Payload{Deposit: deposit, Community: community, Sender: reviewer},
	}
}

func NewReviewCreated(platform Platform, deposit *model.Deposit, community *model.Community, review *model.Review, reviewer *model.User) *Event {
	return &Event{
		typ:      TypeReviewCreated,
		platform: platform,
		payload:  Payload{Deposit: deposit, Community: community, Review: review, Sender: reviewer},
	}
}

func NewCommentCreated(platform Platform, deposit *model.Deposit, community *model.Community, sender *model.User) *Event {
	return &Event{
		typ:      TypeCommentCreated,
		platform: platform,
		payload:  Payload{Deposit: deposit, Community: community, Sender: sender},
	}
}

func NewConfirmEmail(platform Platform, user *model.User, token string) *Event {
	return &Event{
		typ:      TypeConfirmEmail,
		platform: platform,
		payload:  Payload{User: user, Token: token},
	}
}
