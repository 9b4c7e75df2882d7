package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/model"
)

// Renderer fills a handlebars source with a variable bag. In strict mode a
// reference to an unset variable is an error; in lenient mode it renders
// empty.
type Renderer interface {
	Render(source string, strict bool, vars map[string]interface{}) (string, error)
}

// EmailMessage is the rendered email channel output.
type EmailMessage struct {
	Subject string
	HTML    string
}

// PushMessage is the push channel payload, fanned out to every registered
// subscription of the target user.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	Tag   string `json:"tag"`
}

// Each channel query returns a nil payload when the event kind has nothing
// to deliver on that channel. Absence is not an error and never panics.

// Email renders the resolved template source into subject and HTML body.
// Returns nil with no error when this event kind has no email.
func (e *Event) Email(r Renderer, source string, strict bool) (*EmailMessage, error) {
	subjectSource := e.emailSubject()
	if subjectSource == "" {
		return nil, nil
	}

	subject, err := r.Render(subjectSource, strict, e.Variables())
	if err != nil {
		return nil, err
	}
	html, err := r.Render(source, strict, e.Variables())
	if err != nil {
		return nil, err
	}
	return &EmailMessage{Subject: subject, HTML: html}, nil
}

// emailSubject returns the handlebars subject line per event kind, empty for
// kinds with no email channel.
func (e *Event) emailSubject() string {
	switch e.typ {
	case TypeDepositSubmitted:
		return "New submission pending approval in {{COMMUNITY_NAME}}"
	case TypeDepositPublished:
		return "{{PUBLICATION_TITLE}} has been published"
	case TypeDepositRejected:
		return "Your submission to {{COMMUNITY_NAME}} needs changes"
	case TypeReviewInvitation:
		return "{{SENDER_NAME}} invites you to {{INVITATION_TYPE}} a publication"
	case TypeReviewInvitationAccepted:
		return "{{REVIEWER_NAME}} accepted your invitation"
	case TypeReviewCreated:
		return "A report is ready for {{PUBLICATION_TITLE}}"
	case TypeConfirmEmail:
		return "Confirm your {{APP_NAME}} email address"
	case TypeCommentCreated:
		return ""
	}
	return ""
}

// AppNotification builds the in-app inbox entry for the target user, nil
// when this event kind has no in-app channel.
func (e *Event) AppNotification(targetUserID uuid.UUID) *model.AppNotification {
	p := e.payload

	var title, body string
	switch e.typ {
	case TypeDepositSubmitted:
		title = "New submission pending approval"
		body = fmt.Sprintf("%s submitted %q", senderName(p), depositTitle(p))
	case TypeDepositPublished:
		title = "Publication published"
		body = fmt.Sprintf("%q is now published", depositTitle(p))
	case TypeDepositRejected:
		title = "Submission returned"
		body = fmt.Sprintf("%q was sent back for changes", depositTitle(p))
	case TypeReviewInvitation:
		title = "New invitation"
		body = fmt.Sprintf("%s invited you to %s %q", senderName(p), inviteVerb(p), depositTitle(p))
	case TypeReviewInvitationAccepted:
		title = "Invitation accepted"
		body = fmt.Sprintf("%s accepted your invitation on %q", senderName(p), depositTitle(p))
	case TypeReviewCreated:
		title = "Report ready"
		body = fmt.Sprintf("%s submitted a report on %q", senderName(p), depositTitle(p))
	case TypeCommentCreated:
		title = "New comment"
		body = fmt.Sprintf("%s commented on %q", senderName(p), depositTitle(p))
	case TypeConfirmEmail:
		return nil
	default:
		return nil
	}

	n := &model.AppNotification{
		ID:        uuid.New(),
		UserID:    targetUserID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if p.Deposit != nil {
		n.Action = fmt.Sprintf("/deposits/%s/view", p.Deposit.ID)
	}
	if p.Community != nil {
		n.Icon = p.Community.LogoURL
	}
	return n
}

// Push builds the push channel payload, nil when this event kind has no push
// channel.
func (e *Event) Push() *PushMessage {
	p := e.payload

	switch e.typ {
	case TypeDepositPublished:
		return &PushMessage{
			Title: "Publication published",
			Body:  fmt.Sprintf("%q is now published", depositTitle(p)),
			Icon:  communityLogo(p),
			Tag:   string(e.typ),
		}
	case TypeReviewInvitation:
		return &PushMessage{
			Title: "New invitation",
			Body:  fmt.Sprintf("%s invited you to %s a publication", senderName(p), inviteVerb(p)),
			Icon:  communityLogo(p),
			Tag:   string(e.typ),
		}
	case TypeReviewCreated:
		return &PushMessage{
			Title: "Report ready",
			Body:  fmt.Sprintf("A report is ready for %q", depositTitle(p)),
			Icon:  communityLogo(p),
			Tag:   string(e.typ),
		}
	case TypeDepositSubmitted, TypeDepositRejected, TypeReviewInvitationAccepted,
		TypeCommentCreated, TypeConfirmEmail:
		return nil
	}
	return nil
}

// History builds the append-only history line for the owning deposit, nil
// when this event kind records no history.
func (e *Event) History() *model.HistoryEntry {
	p := e.payload
	if p.Deposit == nil {
		return nil
	}

	var description string
	switch e.typ {
	case TypeDepositSubmitted:
		description = fmt.Sprintf("Submitted for approval by %s", senderName(p))
	case TypeDepositPublished:
		description = fmt.Sprintf("Published by %s", senderName(p))
	case TypeDepositRejected:
		description = fmt.Sprintf("Sent back to draft by %s: %s", senderName(p), p.Reason)
	case TypeReviewInvitation:
		addressee := ""
		if p.Invite != nil {
			addressee = p.Invite.Addressee
		}
		description = fmt.Sprintf("%s invited %s to %s this publication", senderName(p), addressee, inviteVerb(p))
	case TypeReviewInvitationAccepted:
		description = fmt.Sprintf("%s accepted the review invitation", senderName(p))
	case TypeReviewCreated:
		description = fmt.Sprintf("Review report submitted by %s", senderName(p))
	case TypeCommentCreated:
		description = fmt.Sprintf("%s commented", senderName(p))
	case TypeConfirmEmail:
		return nil
	default:
		return nil
	}

	return &model.HistoryEntry{
		ID:          uuid.New(),
		DepositID:   p.Deposit.ID,
		ActorName:   senderName(p),
		Description: description,
		CreatedAt:   time.Now(),
	}
}

func senderName(p Payload) string {
	if p.Sender == nil {
		return "Someone"
	}
	return p.Sender.FullName()
}

func depositTitle(p Payload) string {
	if p.Deposit == nil {
		return ""
	}
	return p.Deposit.Title
}

func communityLogo(p Payload) string {
	if p.Community == nil {
		return ""
	}
	return p.Community.LogoURL
}

func inviteVerb(p Payload) string {
	if p.Invite != nil && p.Invite.InviteType == model.InviteTypeCopyEdit {
		return "copy-edit"
	}
	return "review"
}
