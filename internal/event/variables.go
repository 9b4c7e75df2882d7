package event

import (
	"fmt"
	"time"

	"github.com/orvium/orvium-api/internal/model"
)

// Variables is the flat bag a template renders against.
type Variables map[string]interface{}

// MergeVars layers variable fragments left to right; later keys win on
// collision.
func MergeVars(fragments ...Variables) Variables {
	merged := make(Variables)
	for _, fragment := range fragments {
		for k, v := range fragment {
			merged[k] = v
		}
	}
	return merged
}

// CommonVariables is the base layer shared by every template.
func CommonVariables(platform Platform, templateName string) Variables {
	return Variables{
		"APP_NAME":      platform.AppName,
		"PUBLIC_URL":    platform.PublicURL,
		"SUPPORT_EMAIL": platform.SupportEmail,
		"TEMPLATE_NAME": templateName,
	}
}

func CommunityVariables(platform Platform, community *model.Community) Variables {
	if community == nil {
		return Variables{}
	}
	return Variables{
		"COMMUNITY_NAME": community.Name,
		"COMMUNITY_LOGO": community.LogoURL,
		"COMMUNITY_URL":  fmt.Sprintf("%s/communities/%s/view", platform.PublicURL, community.ID),
	}
}

func PublicationVariables(platform Platform, deposit *model.Deposit) Variables {
	if deposit == nil {
		return Variables{}
	}
	authors := make([]Variables, 0, len(deposit.Authors))
	for _, a := range deposit.Authors {
		authors = append(authors, Variables{
			"FIRST_NAME": a.FirstName,
			"LAST_NAME":  a.LastName,
		})
	}
	return Variables{
		"PUBLICATION_TITLE":   deposit.Title,
		"PUBLICATION_URL":     depositViewURL(platform, deposit),
		"PUBLICATION_AUTHORS": authors,
	}
}

func UserVariables(platform Platform, user *model.User) Variables {
	if user == nil {
		return Variables{}
	}
	return Variables{
		"USER_NAME":  user.FullName(),
		"USER_EMAIL": user.Email,
		"USER_URL":   fmt.Sprintf("%s/profile/%s", platform.PublicURL, user.Nickname),
	}
}

// Variables assembles the full bag for this event: common, community,
// publication and user layers topped by the event-specific extras.
func (e *Event) Variables() Variables {
	return MergeVars(
		CommonVariables(e.platform, e.TemplateName()),
		CommunityVariables(e.platform, e.payload.Community),
		PublicationVariables(e.platform, e.payload.Deposit),
		UserVariables(e.platform, e.payload.Sender),
		e.extraVariables(),
	)
}

func (e *Event) extraVariables() Variables {
	extras := make(Variables)

	switch e.typ {
	case TypeDepositRejected:
		extras["REASON"] = e.payload.Reason
	case TypeReviewInvitation:
		if inv := e.payload.Invite; inv != nil {
			extras["INVITATION_TYPE"] = string(inv.InviteType)
			extras["USER_MESSAGE"] = inv.Message
			extras["ADDRESSEE"] = inv.Addressee
		}
		if e.payload.DateLimit != nil {
			extras["INVITATION_DEADLINE"] = formatDate(*e.payload.DateLimit)
		}
		if s := e.payload.Sender; s != nil {
			extras["SENDER_NAME"] = s.FullName()
		}
	case TypeReviewInvitationAccepted, TypeReviewCreated:
		if s := e.payload.Sender; s != nil {
			extras["REVIEWER_NAME"] = s.FullName()
		}
	case TypeConfirmEmail:
		if u := e.payload.User; u != nil {
			extras["USER_NAME"] = u.FullName()
			extras["USER_EMAIL"] = u.Email
		}
		extras["CONFIRM_URL"] = fmt.Sprintf("%s/profile/confirm-email?token=%s", e.platform.PublicURL, e.payload.Token)
	}

	for k, v := range e.payload.Extra {
		extras[k] = v
	}
	return extras
}

func depositViewURL(platform Platform, deposit *model.Deposit) string {
	return fmt.Sprintf("%s/deposits/%s/view", platform.PublicURL, deposit.ID)
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006")
}
