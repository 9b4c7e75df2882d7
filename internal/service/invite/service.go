package invite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/event"
	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/notification"
	"github.com/orvium/orvium-api/internal/repository"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/security"
)

type Service struct {
	invites     repository.InviteRepository
	deposits    repository.DepositRepository
	communities repository.CommunityRepository
	users       repository.UserRepository
	dispatcher  *notification.Dispatcher
	tokens      security.TokenHasher
	platform    event.Platform
}

func NewService(
	invites repository.InviteRepository,
	deposits repository.DepositRepository,
	communities repository.CommunityRepository,
	users repository.UserRepository,
	dispatcher *notification.Dispatcher,
	tokens security.TokenHasher,
	platform event.Platform,
) *Service {
	return &Service{
		invites:     invites,
		deposits:    deposits,
		communities: communities,
		users:       users,
		dispatcher:  dispatcher,
		tokens:      tokens,
		platform:    platform,
	}
}

type CreateRequest struct {
	DepositID  uuid.UUID
	SenderID   uuid.UUID
	InviteType model.InviteType
	Addressee  string
	Message    string
	DateLimit  *time.Time
}

// Create stores the invite with a hashed token and notifies the addressee.
// The plain token is returned once for inclusion in the accept link and is
// never persisted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Invite, string, error) {
	if req.Addressee == "" {
		return nil, "", errors.BadRequest("addressee is required", nil)
	}
	if req.InviteType == "" {
		req.InviteType = model.InviteTypeReview
	}

	d, err := s.deposits.Get(ctx, req.DepositID)
	if err != nil {
		return nil, "", err
	}
	if d == nil {
		return nil, "", errors.NotFound("deposit", nil)
	}

	sender, err := s.users.Get(ctx, req.SenderID)
	if err != nil {
		return nil, "", err
	}
	if sender == nil {
		return nil, "", errors.NotFound("user", nil)
	}

	community, err := s.communities.Get(ctx, d.CommunityID)
	if err != nil {
		return nil, "", err
	}

	plain, hash, err := s.tokens.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate invite token: %w", err)
	}

	inv := &model.Invite{
		ID:         uuid.New(),
		InviteType: req.InviteType,
		Status:     model.InviteStatusPending,
		DepositID:  req.DepositID,
		SenderID:   req.SenderID,
		Addressee:  req.Addressee,
		Message:    req.Message,
		DateLimit:  req.DateLimit,
		TokenHash:  hash,
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, "", fmt.Errorf("failed to create invite: %w", err)
	}

	e := event.NewReviewInvitation(s.platform, d, community, sender, inv)
	s.dispatcher.Dispatch(ctx, e, s.addresseeRecipients(ctx, inv), notification.AllChannels...)
	return inv, plain, nil
}

// Accept validates the token, marks the invite accepted and notifies the
// inviter.
func (s *Service) Accept(ctx context.Context, inviteID uuid.UUID, token string, reviewerID uuid.UUID) (*model.Invite, error) {
	inv, err := s.invites.Get(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, errors.NotFound("invite", nil)
	}
	if inv.Status != model.InviteStatusPending {
		return nil, errors.BadRequest("invite is no longer pending", nil)
	}
	if err := s.tokens.Compare(inv.TokenHash, token); err != nil {
		return nil, errors.Unauthorized(err)
	}
	if inv.DateLimit != nil && time.Now().After(*inv.DateLimit) {
		return nil, errors.BadRequest("invite has expired", nil)
	}

	inv.Status = model.InviteStatusAccepted
	if err := s.invites.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update invite: %w", err)
	}

	reviewer, err := s.users.Get(ctx, reviewerID)
	if err != nil || reviewer == nil {
		return inv, nil
	}

	d, err := s.deposits.Get(ctx, inv.DepositID)
	if err != nil || d == nil {
		return inv, nil
	}
	community, _ := s.communities.Get(ctx, d.CommunityID)

	e := event.NewReviewInvitationAccepted(s.platform, d, community, reviewer)
	rcpt := notification.Recipients{Users: []uuid.UUID{inv.SenderID}}
	if sender, err := s.users.Get(ctx, inv.SenderID); err == nil && sender != nil {
		rcpt.Email = []notification.EmailRecipient{{UserID: sender.ID, Address: sender.Email}}
	}
	s.dispatcher.Dispatch(ctx, e, rcpt, notification.AllChannels...)
	return inv, nil
}

func (s *Service) ListByDeposit(ctx context.Context, depositID uuid.UUID) ([]*model.Invite, error) {
	return s.invites.ListByDeposit(ctx, depositID)
}

// addresseeRecipients targets the invite email at the addressee; app and
// push channels only apply when the addressee already has an account.
func (s *Service) addresseeRecipients(ctx context.Context, inv *model.Invite) notification.Recipients {
	rcpt := notification.Recipients{
		Email: []notification.EmailRecipient{{Address: inv.Addressee}},
	}
	if u, err := s.users.GetByEmail(ctx, inv.Addressee); err == nil && u != nil {
		rcpt.Email[0].UserID = u.ID
		rcpt.Users = []uuid.UUID{u.ID}
	}
	return rcpt
}
