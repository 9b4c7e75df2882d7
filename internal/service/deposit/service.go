package deposit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/event"
	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/notification"
	"github.com/orvium/orvium-api/internal/repository"
	"github.com/orvium/orvium-api/pkg/errors"
)

// Service drives the deposit lifecycle. Every status transition appends
// history and notifies the interested parties as a background side effect of
// the transition itself.
type Service struct {
	deposits    repository.DepositRepository
	communities repository.CommunityRepository
	users       repository.UserRepository
	dispatcher  *notification.Dispatcher
	platform    event.Platform
}

func NewService(
	deposits repository.DepositRepository,
	communities repository.CommunityRepository,
	users repository.UserRepository,
	dispatcher *notification.Dispatcher,
	platform event.Platform,
) *Service {
	return &Service{
		deposits:    deposits,
		communities: communities,
		users:       users,
		dispatcher:  dispatcher,
		platform:    platform,
	}
}

func (s *Service) Create(ctx context.Context, d *model.Deposit) error {
	if d.Title == "" {
		return errors.BadRequest("title is required", nil)
	}
	d.ID = uuid.New()
	d.Status = model.DepositStatusDraft
	d.Version = 1

	if err := s.deposits.Create(ctx, d); err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	d, err := s.deposits.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.NotFound("deposit", nil)
	}
	return d, nil
}

func (s *Service) ListHistory(ctx context.Context, id uuid.UUID) ([]*model.HistoryEntry, error) {
	return s.deposits.ListHistory(ctx, id)
}

// Submit moves a draft to pending approval and notifies the owner.
func (s *Service) Submit(ctx context.Context, depositID, actorID uuid.UUID) (*model.Deposit, error) {
	d, community, actor, err := s.load(ctx, depositID, actorID)
	if err != nil {
		return nil, err
	}
	if d.Status != model.DepositStatusDraft {
		return nil, errors.BadRequest(fmt.Sprintf("cannot submit deposit in status %s", d.Status), nil)
	}

	d.Status = model.DepositStatusPendingApproval
	if err := s.deposits.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update deposit: %w", err)
	}

	e := event.NewDepositSubmitted(s.platform, d, community, actor)
	s.dispatcher.Dispatch(ctx, e, s.ownerRecipients(ctx, d), notification.AllChannels...)
	return d, nil
}

// Publish makes a pending deposit public.
func (s *Service) Publish(ctx context.Context, depositID, actorID uuid.UUID) (*model.Deposit, error) {
	d, community, actor, err := s.load(ctx, depositID, actorID)
	if err != nil {
		return nil, err
	}
	if d.Status != model.DepositStatusPendingApproval {
		return nil, errors.BadRequest(fmt.Sprintf("cannot publish deposit in status %s", d.Status), nil)
	}

	d.Status = model.DepositStatusPublished
	if err := s.deposits.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update deposit: %w", err)
	}

	e := event.NewDepositPublished(s.platform, d, community, actor)
	s.dispatcher.Dispatch(ctx, e, s.ownerRecipients(ctx, d), notification.AllChannels...)
	return d, nil
}

// Reject sends a pending deposit back to draft with a reason.
func (s *Service) Reject(ctx context.Context, depositID, actorID uuid.UUID, reason string) (*model.Deposit, error) {
	d, community, actor, err := s.load(ctx, depositID, actorID)
	if err != nil {
		return nil, err
	}
	if d.Status != model.DepositStatusPendingApproval {
		return nil, errors.BadRequest(fmt.Sprintf("cannot reject deposit in status %s", d.Status), nil)
	}

	d.Status = model.DepositStatusDraft
	if err := s.deposits.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update deposit: %w", err)
	}

	e := event.NewDepositRejected(s.platform, d, community, actor, reason)
	s.dispatcher.Dispatch(ctx, e, s.ownerRecipients(ctx, d), notification.AllChannels...)
	return d, nil
}

func (s *Service) load(ctx context.Context, depositID, actorID uuid.UUID) (*model.Deposit, *model.Community, *model.User, error) {
	d, err := s.deposits.Get(ctx, depositID)
	if err != nil {
		return nil, nil, nil, err
	}
	if d == nil {
		return nil, nil, nil, errors.NotFound("deposit", nil)
	}

	community, err := s.communities.Get(ctx, d.CommunityID)
	if err != nil {
		return nil, nil, nil, err
	}

	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, nil, nil, err
	}
	if actor == nil {
		return nil, nil, nil, errors.NotFound("user", nil)
	}
	return d, community, actor, nil
}

func (s *Service) ownerRecipients(ctx context.Context, d *model.Deposit) notification.Recipients {
	rcpt := notification.Recipients{Users: []uuid.UUID{d.OwnerID}}
	owner, err := s.users.Get(ctx, d.OwnerID)
	if err == nil && owner != nil {
		rcpt.Email = []notification.EmailRecipient{{UserID: owner.ID, Address: owner.Email}}
	}
	return rcpt
}
