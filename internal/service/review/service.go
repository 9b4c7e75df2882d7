package review

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

type Service struct {
	reviews     repository.ReviewRepository
	deposits    repository.DepositRepository
	communities repository.CommunityRepository
	users       repository.UserRepository
	dispatcher  *notification.Dispatcher
	platform    event.Platform
}

func NewService(
	reviews repository.ReviewRepository,
	deposits repository.DepositRepository,
	communities repository.CommunityRepository,
	users repository.UserRepository,
	dispatcher *notification.Dispatcher,
	platform event.Platform,
) *Service {
	return &Service{
		reviews:     reviews,
		deposits:    deposits,
		communities: communities,
		users:       users,
		dispatcher:  dispatcher,
		platform:    platform,
	}
}

func (s *Service) Create(ctx context.Context, r *model.Review) error {
	d, err := s.deposits.Get(ctx, r.DepositID)
	if err != nil {
		return err
	}
	if d == nil {
		return errors.NotFound("deposit", nil)
	}

	r.ID = uuid.New()
	r.Status = model.ReviewStatusDraft
	if err := s.reviews.Create(ctx, r); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	r, err := s.reviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.NotFound("review", nil)
	}
	return r, nil
}

// Publish marks the report ready and notifies the deposit owner.
func (s *Service) Publish(ctx context.Context, reviewID uuid.UUID) (*model.Review, error) {
	r, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.NotFound("review", nil)
	}
	if r.Status == model.ReviewStatusPublished {
		return nil, errors.BadRequest("review is already published", nil)
	}

	r.Status = model.ReviewStatusPublished
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	d, err := s.deposits.Get(ctx, r.DepositID)
	if err != nil || d == nil {
		return r, nil
	}
	community, _ := s.communities.Get(ctx, d.CommunityID)
	reviewer, _ := s.users.Get(ctx, r.OwnerID)

	e := event.NewReviewCreated(s.platform, d, community, r, reviewer)
	rcpt := notification.Recipients{Users: []uuid.UUID{d.OwnerID}}
	if owner, err := s.users.Get(ctx, d.OwnerID); err == nil && owner != nil {
		rcpt.Email = []notification.EmailRecipient{{UserID: owner.ID, Address: owner.Email}}
	}
	s.dispatcher.Dispatch(ctx, e, rcpt, notification.AllChannels...)
	return r, nil
}
