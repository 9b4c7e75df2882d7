package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/event"
	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/notification"
	"github.com/orvium/orvium-api/internal/repository"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/security"
)

type Service struct {
	users      repository.UserRepository
	dispatcher *notification.Dispatcher
	tokens     security.TokenHasher
	platform   event.Platform
}

func NewService(users repository.UserRepository, dispatcher *notification.Dispatcher, tokens security.TokenHasher, platform event.Platform) *Service {
	return &Service{
		users:      users,
		dispatcher: dispatcher,
		tokens:     tokens,
		platform:   platform,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.NotFound("user", nil)
	}
	return u, nil
}

// RequestEmailConfirmation issues a fresh confirmation token and emails the
// confirm link. Only the token hash is persisted.
func (s *Service) RequestEmailConfirmation(ctx context.Context, userID uuid.UUID) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailConfirmed {
		return errors.BadRequest("email is already confirmed", nil)
	}

	plain, hash, err := s.tokens.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate confirmation token: %w", err)
	}
	u.ConfirmationTokenHash = hash
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to store confirmation token: %w", err)
	}

	e := event.NewConfirmEmail(s.platform, u, plain)
	s.dispatcher.Dispatch(ctx, e, notification.Recipients{
		Email: []notification.EmailRecipient{{UserID: u.ID, Address: u.Email}},
	}, notification.ChannelEmail)
	return nil
}

// ConfirmEmail validates the token from the confirm link.
func (s *Service) ConfirmEmail(ctx context.Context, userID uuid.UUID, token string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.ConfirmationTokenHash == "" {
		return errors.BadRequest("no confirmation pending", nil)
	}
	if err := s.tokens.Compare(u.ConfirmationTokenHash, token); err != nil {
		return errors.Unauthorized(err)
	}

	u.EmailConfirmed = true
	u.ConfirmationTokenHash = ""
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}
