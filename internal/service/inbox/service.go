package inbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/repository"
)

// Service exposes the per-user in-app notification feed.
type Service struct {
	notifications repository.AppNotificationRepository
}

func NewService(notifications repository.AppNotificationRepository) *Service {
	return &Service{notifications: notifications}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.AppNotification, error) {
	return s.notifications.ListByUser(ctx, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notifications.UnreadCount(ctx, userID)
}
