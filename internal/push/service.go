package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"github.com/orvium/orvium-api/internal/event"
	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/repository"
	"github.com/orvium/orvium-api/pkg/logger"
)

type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
	TTL        int
}

// Service fans a push payload out to every Web Push subscription the target
// user holds. One dead subscription never blocks delivery to the others.
type Service struct {
	repo   repository.PushSubscriptionRepository
	cfg    VAPIDConfig
	logger *logger.Logger

	// send is swappable for tests.
	send func(ctx context.Context, payload []byte, sub *model.PushSubscription) (int, error)
}

func NewService(repo repository.PushSubscriptionRepository, cfg VAPIDConfig, log *logger.Logger) *Service {
	s := &Service{
		repo:   repo,
		cfg:    cfg,
		logger: log,
	}
	s.send = s.sendWebPush
	return s
}

// Send delivers msg to every subscription of userID. Per-subscription
// failures are logged and skipped; the call only errors when the
// subscription list itself cannot be loaded.
func (s *Service) Send(ctx context.Context, userID uuid.UUID, msg *event.PushMessage) error {
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	for _, sub := range subs {
		status, err := s.send(ctx, payload, sub)
		if err != nil {
			s.logger.Error(err, "push delivery failed",
				"user_id", userID.String(), "subscription_id", sub.ID.String())
			continue
		}
		if status == http.StatusGone || status == http.StatusNotFound {
			// The push service no longer knows this subscription.
			if err := s.repo.Delete(ctx, sub.ID); err != nil {
				s.logger.Error(err, "failed to prune expired subscription",
					"subscription_id", sub.ID.String())
			}
		}
	}
	return nil
}

// Subscribe registers a browser push subscription for the user. Re-posting
// the same endpoint is a no-op.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	sub := &model.PushSubscription{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store push subscription: %w", err)
	}
	return sub, nil
}

func (s *Service) Unsubscribe(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) sendWebPush(ctx context.Context, payload []byte, sub *model.PushSubscription) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
