package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orvium/orvium-api/internal/event"
	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/pkg/logger"
)

type fakeSubscriptionRepo struct {
	subs []*model.PushSubscription
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, s *model.PushSubscription) error {
	f.subs = append(f.subs, s)
	return nil
}

func (f *fakeSubscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, s := range f.subs {
		if s.ID == id {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeSubscriptionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.PushSubscription, error) {
	var out []*model.PushSubscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func newTestService(repo *fakeSubscriptionRepo) *Service {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewService(repo, VAPIDConfig{Subscriber: "mailto:support@orvium.io"}, log)
}

func testMessage() *event.PushMessage {
	return &event.PushMessage{Title: "Report ready", Body: "A report is ready", Tag: "review-created"}
}

func TestSendFansOutToAllSubscriptions(t *testing.T) {
	userID := uuid.New()
	repo := &fakeSubscriptionRepo{subs: []*model.PushSubscription{
		{ID: uuid.New(), UserID: userID, Endpoint: "https://push.example/a"},
		{ID: uuid.New(), UserID: userID, Endpoint: "https://push.example/b"},
	}}
	svc := newTestService(repo)

	var delivered []string
	svc.send = func(ctx context.Context, payload []byte, sub *model.PushSubscription) (int, error) {
		delivered = append(delivered, sub.Endpoint)
		return http.StatusCreated, nil
	}

	err := svc.Send(context.Background(), userID, testMessage())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"https://push.example/a", "https://push.example/b"}, delivered)
}

// One dead subscription must not block delivery to the others, and the
// overall send reports success.
func TestSendIsolatesFailingSubscription(t *testing.T) {
	userID := uuid.New()
	repo := &fakeSubscriptionRepo{subs: []*model.PushSubscription{
		{ID: uuid.New(), UserID: userID, Endpoint: "https://push.example/dead"},
		{ID: uuid.New(), UserID: userID, Endpoint: "https://push.example/live"},
	}}
	svc := newTestService(repo)

	var delivered []string
	svc.send = func(ctx context.Context, payload []byte, sub *model.PushSubscription) (int, error) {
		if sub.Endpoint == "https://push.example/dead" {
			return 0, fmt.Errorf("connection refused")
		}
		delivered = append(delivered, sub.Endpoint)
		return http.StatusCreated, nil
	}

	err := svc.Send(context.Background(), userID, testMessage())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://push.example/live"}, delivered)
}

func TestSendPrunesGoneSubscription(t *testing.T) {
	userID := uuid.New()
	gone := &model.PushSubscription{ID: uuid.New(), UserID: userID, Endpoint: "https://push.example/gone"}
	live := &model.PushSubscription{ID: uuid.New(), UserID: userID, Endpoint: "https://push.example/live"}
	repo := &fakeSubscriptionRepo{subs: []*model.PushSubscription{gone, live}}
	svc := newTestService(repo)

	svc.send = func(ctx context.Context, payload []byte, sub *model.PushSubscription) (int, error) {
		if sub.ID == gone.ID {
			return http.StatusGone, nil
		}
		return http.StatusCreated, nil
	}

	err := svc.Send(context.Background(), userID, testMessage())
	require.NoError(t, err)

	remaining, _ := repo.ListByUser(context.Background(), userID)
	require.Len(t, remaining, 1)
	assert.Equal(t, live.ID, remaining[0].ID)
}

func TestSendNoSubscriptionsIsNoop(t *testing.T) {
	svc := newTestService(&fakeSubscriptionRepo{})
	svc.send = func(ctx context.Context, payload []byte, sub *model.PushSubscription) (int, error) {
		t.Fatal("send should not be called")
		return 0, nil
	}

	err := svc.Send(context.Background(), uuid.New(), testMessage())
	require.NoError(t, err)
}

func TestSubscribe(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := newTestService(repo)
	userID := uuid.New()

	sub, err := svc.Subscribe(context.Background(), userID, "https://push.example/a", "p256dh-key", "auth-key")
	require.NoError(t, err)
	assert.Equal(t, userID, sub.UserID)
	assert.NotEqual(t, uuid.Nil, sub.ID)
	assert.Len(t, repo.subs, 1)
}
