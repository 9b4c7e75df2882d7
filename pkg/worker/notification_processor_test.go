package worker

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/pkg/logger"
	"github.com/orvium/orvium-api/pkg/metrics"
)

type fakeNotificationRepo struct {
	rows []*model.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotificationRepo) Update(ctx context.Context, n *model.Notification) error {
	for i, row := range f.rows {
		if row.ID == n.ID {
			f.rows[i] = n
		}
	}
	return nil
}

func (f *fakeNotificationRepo) ListDue(ctx context.Context, before time.Time, limit int) ([]*model.Notification, error) {
	var due []*model.Notification
	for _, n := range f.rows {
		if n.Status == model.NotificationStatusRetrying && n.NextRetryAt.Before(before) {
			due = append(due, n)
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

type fakeMailer struct {
	fail bool
	sent int
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
	if f.fail {
		return fmt.Errorf("smtp down")
	}
	f.sent++
	return nil
}

func newProcessor(repo *fakeNotificationRepo, mailer *fakeMailer) *NotificationProcessor {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewNotificationProcessor(repo, mailer, NotificationProcessorConfig{
		BatchSize:    10,
		PollInterval: time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Minute,
	}, log, metrics.New("test"))
}

func retryingNotification(retryCount int) *model.Notification {
	return &model.Notification{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		EventType:   "review-invitation",
		Subject:     "subject",
		Content:     "<p>body</p>",
		Recipient:   "bob@example.com",
		Status:      model.NotificationStatusRetrying,
		RetryCount:  retryCount,
		NextRetryAt: time.Now().Add(-time.Minute),
	}
}

func TestProcessDueSendsAndMarksSent(t *testing.T) {
	repo := &fakeNotificationRepo{rows: []*model.Notification{retryingNotification(1)}}
	mailer := &fakeMailer{}
	p := newProcessor(repo, mailer)

	require.NoError(t, p.processDue(context.Background()))

	assert.Equal(t, 1, mailer.sent)
	assert.Equal(t, model.NotificationStatusSent, repo.rows[0].Status)
	assert.False(t, repo.rows[0].SentAt.IsZero())
	assert.Empty(t, repo.rows[0].LastError)
}

func TestProcessDueReschedulesOnFailure(t *testing.T) {
	repo := &fakeNotificationRepo{rows: []*model.Notification{retryingNotification(1)}}
	mailer := &fakeMailer{fail: true}
	p := newProcessor(repo, mailer)

	require.NoError(t, p.processDue(context.Background()))

	n := repo.rows[0]
	assert.Equal(t, model.NotificationStatusRetrying, n.Status)
	assert.Equal(t, 2, n.RetryCount)
	assert.True(t, n.NextRetryAt.After(time.Now()))
	assert.Contains(t, n.LastError, "smtp down")
}

func TestProcessDueDeadendsAfterMaxRetries(t *testing.T) {
	repo := &fakeNotificationRepo{rows: []*model.Notification{retryingNotification(2)}}
	mailer := &fakeMailer{fail: true}
	p := newProcessor(repo, mailer)

	require.NoError(t, p.processDue(context.Background()))

	assert.Equal(t, model.NotificationStatusFailed, repo.rows[0].Status)
	assert.Equal(t, 3, repo.rows[0].RetryCount)
}

func TestProcessDueSkipsNotYetDue(t *testing.T) {
	future := retryingNotification(1)
	future.NextRetryAt = time.Now().Add(time.Hour)
	repo := &fakeNotificationRepo{rows: []*model.Notification{future}}
	mailer := &fakeMailer{}
	p := newProcessor(repo, mailer)

	require.NoError(t, p.processDue(context.Background()))
	assert.Equal(t, 0, mailer.sent)
	assert.Equal(t, model.NotificationStatusRetrying, repo.rows[0].Status)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	repo := &fakeNotificationRepo{}
	p := newProcessor(repo, &fakeMailer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not stop on context cancel")
	}
}

func TestNewProcessorValidatesConfig(t *testing.T) {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	assert.Panics(t, func() {
		NewNotificationProcessor(&fakeNotificationRepo{}, &fakeMailer{}, NotificationProcessorConfig{}, log, metrics.New("test"))
	})
}
