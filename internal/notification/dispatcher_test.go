package notification

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orvium/orvium-api/internal/event"
	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/template"
	"github.com/orvium/orvium-api/pkg/errors"
	"github.com/orvium/orvium-api/pkg/logger"
	"github.com/orvium/orvium-api/pkg/metrics"
)

type fakeTemplateRepo struct {
	templates []*model.Template
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t *model.Template) error { return nil }
func (f *fakeTemplateRepo) Update(ctx context.Context, t *model.Template) error { return nil }
func (f *fakeTemplateRepo) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	return nil, nil
}

func (f *fakeTemplateRepo) FindByName(ctx context.Context, name string, communityID *uuid.UUID) (*model.Template, error) {
	for _, t := range f.templates {
		if t.Name != name {
			continue
		}
		if communityID == nil && t.CommunityID == nil {
			return t, nil
		}
		if communityID != nil && t.CommunityID != nil && *t.CommunityID == *communityID {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTemplateRepo) List(ctx context.Context, communityID *uuid.UUID) ([]*model.Template, error) {
	return f.templates, nil
}

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

type fakeMailer struct {
	fail bool
	sent []sentEmail
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
	if f.fail {
		return errors.TransportFailure("email", fmt.Errorf("smtp down"))
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

type fakePusher struct {
	fail   bool
	pushed []uuid.UUID
}

func (f *fakePusher) Send(ctx context.Context, userID uuid.UUID, msg *event.PushMessage) error {
	if f.fail {
		return errors.TransportFailure("push", fmt.Errorf("endpoint unreachable"))
	}
	f.pushed = append(f.pushed, userID)
	return nil
}

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
	return nil, nil
}

type fakeInbox struct {
	fail    bool
	entries []*model.AppNotification
}

func (f *fakeInbox) Create(ctx context.Context, n *model.AppNotification) error {
	if f.fail {
		return fmt.Errorf("insert failed")
	}
	f.entries = append(f.entries, n)
	return nil
}

func (f *fakeInbox) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.AppNotification, error) {
	return f.entries, nil
}
func (f *fakeInbox) MarkRead(ctx context.Context, id uuid.UUID) error          { return nil }
func (f *fakeInbox) MarkAllRead(ctx context.Context, userID uuid.UUID) error   { return nil }
func (f *fakeInbox) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(f.entries), nil
}

type fakeDepositRepo struct {
	history []*model.HistoryEntry
}

func (f *fakeDepositRepo) Create(ctx context.Context, d *model.Deposit) error { return nil }
func (f *fakeDepositRepo) Update(ctx context.Context, d *model.Deposit) error { return nil }
func (f *fakeDepositRepo) Get(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	return nil, nil
}
func (f *fakeDepositRepo) ListByCommunity(ctx context.Context, communityID uuid.UUID, status model.DepositStatus) ([]*model.Deposit, error) {
	return nil, nil
}

func (f *fakeDepositRepo) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeDepositRepo) ListHistory(ctx context.Context, depositID uuid.UUID) ([]*model.HistoryEntry, error) {
	return f.history, nil
}

type fixture struct {
	dispatcher *Dispatcher
	mailer     *fakeMailer
	pusher     *fakePusher
	outbox     *fakeNotificationRepo
	inbox      *fakeInbox
	deposits   *fakeDepositRepo
}

func newFixture(templates *fakeTemplateRepo, cfg Config) *fixture {
	f := &fixture{
		mailer:   &fakeMailer{},
		pusher:   &fakePusher{},
		outbox:   &fakeNotificationRepo{},
		inbox:    &fakeInbox{},
		deposits: &fakeDepositRepo{},
	}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	f.dispatcher = NewDispatcher(
		template.NewResolver(templates),
		template.NewRenderer(),
		f.mailer,
		f.pusher,
		f.outbox,
		f.inbox,
		f.deposits,
		nil,
		log,
		metrics.New("test"),
		cfg,
	)
	return f
}

func systemTemplates() *fakeTemplateRepo {
	names := []string{
		"deposit-submitted", "deposit-published", "deposit-rejected",
		"review-invitation", "review-invitation-accepted", "review-created",
		"confirm-email",
	}
	repo := &fakeTemplateRepo{}
	for _, name := range names {
		repo.templates = append(repo.templates, &model.Template{
			ID:       uuid.New(),
			Name:     name,
			Template: "<p>Hello {{USER_NAME}}</p>",
		})
	}
	return repo
}

func testEvent() (*event.Event, *model.Deposit, *model.Invite) {
	platform := event.Platform{AppName: "Orvium", PublicURL: "https://orvium.io", SupportEmail: "support@orvium.io"}
	d := &model.Deposit{ID: uuid.New(), CommunityID: uuid.New(), OwnerID: uuid.New(), Title: "On Swallows"}
	sender := &model.User{ID: uuid.New(), FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"}
	inv := &model.Invite{
		ID:         uuid.New(),
		InviteType: model.InviteTypeReview,
		DepositID:  d.ID,
		Addressee:  "bob@example.com",
	}
	community := &model.Community{ID: d.CommunityID, Name: "Ornithology Society"}
	return event.NewReviewInvitation(platform, d, community, sender, inv), d, inv
}

func TestDispatchReviewInvitationEndToEnd(t *testing.T) {
	f := newFixture(systemTemplates(), Config{})
	e, d, _ := testEvent()
	bobID := uuid.New()

	outcome := f.dispatcher.Dispatch(context.Background(), e, Recipients{
		Email: []EmailRecipient{{UserID: bobID, Address: "bob@example.com"}},
		Users: []uuid.UUID{bobID},
	})

	for _, ch := range AllChannels {
		assert.True(t, outcome.Delivered(ch), "expected %s delivered", ch)
	}

	// email rendered against the invitation variable bag
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "bob@example.com", f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].Subject, "Ann Lee")
	assert.Contains(t, f.mailer.sent[0].HTML, "Ann Lee")

	// email persisted as sent for the audit trail
	require.Len(t, f.outbox.rows, 1)
	assert.Equal(t, model.NotificationStatusSent, f.outbox.rows[0].Status)

	// in-app entry targets the deposit view route
	require.Len(t, f.inbox.entries, 1)
	assert.Equal(t, bobID, f.inbox.entries[0].UserID)
	assert.Equal(t, fmt.Sprintf("/deposits/%s/view", d.ID), f.inbox.entries[0].Action)

	// exactly one history line naming the verb and the addressee
	require.Len(t, f.deposits.history, 1)
	assert.Equal(t, d.ID, f.deposits.history[0].DepositID)
	assert.Contains(t, f.deposits.history[0].Description, "review")
	assert.Contains(t, f.deposits.history[0].Description, "bob@example.com")

	assert.True(t, len(f.pusher.pushed) == 1)
}

func TestDispatchEmailFailureIsolatedFromOtherChannels(t *testing.T) {
	f := newFixture(systemTemplates(), Config{})
	f.mailer.fail = true
	e, _, _ := testEvent()
	bobID := uuid.New()

	outcome := f.dispatcher.Dispatch(context.Background(), e, Recipients{
		Email: []EmailRecipient{{UserID: bobID, Address: "bob@example.com"}},
		Users: []uuid.UUID{bobID},
	})

	emailResult := outcome.Result(ChannelEmail)
	require.NotNil(t, emailResult)
	assert.Equal(t, StatusFailed, emailResult.Status)
	assert.True(t, errors.IsCode(emailResult.Err, errors.ErrTransport))

	assert.True(t, outcome.Delivered(ChannelApp))
	assert.True(t, outcome.Delivered(ChannelPush))
	assert.True(t, outcome.Delivered(ChannelHistory))

	// the failed email is parked for the retry worker
	require.Len(t, f.outbox.rows, 1)
	assert.Equal(t, model.NotificationStatusRetrying, f.outbox.rows[0].Status)
	assert.Equal(t, 1, f.outbox.rows[0].RetryCount)
	assert.False(t, f.outbox.rows[0].NextRetryAt.IsZero())
}

func TestDispatchTemplateNotFoundFailsOnlyEmail(t *testing.T) {
	f := newFixture(&fakeTemplateRepo{}, Config{})
	e, _, _ := testEvent()
	bobID := uuid.New()

	outcome := f.dispatcher.Dispatch(context.Background(), e, Recipients{
		Email: []EmailRecipient{{UserID: bobID, Address: "bob@example.com"}},
		Users: []uuid.UUID{bobID},
	})

	emailResult := outcome.Result(ChannelEmail)
	require.NotNil(t, emailResult)
	assert.Equal(t, StatusFailed, emailResult.Status)
	assert.True(t, errors.IsCode(emailResult.Err, errors.ErrTemplateNotFound))

	assert.True(t, outcome.Delivered(ChannelApp))
	assert.True(t, outcome.Delivered(ChannelHistory))
}

func TestDispatchStrictEmailRejectsUndefinedVariable(t *testing.T) {
	repo := &fakeTemplateRepo{templates: []*model.Template{{
		ID:       uuid.New(),
		Name:     "review-invitation",
		Template: "<p>{{NO_SUCH_VARIABLE}}</p>",
	}}}
	f := newFixture(repo, Config{StrictEmail: true})
	e, _, _ := testEvent()

	outcome := f.dispatcher.Dispatch(context.Background(), e, Recipients{
		Email: []EmailRecipient{{Address: "bob@example.com"}},
	}, ChannelEmail)

	emailResult := outcome.Result(ChannelEmail)
	require.NotNil(t, emailResult)
	assert.Equal(t, StatusFailed, emailResult.Status)
	assert.True(t, errors.IsCode(emailResult.Err, errors.ErrRender))
	assert.Empty(t, f.mailer.sent)
}

func TestDispatchLenientEmailRendersUndefinedEmpty(t *testing.T) {
	repo := &fakeTemplateRepo{templates: []*model.Template{{
		ID:       uuid.New(),
		Name:     "review-invitation",
		Template: "a{{NO_SUCH_VARIABLE}}b",
	}}}
	f := newFixture(repo, Config{StrictEmail: false})
	e, _, _ := testEvent()

	outcome := f.dispatcher.Dispatch(context.Background(), e, Recipients{
		Email: []EmailRecipient{{Address: "bob@example.com"}},
	}, ChannelEmail)

	assert.True(t, outcome.Delivered(ChannelEmail))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ab", f.mailer.sent[0].HTML)
}

func TestDispatchCommentCreatedSkipsEmailAndPush(t *testing.T) {
	f := newFixture(systemTemplates(), Config{})
	platform := event.Platform{AppName: "Orvium", PublicURL: "https://orvium.io"}
	d := &model.Deposit{ID: uuid.New(), CommunityID: uuid.New(), Title: "On Swallows"}
	community := &model.Community{ID: d.CommunityID, Name: "Ornithology Society"}
	sender := &model.User{ID: uuid.New(), FirstName: "Ann", LastName: "Lee"}
	e := event.NewCommentCreated(platform, d, community, sender)

	outcome := f.dispatcher.Dispatch(context.Background(), e, Recipients{
		Email: []EmailRecipient{{Address: "owner@example.com"}},
		Users: []uuid.UUID{uuid.New()},
	})

	assert.Equal(t, StatusSkipped, outcome.Result(ChannelEmail).Status)
	assert.Equal(t, StatusSkipped, outcome.Result(ChannelPush).Status)
	assert.True(t, outcome.Delivered(ChannelApp))
	assert.True(t, outcome.Delivered(ChannelHistory))
	assert.Empty(t, f.mailer.sent)
}

func TestDispatchNoRecipientsSkips(t *testing.T) {
	f := newFixture(systemTemplates(), Config{})
	e, _, _ := testEvent()

	outcome := f.dispatcher.Dispatch(context.Background(), e, Recipients{})

	assert.Equal(t, StatusSkipped, outcome.Result(ChannelEmail).Status)
	assert.Equal(t, StatusSkipped, outcome.Result(ChannelApp).Status)
	assert.Equal(t, StatusSkipped, outcome.Result(ChannelPush).Status)
	// history needs no recipients
	assert.True(t, outcome.Delivered(ChannelHistory))
}

func TestDispatchAppendsExactlyOneHistoryEntry(t *testing.T) {
	f := newFixture(systemTemplates(), Config{})
	e, _, _ := testEvent()

	f.dispatcher.Dispatch(context.Background(), e, Recipients{Users: []uuid.UUID{uuid.New()}})
	assert.Len(t, f.deposits.history, 1)

	f.dispatcher.Dispatch(context.Background(), e, Recipients{Users: []uuid.UUID{uuid.New()}})
	assert.Len(t, f.deposits.history, 2)
}
