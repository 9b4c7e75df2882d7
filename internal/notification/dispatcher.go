package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orvium/orvium-api/internal/email"
	"github.com/orvium/orvium-api/internal/event"
	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/repository"
	"github.com/orvium/orvium-api/internal/template"
	"github.com/orvium/orvium-api/pkg/logger"
	"github.com/orvium/orvium-api/pkg/messaging"
	"github.com/orvium/orvium-api/pkg/metrics"
)

type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelApp     Channel = "app"
	ChannelPush    Channel = "push"
	ChannelHistory Channel = "history"
)

// AllChannels is the default target list.
var AllChannels = []Channel{ChannelEmail, ChannelApp, ChannelPush, ChannelHistory}

type ChannelStatus string

const (
	StatusDelivered ChannelStatus = "delivered"
	StatusFailed    ChannelStatus = "failed"
	StatusSkipped   ChannelStatus = "skipped"
)

// ChannelResult is the terminal state of one channel for one dispatch.
// Skipped means the event had nothing to deliver on that channel.
type ChannelResult struct {
	Channel Channel
	Status  ChannelStatus
	Err     error
}

// Outcome aggregates per-channel results. A dispatch never yields an
// all-or-nothing error; partial delivery is a valid terminal state.
type Outcome struct {
	EventType event.Type
	Results   []ChannelResult
}

func (o *Outcome) Result(ch Channel) *ChannelResult {
	for i := range o.Results {
		if o.Results[i].Channel == ch {
			return &o.Results[i]
		}
	}
	return nil
}

func (o *Outcome) Delivered(ch Channel) bool {
	r := o.Result(ch)
	return r != nil && r.Status == StatusDelivered
}

// EmailRecipient pairs a destination address with the user it belongs to,
// uuid.Nil for addressees without an account (e.g. fresh invites).
type EmailRecipient struct {
	UserID  uuid.UUID
	Address string
}

// Recipients selects who receives the event on each channel. Email goes to
// the listed addresses; app and push notifications target Users.
type Recipients struct {
	Email []EmailRecipient
	Users []uuid.UUID
}

// Pusher is the push transport boundary; it fans out to the user's stored
// subscriptions and swallows per-subscription failures.
type Pusher interface {
	Send(ctx context.Context, userID uuid.UUID, msg *event.PushMessage) error
}

const emailRetryDelay = 5 * time.Minute

// Dispatcher routes a constructed event to its delivery channels. Channels
// are independent: failure or absence on one never blocks the others.
type Dispatcher struct {
	resolver      *template.Resolver
	renderer      *template.Renderer
	mailer        email.Service
	pusher        Pusher
	notifications repository.NotificationRepository
	inbox         repository.AppNotificationRepository
	deposits      repository.DepositRepository
	broker        messaging.Broker
	logger        *logger.Logger
	metrics       *metrics.Metrics

	// strictEmail turns undefined template variables into render errors for
	// the email channel. Other channels always render leniently.
	strictEmail bool
}

type Config struct {
	StrictEmail bool
}

func NewDispatcher(
	resolver *template.Resolver,
	renderer *template.Renderer,
	mailer email.Service,
	pusher Pusher,
	notifications repository.NotificationRepository,
	inbox repository.AppNotificationRepository,
	deposits repository.DepositRepository,
	broker messaging.Broker,
	log *logger.Logger,
	m *metrics.Metrics,
	cfg Config,
) *Dispatcher {
	return &Dispatcher{
		resolver:      resolver,
		renderer:      renderer,
		mailer:        mailer,
		pusher:        pusher,
		notifications: notifications,
		inbox:         inbox,
		deposits:      deposits,
		broker:        broker,
		logger:        log,
		metrics:       m,
		strictEmail:   cfg.StrictEmail,
	}
}

// Dispatch attempts delivery of e on every requested channel and returns the
// aggregate outcome. There is no transactional guarantee across channels.
func (d *Dispatcher) Dispatch(ctx context.Context, e *event.Event, rcpt Recipients, channels ...Channel) *Outcome {
	if len(channels) == 0 {
		channels = AllChannels
	}

	timer := prometheus.NewTimer(d.metrics.DispatchDuration)
	defer timer.ObserveDuration()
	d.metrics.EventsDispatched.WithLabelValues(string(e.Type())).Inc()

	outcome := &Outcome{EventType: e.Type()}
	for _, ch := range channels {
		var result ChannelResult
		switch ch {
		case ChannelEmail:
			result = d.dispatchEmail(ctx, e, rcpt.Email)
		case ChannelApp:
			result = d.dispatchApp(ctx, e, rcpt.Users)
		case ChannelPush:
			result = d.dispatchPush(ctx, e, rcpt.Users)
		case ChannelHistory:
			result = d.dispatchHistory(ctx, e)
		default:
			continue
		}
		outcome.Results = append(outcome.Results, result)
		d.observe(e, result)
	}
	return outcome
}

func (d *Dispatcher) observe(e *event.Event, r ChannelResult) {
	switch r.Status {
	case StatusDelivered:
		d.metrics.ChannelDeliveries.WithLabelValues(string(r.Channel)).Inc()
	case StatusFailed:
		d.metrics.ChannelFailures.WithLabelValues(string(r.Channel)).Inc()
		d.logger.Error(r.Err, "channel delivery failed",
			"event_type", string(e.Type()), "channel", string(r.Channel))
	case StatusSkipped:
		d.metrics.ChannelSkipped.WithLabelValues(string(r.Channel)).Inc()
	}
}

func (d *Dispatcher) dispatchEmail(ctx context.Context, e *event.Event, recipients []EmailRecipient) ChannelResult {
	result := ChannelResult{Channel: ChannelEmail}
	if len(recipients) == 0 {
		result.Status = StatusSkipped
		return result
	}

	tmpl, err := d.resolver.Resolve(ctx, e.TemplateName(), e.CommunityID())
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	msg, err := e.Email(d.renderer, tmpl.Template, d.strictEmail)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	if msg == nil {
		result.Status = StatusSkipped
		return result
	}

	var lastErr error
	delivered := 0
	for _, to := range recipients {
		if err := d.deliverEmail(ctx, e, to, msg); err != nil {
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered == 0 && lastErr != nil {
		result.Status = StatusFailed
		result.Err = lastErr
		return result
	}
	result.Status = StatusDelivered
	return result
}

// deliverEmail persists the notification first so a transport failure can be
// retried by the worker later.
func (d *Dispatcher) deliverEmail(ctx context.Context, e *event.Event, to EmailRecipient, msg *event.EmailMessage) error {
	n := &model.Notification{
		ID:        uuid.New(),
		UserID:    to.UserID,
		EventType: string(e.Type()),
		Subject:   msg.Subject,
		Content:   msg.HTML,
		Recipient: to.Address,
		Status:    model.NotificationStatusPending,
	}
	if err := d.notifications.Create(ctx, n); err != nil {
		return err
	}

	if err := d.mailer.Send(ctx, to.Address, msg.Subject, msg.HTML); err != nil {
		n.Status = model.NotificationStatusRetrying
		n.RetryCount = 1
		n.LastError = err.Error()
		n.NextRetryAt = time.Now().Add(emailRetryDelay)
		if updateErr := d.notifications.Update(ctx, n); updateErr != nil {
			d.logger.Error(updateErr, "failed to schedule email retry", "notification_id", n.ID.String())
		}
		return err
	}

	n.Status = model.NotificationStatusSent
	n.SentAt = time.Now()
	if err := d.notifications.Update(ctx, n); err != nil {
		d.logger.Error(err, "failed to mark notification sent", "notification_id", n.ID.String())
	}
	return nil
}

func (d *Dispatcher) dispatchApp(ctx context.Context, e *event.Event, users []uuid.UUID) ChannelResult {
	result := ChannelResult{Channel: ChannelApp}
	if len(users) == 0 {
		result.Status = StatusSkipped
		return result
	}

	var lastErr error
	delivered := 0
	skipped := 0
	for _, userID := range users {
		n := e.AppNotification(userID)
		if n == nil {
			skipped++
			continue
		}
		if err := d.inbox.Create(ctx, n); err != nil {
			lastErr = err
			continue
		}
		delivered++

		// Best effort: connected clients pick new entries up live.
		if d.broker != nil {
			if err := d.broker.Publish(ctx, "notifications", messaging.Message{
				Type:    string(e.Type()),
				Payload: n,
			}); err != nil {
				d.logger.Warn("failed to publish app notification", "error", err.Error())
			}
		}
	}

	switch {
	case skipped == len(users):
		result.Status = StatusSkipped
	case delivered == 0 && lastErr != nil:
		result.Status = StatusFailed
		result.Err = lastErr
	default:
		result.Status = StatusDelivered
	}
	return result
}

func (d *Dispatcher) dispatchPush(ctx context.Context, e *event.Event, users []uuid.UUID) ChannelResult {
	result := ChannelResult{Channel: ChannelPush}
	msg := e.Push()
	if msg == nil || len(users) == 0 {
		result.Status = StatusSkipped
		return result
	}

	var lastErr error
	delivered := 0
	for _, userID := range users {
		if err := d.pusher.Send(ctx, userID, msg); err != nil {
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered == 0 && lastErr != nil {
		result.Status = StatusFailed
		result.Err = lastErr
		return result
	}
	result.Status = StatusDelivered
	return result
}

func (d *Dispatcher) dispatchHistory(ctx context.Context, e *event.Event) ChannelResult {
	result := ChannelResult{Channel: ChannelHistory}
	entry := e.History()
	if entry == nil {
		result.Status = StatusSkipped
		return result
	}

	if err := d.deposits.AppendHistory(ctx, entry); err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	result.Status = StatusDelivered
	return result
}
