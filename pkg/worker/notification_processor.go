package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/orvium/orvium-api/internal/email"
	"github.com/orvium/orvium-api/internal/model"
	"github.com/orvium/orvium-api/internal/repository"
	"github.com/orvium/orvium-api/pkg/logger"
	"github.com/orvium/orvium-api/pkg/metrics"
)

type NotificationProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

// NotificationProcessor polls the notification table for emails whose retry
// time has come and resends them. The dispatcher owns the first delivery
// attempt; this worker owns every attempt after that.
type NotificationProcessor struct {
	repo    repository.NotificationRepository
	mailer  email.Service
	config  NotificationProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewNotificationProcessor(
	repo repository.NotificationRepository,
	mailer email.Service,
	config NotificationProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *NotificationProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		panic("MaxRetries must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}

	return &NotificationProcessor{
		repo:    repo,
		mailer:  mailer,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *NotificationProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting notification processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down notification processor")
			return
		case <-ticker.C:
			if err := p.processDue(ctx); err != nil {
				p.logger.Error(err, "Failed to process due notifications")
			}
		}
	}
}

func (p *NotificationProcessor) processDue(ctx context.Context) error {
	due, err := p.repo.ListDue(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("list_due_notifications", "error").Inc()
		return fmt.Errorf("failed to list due notifications: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("list_due_notifications", "success").Inc()

	for _, n := range due {
		if err := p.processNotification(ctx, n); err != nil {
			p.logger.Error(err, "Failed to process notification",
				"notification_id", n.ID.String(),
				"event_type", n.EventType)
		}
	}
	return nil
}

func (p *NotificationProcessor) processNotification(ctx context.Context, n *model.Notification) error {
	p.metrics.NotificationsRetried.Inc()

	sendErr := p.mailer.Send(ctx, n.Recipient, n.Subject, n.Content)
	if sendErr == nil {
		n.Status = model.NotificationStatusSent
		n.LastError = ""
		n.SentAt = time.Now()
		return p.repo.Update(ctx, n)
	}

	n.RetryCount++
	n.LastError = sendErr.Error()
	if n.RetryCount >= p.config.MaxRetries {
		n.Status = model.NotificationStatusFailed
		p.metrics.NotificationsDeadended.Inc()
		p.logger.Error(sendErr, "Notification exhausted retries",
			"notification_id", n.ID.String(),
			"retry_count", n.RetryCount)
	} else {
		n.Status = model.NotificationStatusRetrying
		// Linear backoff: each failure pushes the next attempt further out.
		n.NextRetryAt = time.Now().Add(time.Duration(n.RetryCount) * p.config.RetryDelay)
	}

	if err := p.repo.Update(ctx, n); err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	return sendErr
}
