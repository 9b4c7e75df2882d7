package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/orvium/orvium-api/internal/config"
	"github.com/orvium/orvium-api/internal/email"
	"github.com/orvium/orvium-api/internal/event"
	depositHandler "github.com/orvium/orvium-api/internal/handler/deposit"
	healthHandler "github.com/orvium/orvium-api/internal/handler/health"
	inboxHandler "github.com/orvium/orvium-api/internal/handler/inbox"
	inviteHandler "github.com/orvium/orvium-api/internal/handler/invite"
	pushHandler "github.com/orvium/orvium-api/internal/handler/push"
	reviewHandler "github.com/orvium/orvium-api/internal/handler/review"
	templateHandler "github.com/orvium/orvium-api/internal/handler/template"
	userHandler "github.com/orvium/orvium-api/internal/handler/user"
	"github.com/orvium/orvium-api/internal/middleware"
	"github.com/orvium/orvium-api/internal/notification"
	"github.com/orvium/orvium-api/internal/push"
	"github.com/orvium/orvium-api/internal/repository/postgres"
	"github.com/orvium/orvium-api/internal/router"
	depositService "github.com/orvium/orvium-api/internal/service/deposit"
	inboxService "github.com/orvium/orvium-api/internal/service/inbox"
	inviteService "github.com/orvium/orvium-api/internal/service/invite"
	reviewService "github.com/orvium/orvium-api/internal/service/review"
	templateService "github.com/orvium/orvium-api/internal/service/template"
	userService "github.com/orvium/orvium-api/internal/service/user"
	"github.com/orvium/orvium-api/internal/template"
	"github.com/orvium/orvium-api/pkg/logger"
	"github.com/orvium/orvium-api/pkg/messaging/redis"
	"github.com/orvium/orvium-api/pkg/metrics"
	"github.com/orvium/orvium-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := &logger.Logger{ZL: log.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	// Repositories
	templateRepo := postgres.NewTemplateRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	appNotificationRepo := postgres.NewAppNotificationRepository(db)
	depositRepo := postgres.NewDepositRepository(db)
	inviteRepo := postgres.NewInviteRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	userRepo := postgres.NewUserRepository(db)
	communityRepo := postgres.NewCommunityRepository(db)
	pushRepo := postgres.NewPushSubscriptionRepository(db)

	// Notification pipeline
	mailer := email.NewSMTPService(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	pusher := push.NewService(pushRepo, push.VAPIDConfig{
		PublicKey:  cfg.Push.VAPIDPublicKey,
		PrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber: cfg.Push.Subscriber,
		TTL:        cfg.Push.TTL,
	}, appLogger)

	m := metrics.NewMetrics("orvium", "notifications")
	dispatcher := notification.NewDispatcher(
		template.NewResolver(templateRepo),
		template.NewRenderer(),
		mailer,
		pusher,
		notificationRepo,
		appNotificationRepo,
		depositRepo,
		broker,
		appLogger,
		m,
		notification.Config{StrictEmail: cfg.Notification.StrictEmail},
	)

	platform := event.Platform{
		AppName:      cfg.Platform.AppName,
		PublicURL:    cfg.Platform.PublicURL,
		SupportEmail: cfg.Platform.SupportEmail,
	}
	tokens := security.NewBcryptTokenHasher(0)

	// Services
	depositSvc := depositService.NewService(depositRepo, communityRepo, userRepo, dispatcher, platform)
	inviteSvc := inviteService.NewService(inviteRepo, depositRepo, communityRepo, userRepo, dispatcher, tokens, platform)
	reviewSvc := reviewService.NewService(reviewRepo, depositRepo, communityRepo, userRepo, dispatcher, platform)
	templateSvc := templateService.NewService(templateRepo)
	inboxSvc := inboxService.NewService(appNotificationRepo)
	userSvc := userService.NewService(userRepo, dispatcher, tokens, platform)

	// HTTP layer
	auth := middleware.NewAuthMiddleware(cfg.JWT)
	r := router.NewRouter(
		cfg,
		auth,
		healthHandler.NewHandler(db),
		depositHandler.NewHandler(depositSvc),
		inviteHandler.NewHandler(inviteSvc),
		reviewHandler.NewHandler(reviewSvc),
		templateHandler.NewHandler(templateSvc),
		inboxHandler.NewHandler(inboxSvc),
		pushHandler.NewHandler(pusher, cfg.Push.VAPIDPublicKey),
		userHandler.NewHandler(userSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}
