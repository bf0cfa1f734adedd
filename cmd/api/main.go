package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/nvron-auth/internal/api/http"
	"github.com/spec-kit/nvron-auth/internal/api/http/handlers"
	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/config"
	"github.com/spec-kit/nvron-auth/internal/domain"
	"github.com/spec-kit/nvron-auth/internal/events"
	"github.com/spec-kit/nvron-auth/internal/observability"
	"github.com/spec-kit/nvron-auth/internal/persistence"
	"github.com/spec-kit/nvron-auth/internal/repository"
	"github.com/spec-kit/nvron-auth/internal/service"
	"github.com/spec-kit/nvron-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		logger.Fatal("signing key unavailable", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo repository.UserRepository
		subRepo  repository.SubscriptionRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		subRepo = repository.NewSubscriptionRepository(pg.PoolHandle())
	} else {
		userRepo = repository.NewMemoryUserRepository()
		subRepo = repository.NewMemorySubscriptionRepository()
	}

	if err := seedUser(ctx, userRepo, cfg.Auth, logger); err != nil {
		logger.Fatal("failed to seed user", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notifier := service.NewNotificationService(redis, logger, cfg.Notification)
	notificationWorker := worker.NewNotificationWorker(notifier, logger, 0)
	notificationWorker.Register(dispatcher)
	notificationWorker.Start(ctx)

	issuer, err := service.NewCredentialIssuer(service.IssuerDependencies{
		Users:      userRepo,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		logger.Fatal("failed to build credential issuer", zap.Error(err))
	}
	verifier := service.NewCredentialVerifier(service.VerifierDependencies{
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	subscriptions := service.NewSubscriptionService(subRepo, dispatcher, logger)

	addresses := auth.NewAddressExtractor(cfg.Auth.TrustForwardedFor)

	app := httptransport.NewApp(cfg.App.Name,
		httptransport.MiddlewareConfig{
			Logger:  logger,
			Metrics: metrics,
			Timeout: cfg.App.RequestTimeout(),
			CORS:    cfg.CORS,
		},
		httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
			Auth:           handlers.NewAuthHandler(issuer, addresses),
			Subscriptions:  handlers.NewSubscriptionHandler(subscriptions),
			AuthMiddleware: auth.NewAuthMiddleware(verifier, addresses),
		})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	notificationWorker.Stop()
}

// seedUser provisions the configured bootstrap account, if any.
func seedUser(ctx context.Context, users repository.UserRepository, cfg config.AuthConfig, logger *zap.Logger) error {
	if cfg.SeedUsername == "" {
		logger.Warn("no seed user configured; logins require an existing user store")
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	user := &domain.User{ID: cfg.SeedUserID, Username: cfg.SeedUsername, PasswordHash: hash}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			logger.Info("seed user already present", zap.String("username", cfg.SeedUsername))
			return nil
		}
		return err
	}
	logger.Info("seed user created", zap.String("subject_id", user.ID), zap.String("username", user.Username))
	return nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
