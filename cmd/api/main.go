package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/event-gate/internal/api/http"
	"github.com/spec-kit/event-gate/internal/api/http/handlers"
	"github.com/spec-kit/event-gate/internal/auth"
	"github.com/spec-kit/event-gate/internal/cache"
	"github.com/spec-kit/event-gate/internal/config"
	"github.com/spec-kit/event-gate/internal/credential"
	"github.com/spec-kit/event-gate/internal/events"
	"github.com/spec-kit/event-gate/internal/observability"
	"github.com/spec-kit/event-gate/internal/persistence"
	"github.com/spec-kit/event-gate/internal/repository"
	"github.com/spec-kit/event-gate/internal/service"
	"github.com/spec-kit/event-gate/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := repository.NewRepositories(pg.PoolHandle())
	if repos.Memory {
		logger.Warn("using in-memory repositories; data is lost on restart")
	}

	store, err := newCredentialStore(ctx, cfg.Credential)
	if err != nil {
		logger.Fatal("failed to init credential store", zap.Error(err))
	}
	generator := credential.NewGenerator(store, cfg.Credential.QRSize)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	var forwarder *events.AMQPForwarder
	if cfg.Broker.AMQPURL != "" {
		forwarder, err = events.DialAMQP(cfg.Broker.AMQPURL, cfg.Broker.Exchange, 5, 2*time.Second, logger)
		if err != nil {
			logger.Error("amqp forwarding disabled", zap.Error(err))
		} else {
			defer forwarder.Close()
		}
	}
	worker.StartNotificationWorker(dispatcher, service.NewNotificationService(dispatcher, logger), forwarder)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    repos.Users,
		Credentials: generator,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:  repos.Events,
		UserRepo:   repos.Users,
		Cache:      cache.NewEventsCache(redis.Client, cfg.Redis.EventsCacheTTL()),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	gateService := service.NewGateService(service.GateDependencies{
		UserRepo:   repos.Users,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	userService := service.NewUserService(repos.Users, eventService, generator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users: handlers.NewUsersHandler(authService, handlers.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		}),
		Attendee:       handlers.NewAttendeeHandler(userService, eventService),
		Admin:          handlers.NewAdminHandler(gateService, eventService, userService),
		AuthMiddleware: auth.NewAuthMiddleware(authService, cfg.Auth.CookieName),
		RateLimiter:    httptransport.NewRateLimiter(redis, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow(), logger),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newCredentialStore(ctx context.Context, cfg config.CredentialConfig) (credential.Store, error) {
	if cfg.Backend == config.CredentialBackendS3 {
		return credential.NewS3Store(ctx, cfg)
	}
	return credential.NewFSStore(cfg.Dir)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
