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

	"github.com/spec-kit/helpdesk/internal/alert"
	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/cache"
	"github.com/spec-kit/helpdesk/internal/clients/mail"
	"github.com/spec-kit/helpdesk/internal/clients/telegram"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

const drainTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics(cfg.App.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	roleRepo := repository.NewRoleRepository(pool)
	principalRepo := repository.NewPrincipalRepository(pool)
	stationRepo := repository.NewStationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	bots := cache.NewBotStore(redis.Client, repository.NewBotRepository(pool), cfg.Notification.BotCacheTTL(), logger)

	alerts := alert.NewDispatcher(logger, metrics,
		alert.NewTelegramChannel(bots, telegram.NewClient(telegram.Config{
			BaseURL: cfg.Telegram.APIBaseURL,
			Timeout: cfg.Telegram.Timeout(),
		})),
		alert.NewGmailChannel(mail.New(cfg.Mail)),
	)

	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:    dispatcher,
		Alerts:        alerts,
		StationRepo:   stationRepo,
		PrincipalRepo: principalRepo,
		Recorder:      metrics,
		Logger:        logger,
		Timeout:       2 * cfg.Telegram.Timeout(),
	})
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		PrincipalRepo: principalRepo,
		RoleRepo:      roleRepo,
		Alerts:        alerts,
		Logger:        logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		AttachmentRepo: attachmentRepo,
		StationRepo:    stationRepo,
		PrincipalRepo:  principalRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	principalService := service.NewPrincipalService(service.PrincipalDependencies{
		PrincipalRepo:  principalRepo,
		RoleRepo:       roleRepo,
		AttachmentRepo: attachmentRepo,
		Mailer:         authService,
		BcryptCost:     cfg.Auth.BcryptCost,
	})
	roleService := service.NewRoleService(roleRepo)
	stationService := service.NewStationService(stationRepo, bots)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), principalRepo, roleRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Principals:     handlers.NewPrincipalsHandler(principalService),
		Roles:          handlers.NewRolesHandler(roleService),
		Stations:       handlers.NewStationsHandler(stationService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Alerts:         handlers.NewAlertsHandler(alerts),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), drainTimeout)
	defer drainCancel()
	worker.DrainNotifications(drainCtx, notificationService, logger)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
