package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/threaddesk/threaddesk/internal/api/http"
	"github.com/threaddesk/threaddesk/internal/api/http/handlers"
	"github.com/threaddesk/threaddesk/internal/auth"
	"github.com/threaddesk/threaddesk/internal/config"
	"github.com/threaddesk/threaddesk/internal/dispatch"
	"github.com/threaddesk/threaddesk/internal/events"
	"github.com/threaddesk/threaddesk/internal/locking"
	"github.com/threaddesk/threaddesk/internal/observability"
	"github.com/threaddesk/threaddesk/internal/persistence"
	"github.com/threaddesk/threaddesk/internal/platform"
	"github.com/threaddesk/threaddesk/internal/repository"
	"github.com/threaddesk/threaddesk/internal/service"
	"github.com/threaddesk/threaddesk/internal/worker"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.Pool
	teamRepo := repository.NewTeamRepository(pool)
	managerRepo := repository.NewManagerRepository(pool)
	forumRepo := repository.NewForumRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	traceConfigRepo := repository.NewTraceConfigRepository(pool)
	traceTicketRepo := repository.NewTraceTicketRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	locker := locking.NewRedisLocker(redis.Client, logger)
	metrics := observability.NewMetrics()

	// TODO: swap for a real gateway binding once one is chosen.
	client := platform.NewLogClient(logger, 0)

	forumService := service.NewForumService(forumRepo, traceConfigRepo, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		ForumRepo:  forumRepo,
		ForumSvc:   forumService,
		Client:     client,
		Dispatcher: dispatcher,
		Guard:      locker,
		Logger:     logger,
	})
	traceService := service.NewTraceService(service.TraceDependencies{
		TicketRepo: traceTicketRepo,
		ConfigRepo: traceConfigRepo,
		ForumSvc:   forumService,
		Client:     client,
		Dispatcher: dispatcher,
		Locker:     locker,
		Logger:     logger,
	})
	adminService := service.NewAdminService(teamRepo, managerRepo, forumRepo, traceConfigRepo, logger)
	reminderService := service.NewReminderService(ticketRepo, forumRepo, client, logger, cfg.Bot.ReminderAge())

	notifier := service.NewNotifierService(ticketRepo, client, logger)
	notifier.RegisterHandlers(dispatcher)

	router := dispatch.NewRouter(ticketService, traceService, forumService, metrics, logger, cfg.Bot.TraceCategoryName)
	if err := client.RegisterCommands(ctx, router.Commands()); err != nil {
		logger.Fatal("failed to register commands", zap.Error(err))
	}

	scheduler, err := worker.StartReminderWorker(cfg.Bot.ReminderCron, reminderService, logger)
	if err != nil {
		logger.Fatal("failed to start reminder worker", zap.Error(err))
	}
	defer scheduler.Stop()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(cfg.Auth, tokens),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
