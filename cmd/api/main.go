package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/analytics"
	httptransport "github.com/spec-kit/sla-engine/internal/api/http"
	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/service"
	"github.com/spec-kit/sla-engine/internal/sla"
	"github.com/spec-kit/sla-engine/internal/worker"
	"github.com/spec-kit/sla-engine/internal/workflow"
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

	// A broken policy table must stop the engine before it serves
	// silently-wrong adherence numbers.
	policy, err := sla.NewPolicyTable(cfg.SLA.TargetHours)
	if err != nil {
		logger.Fatal("invalid sla policy", zap.Error(err))
	}
	classifier, err := sla.NewAgingClassifier(cfg.SLA.AgingBoundsHours)
	if err != nil {
		logger.Fatal("invalid aging buckets", zap.Error(err))
	}
	evaluator := sla.NewEvaluator(policy, cfg.SLA.AtRiskThreshold)
	aggregator := analytics.NewAggregator(evaluator, classifier)
	machine := workflow.NewMachine(cfg.Workflow.CreatorCancel)

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

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	slaService := service.NewSLAService(service.SLADependencies{
		TicketRepo: ticketRepo,
		Evaluator:  evaluator,
		Aggregator: aggregator,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		TicketRepo: ticketRepo,
		Machine:    machine,
		Dispatcher: dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		AlertRepo:  alertRepo,
		Redis:      redis,
		Dispatcher: dispatcher,
		Logger:     logger,
		Config:     cfg.Notify,
	})
	authService := service.NewAuthService(cfg.Auth, accountRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	worker.StartNotificationWorker(notificationService)

	poller := worker.NewSLAPoller(slaService, cfg.SLA.PollInterval(), logger)
	go poller.Run(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Status:         handlers.NewStatusHandler(),
		Tickets:        handlers.NewTicketsHandler(workflowService, slaService),
		Analytics:      handlers.NewAnalyticsHandler(slaService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
