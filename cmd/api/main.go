package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/guard-duty-service/internal/api/http"
	"github.com/spec-kit/guard-duty-service/internal/api/http/handlers"
	"github.com/spec-kit/guard-duty-service/internal/auth"
	"github.com/spec-kit/guard-duty-service/internal/cache"
	"github.com/spec-kit/guard-duty-service/internal/config"
	"github.com/spec-kit/guard-duty-service/internal/events"
	"github.com/spec-kit/guard-duty-service/internal/observability"
	"github.com/spec-kit/guard-duty-service/internal/persistence"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	"github.com/spec-kit/guard-duty-service/internal/service"
	"github.com/spec-kit/guard-duty-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	dutyStore := repository.NewDutyStore(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	aggregateRepo := repository.NewAggregateRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	var candidateCache service.CandidateCache
	if pages := cache.NewCandidatePages(redis.Handle(), cfg.Redis.CandidateTTL(), logger); pages != nil {
		pages.RegisterInvalidation(dispatcher)
		candidateCache = pages
	}

	dutyService := service.NewDutyService(service.DutyDependencies{
		DutyStore:    dutyStore,
		StaffRepo:    staffRepo,
		LocationRepo: locationRepo,
		RoleRepo:     roleRepo,
		Dispatcher:   dispatcher,
	})
	recountService := service.NewRecountService(aggregateRepo, dispatcher, logger)
	candidateService := service.NewCandidateService(candidateRepo, candidateCache)
	exportService := service.NewRosterExportService(dutyStore)
	staffService := service.NewStaffService(staffRepo, roleRepo)
	locationService := service.NewLocationService(locationRepo)
	roleService := service.NewRoleService(roleRepo)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Duties:         handlers.NewDutiesHandler(dutyService),
		Candidates:     handlers.NewCandidatesHandler(candidateService),
		Recount:        handlers.NewRecountHandler(recountService),
		Staff:          handlers.NewStaffHandler(staffService, dutyService),
		Locations:      handlers.NewLocationsHandler(locationService, dutyService),
		Roles:          handlers.NewRolesHandler(roleService),
		Export:         handlers.NewExportHandler(exportService),
		AuthMiddleware: authMiddleware,
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
