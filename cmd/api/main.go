package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/customer-care-api/internal/api/http"
	"github.com/spec-kit/customer-care-api/internal/api/http/handlers"
	"github.com/spec-kit/customer-care-api/internal/config"
	"github.com/spec-kit/customer-care-api/internal/events"
	"github.com/spec-kit/customer-care-api/internal/observability"
	"github.com/spec-kit/customer-care-api/internal/persistence"
	"github.com/spec-kit/customer-care-api/internal/repository"
	"github.com/spec-kit/customer-care-api/internal/service"
	"github.com/spec-kit/customer-care-api/internal/worker"
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
	ticketRepo := repository.NewTicketRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	worker.StartMetricsWorker(dispatcher, metrics, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		ResponseRepo: responseRepo,
		Dispatcher:   dispatcher,
	})
	responseService := service.NewResponseService(service.ResponseDependencies{
		ResponseRepo: responseRepo,
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	categoryService := service.NewCategoryService(categoryRepo, redis, cfg.Redis.CacheTTL(), logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:    handlers.NewTicketsHandler(ticketService, cfg.Query),
		Responses:  handlers.NewResponsesHandler(responseService),
		Users:      handlers.NewUsersHandler(userService, cfg.Query),
		Categories: handlers.NewCategoriesHandler(categoryService),
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
