package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/repository-api/internal/api/http"
	"github.com/spec-kit/repository-api/internal/api/http/handlers"
	"github.com/spec-kit/repository-api/internal/auth"
	"github.com/spec-kit/repository-api/internal/config"
	"github.com/spec-kit/repository-api/internal/observability"
	"github.com/spec-kit/repository-api/internal/persistence"
	"github.com/spec-kit/repository-api/internal/repository"
	"github.com/spec-kit/repository-api/internal/service"
	"github.com/spec-kit/repository-api/internal/tenancy"
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
	accountRepo := repository.NewAccountRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	grantRepo := repository.NewGrantRepository(pool)

	revocations := service.NewRevocationStore(redis.Client, cfg.Auth.RefreshTokenTTL(), logger)
	sessionService := service.NewSessionService(*cfg, service.SessionDependencies{
		UserRepo:    userRepo,
		GrantRepo:   grantRepo,
		Revocations: revocations,
	}, logger)

	tenantResolver := tenancy.NewResolver(accountRepo, logger)
	authMiddleware := auth.NewMiddleware(sessionService.Codec(), userRepo, revocations, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	secureCookies := cfg.App.Production()
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tenants:        handlers.NewTenantsHandler(accountRepo),
		Sessions:       handlers.NewSessionsHandler(sessionService, secureCookies),
		Registrations:  handlers.NewRegistrationsHandler(sessionService, secureCookies),
		TenantResolver: tenantResolver,
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
