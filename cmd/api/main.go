package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/api/http/handlers"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/config"
	"github.com/opsdesk/helpdesk/internal/observability"
	"github.com/opsdesk/helpdesk/internal/persistence"
	"github.com/opsdesk/helpdesk/internal/repository"
	"github.com/opsdesk/helpdesk/internal/service"
	"github.com/opsdesk/helpdesk/internal/storage"

	httptransport "github.com/opsdesk/helpdesk/internal/api/http"
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

	blobs, err := storage.NewBlobStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	sessions := auth.NewSessionManager(redis.Client, cfg.Session.TTL())

	auditService := service.NewAuditService(auditRepo, logger)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Sessions:          sessions,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Audit:      auditService,
	})
	threadService := service.NewThreadService(service.ThreadDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		Blobs:          blobs,
		Audit:          auditService,
	})
	userService := service.NewUserService(userRepo, auditService)

	authMiddleware := auth.NewMiddleware(sessions, userRepo, cfg.Session.CookieName)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Upload.MaxBytes) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Thread:         handlers.NewThreadHandler(threadService, blobs),
		Users:          handlers.NewUsersHandler(userService),
		Audit:          handlers.NewAuditHandler(auditService),
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
