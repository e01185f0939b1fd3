package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/gisgate/backend/api/handler"
	"github.com/gisgate/backend/internal/config"
	"github.com/gisgate/backend/internal/gis"
	"github.com/gisgate/backend/internal/infrastructure/monitor"
	"github.com/gisgate/backend/internal/infrastructure/outbox"
	pgInfra "github.com/gisgate/backend/internal/infrastructure/postgres"
	redisInfra "github.com/gisgate/backend/internal/infrastructure/redis"
	"github.com/gisgate/backend/internal/middleware"
	"github.com/gisgate/backend/internal/router"
	"github.com/gisgate/backend/internal/services"
	"github.com/gisgate/backend/internal/services/lifecycle"
	"github.com/gisgate/backend/pkg/httpcontext"
	"github.com/gisgate/backend/pkg/logger"
	"github.com/gisgate/backend/pkg/ticket"
	"github.com/gisgate/backend/repository/postgres"
	redisRepo "github.com/gisgate/backend/repository/redis"
	adminUC "github.com/gisgate/backend/usecase/admin"
	authnUC "github.com/gisgate/backend/usecase/authn"
	registerUC "github.com/gisgate/backend/usecase/register"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "notifications")
	if err != nil {
		zapLogger.Fatal("failed to open notification outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	mailSender := services.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort)
	outboxProcessor := services.NewOutboxProcessor(
		outboxStore,
		mon,
		mailSender,
		cfg.Mail,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Outbox.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Outbox.MaxRetry,
		},
	)
	outboxProcessor.Start()
	manager.Register("outbox_processor", func(ctx context.Context) error {
		outboxProcessor.Stop(ctx)
		return nil
	})

	notifier := services.NewNotifyDispatcher(outboxProcessor)

	userRepo := postgres.NewUserRepository(pool)
	tenantRepo := postgres.NewTenantRepository(pool)
	continuationRepo := redisRepo.NewContinuationRepository(redisClient, cfg.Auth.PersistentTTL)

	ticketCodec := ticket.NewCodec(
		cfg.Auth.TicketSecret,
		cfg.Auth.TicketIssuer,
		cfg.Auth.SessionTTL,
		cfg.Auth.PersistentTTL,
	)
	tokenClient := gis.NewClient(cfg.GIS, zapLogger)

	authnUseCase := authnUC.New(
		userRepo,
		tenantRepo,
		continuationRepo,
		tokenClient,
		ticketCodec,
		cfg.Auth.Pepper,
		cfg.Auth.PrivilegedRole,
		zapLogger,
	)
	adminUseCase := adminUC.New(userRepo, tenantRepo, notifier, adminUC.Links{
		BaseURL:  cfg.Mail.BaseURL,
		AdminURL: cfg.Mail.AdminURL,
	}, zapLogger)
	registerUseCase := registerUC.New(
		userRepo,
		tenantRepo,
		notifier,
		cfg.Auth.Pepper,
		cfg.Mail.AdminURL,
		zapLogger,
	)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Authenticate: apiHandler.NewAuthenticateHandler(authnUseCase, ctxAdapter, zapLogger),
		Users:        apiHandler.NewUserHandler(registerUseCase, ctxAdapter, zapLogger),
		Admin:        apiHandler.NewAdminHandler(adminUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	adminAuth := middleware.AdminAuth(adminUseCase, zapLogger)
	r := router.New(handlers, adminAuth)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
