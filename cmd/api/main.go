package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agendahub/booking-api/internal/config"
	"github.com/agendahub/booking-api/internal/gateway/identity"
	"github.com/agendahub/booking-api/internal/gateway/storage"
	appointmentHandler "github.com/agendahub/booking-api/internal/handler/appointment"
	authHandler "github.com/agendahub/booking-api/internal/handler/auth"
	businessHandler "github.com/agendahub/booking-api/internal/handler/business"
	categoryHandler "github.com/agendahub/booking-api/internal/handler/category"
	healthHandler "github.com/agendahub/booking-api/internal/handler/health"
	serviceHandler "github.com/agendahub/booking-api/internal/handler/service"
	userHandler "github.com/agendahub/booking-api/internal/handler/user"
	"github.com/agendahub/booking-api/internal/middleware"
	"github.com/agendahub/booking-api/internal/repository/postgres"
	"github.com/agendahub/booking-api/internal/router"
	appointmentService "github.com/agendahub/booking-api/internal/service/appointment"
	authService "github.com/agendahub/booking-api/internal/service/auth"
	businessService "github.com/agendahub/booking-api/internal/service/business"
	categoryService "github.com/agendahub/booking-api/internal/service/category"
	svcService "github.com/agendahub/booking-api/internal/service/service"
	userService "github.com/agendahub/booking-api/internal/service/user"
	"github.com/agendahub/booking-api/pkg/logger"
	redisbroker "github.com/agendahub/booking-api/pkg/messaging/redis"
	"github.com/agendahub/booking-api/pkg/metrics"
	"github.com/agendahub/booking-api/pkg/worker"
)

func main() {
	log := logger.NewLogger(nil)
	zl := log.Zerolog()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.Server.MigrationsPath); err != nil {
		log.Fatal(err, "failed to run migrations")
	}

	m := metrics.New("booking_api")

	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	businessRepo := postgres.NewBusinessRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	identityGw := identity.NewClient(cfg.Identity, zl, m)
	storageGw := storage.NewClient(cfg.Storage, zl, m)

	authSvc := authService.NewService(userRepo, identityGw, zl)
	userSvc := userService.NewService(userRepo, storageGw, zl)
	categorySvc := categoryService.NewService(categoryRepo, zl)
	businessSvc := businessService.NewService(userRepo, categoryRepo, businessRepo, appointmentRepo, outboxRepo, storageGw, zl)
	svcSvc := svcService.NewService(userRepo, businessRepo, serviceRepo, outboxRepo, storageGw, zl)
	appointmentSvc := appointmentService.NewService(userRepo, businessRepo, appointmentRepo, outboxRepo, zl)

	authMw := middleware.NewAuthMiddleware(identityGw)

	engine := router.New(cfg, authMw, router.Handlers{
		Auth:        authHandler.NewHandler(authSvc),
		User:        userHandler.NewHandler(userSvc),
		Business:    businessHandler.NewHandler(businessSvc),
		Category:    categoryHandler.NewHandler(categorySvc),
		Service:     serviceHandler.NewHandler(svcSvc),
		Appointment: appointmentHandler.NewHandler(appointmentSvc),
		Health:      healthHandler.NewHandler(db),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The broker is optional in development; without it the outbox
	// simply accumulates pending events.
	broker, err := redisbroker.NewBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, zl)
	if err != nil {
		log.Error(err, "failed to connect to message broker, outbox publishing disabled")
	} else {
		defer broker.Close()
		processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
			Channel:       cfg.Redis.Channel,
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
		}, log, m)
		go processor.Start(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(fmt.Sprintf("server listening on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "forced shutdown")
		os.Exit(1)
	}
}
