package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"fitpass/internal/audit"
	"fitpass/internal/cache"
	"fitpass/internal/config"
	"fitpass/internal/db"
	"fitpass/internal/gym"
	"fitpass/internal/invoice"
	"fitpass/internal/jobs"
	"fitpass/internal/logger"
	"fitpass/internal/notification"
	"fitpass/internal/payment"
	"fitpass/internal/plan"
	"fitpass/internal/server"
	"fitpass/internal/settlement"
	"fitpass/internal/subscription"
	"fitpass/internal/user"
)

func main() {
	logger.Init()
	logger.Info("Starting FitPass application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	queue := jobs.NewQueue(redisClient)
	redisCache := cache.NewRedisCache(redisClient)

	userRepo := user.NewRepository(database)
	gymRepo := gym.NewRepository(database)
	planRepo := plan.NewRepository(database)
	payRepo := payment.NewRepository(database)
	subRepo := subscription.NewRepository(database)
	settlementRepo := settlement.NewRepository(database)
	notificationRepo := notification.NewRepository(database)
	auditRepo := audit.NewRepository(database)

	gateway := payment.NewClient(
		cfg.GatewayKeyID,
		cfg.GatewayKeySecret,
		cfg.GatewayWebhookSecret,
		cfg.GatewayBaseURL,
	)

	userService := user.NewService(userRepo, redisCache, cfg.JWTSecret)
	subscriptionService := subscription.NewService(
		subRepo, planRepo, gymRepo, payRepo, userRepo, gateway, queue,
	)
	settlementService := settlement.NewService(settlementRepo, gymRepo, queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := jobs.NewDispatcher(queue, cfg.WorkerConcurrency, cfg.JobMaxTries)
	dispatcher.Register(jobs.NewNotificationWorker(notificationRepo))
	dispatcher.Register(jobs.NewAuditWorker(auditRepo))
	dispatcher.Register(jobs.NewInvoiceWorker(invoice.NewDirUploader("invoices"), queue))
	go dispatcher.Start(ctx)
	logger.Info("Job dispatcher started", "concurrency", cfg.WorkerConcurrency)

	srv := server.New(cfg, server.Handlers{
		User:         user.NewHandler(userService),
		Gym:          gym.NewHandler(gymRepo),
		Plan:         plan.NewHandler(planRepo),
		Subscription: subscription.NewHandler(subscriptionService),
		Settlement:   settlement.NewHandler(settlementService),
		Notification: notification.NewHandler(notificationRepo),
		Audit:        audit.NewHandler(auditRepo),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
