// Standalone outbox worker, for running event publication separately
// from the API server.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/agendahub/booking-api/internal/config"
	"github.com/agendahub/booking-api/internal/repository/postgres"
	"github.com/agendahub/booking-api/pkg/logger"
	redisbroker "github.com/agendahub/booking-api/pkg/messaging/redis"
	"github.com/agendahub/booking-api/pkg/metrics"
	"github.com/agendahub/booking-api/pkg/worker"
)

const processedRetention = 24 * time.Hour

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to message broker")
	}
	defer broker.Close()

	processor := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(db),
		broker,
		worker.OutboxProcessorConfig{
			Channel:       cfg.Redis.Channel,
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
		},
		log,
		metrics.New("booking_worker"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := processor.Cleanup(ctx, processedRetention); err != nil {
					log.Error(err, "outbox cleanup failed")
				}
			}
		}
	}()

	processor.Start(ctx)
}
