package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
	"github.com/agendahub/booking-api/pkg/logger"
	"github.com/agendahub/booking-api/pkg/messaging"
	"github.com/agendahub/booking-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	Channel       string
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
}

// OutboxProcessor drains pending domain events and publishes them to
// the message broker. Events that keep failing past the retry budget
// are marked FAILED and left for inspection.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.Channel == "" {
		panic("Channel must be set")
	}
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox batch")
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending events: %w", err)
	}

	for _, event := range events {
		start := time.Now()
		err := p.publish(ctx, event)
		p.metrics.OutboxProcessingLatency.Observe(time.Since(start).Seconds())

		if err == nil {
			p.metrics.OutboxEventsProcessed.Inc()
			if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
				p.logger.Error(err, "failed to mark event processed")
			}
			continue
		}

		p.logger.Error(err, "failed to publish event")
		p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()

		if event.RetryCount+1 >= p.config.RetryAttempts {
			p.metrics.OutboxEventsFailed.Inc()
			msg := err.Error()
			if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &msg); err != nil {
				p.logger.Error(err, "failed to mark event failed")
			}
			continue
		}

		if err := p.repo.IncrementRetry(ctx, event.ID); err != nil {
			p.logger.Error(err, "failed to increment retry count")
		}
	}

	return nil
}

func (p *OutboxProcessor) publish(ctx context.Context, event *model.OutboxEvent) error {
	return p.broker.Publish(ctx, p.config.Channel, messaging.Message{
		Type:    event.EventType,
		Payload: json.RawMessage(event.Payload),
	})
}

// Cleanup deletes processed events older than the retention window.
func (p *OutboxProcessor) Cleanup(ctx context.Context, retention time.Duration) error {
	deleted, err := p.repo.DeleteProcessedBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return fmt.Errorf("failed to clean up processed events: %w", err)
	}
	if deleted > 0 {
		p.logger.Info(fmt.Sprintf("cleaned up %d processed events", deleted))
	}
	return nil
}
