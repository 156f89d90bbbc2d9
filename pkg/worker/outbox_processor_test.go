package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository/memory"
	"github.com/agendahub/booking-api/pkg/logger"
	"github.com/agendahub/booking-api/pkg/messaging"
	"github.com/agendahub/booking-api/pkg/metrics"
)

var testMetrics = metrics.New("test_worker")

type fakeBroker struct {
	mu        sync.Mutex
	published []messaging.Message
	fail      bool
}

func (b *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("broker down")
	}
	b.published = append(b.published, message.(messaging.Message))
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func newProcessor(repo *memory.OutboxRepository, broker messaging.Broker, retries int) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		Channel:       "events",
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: retries,
	}, logger.NewLogger(&logger.Config{Level: logger.FatalLevel, TimeFormat: time.RFC3339, Output: io.Discard}), testMetrics)
}

func pendingEvent(t *testing.T, repo *memory.OutboxRepository) *model.OutboxEvent {
	t.Helper()
	event, err := model.NewOutboxEvent(model.EventBusinessCreated, map[string]string{"id": "b1"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func TestProcessBatchPublishesAndMarksProcessed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{}
	event := pendingEvent(t, repo)

	require.NoError(t, newProcessor(repo, broker, 3).processBatch(ctx))

	require.Len(t, broker.published, 1)
	assert.Equal(t, model.EventBusinessCreated, broker.published[0].Type)
	assert.Equal(t, model.OutboxStatusProcessed, event.Status)
	assert.NotNil(t, event.ProcessedAt)

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessBatchRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{fail: true}
	event := pendingEvent(t, repo)

	processor := newProcessor(repo, broker, 2)

	require.NoError(t, processor.processBatch(ctx))
	assert.Equal(t, model.OutboxStatusPending, event.Status)
	assert.Equal(t, 1, event.RetryCount)

	require.NoError(t, processor.processBatch(ctx))
	assert.Equal(t, model.OutboxStatusFailed, event.Status)
	require.NotNil(t, event.ErrorMessage)
	assert.Contains(t, *event.ErrorMessage, "broker down")

	// Failed events leave the pending queue.
	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCleanupDeletesOldProcessedEvents(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{}
	event := pendingEvent(t, repo)
	processor := newProcessor(repo, broker, 3)

	require.NoError(t, processor.processBatch(ctx))
	require.Equal(t, model.OutboxStatusProcessed, event.Status)

	// Retention of zero makes everything already processed eligible.
	time.Sleep(time.Millisecond)
	require.NoError(t, processor.Cleanup(ctx, 0))
	assert.Empty(t, repo.Events)
}
