package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/nvron-auth/internal/events"
)

type recordingHandler struct {
	mu   sync.Mutex
	seen []events.EventType
}

func (h *recordingHandler) EventTypes() []events.EventType {
	return []events.EventType{events.EventSubscriptionCreated}
}

func (h *recordingHandler) Handle(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, event.Type)
	return nil
}

func TestNotificationWorkerDeliversQueuedEvents(t *testing.T) {
	handler := &recordingHandler{}
	dispatcher := events.NewInMemoryDispatcher()
	w := NewNotificationWorker(handler, nil, 8)
	w.Register(dispatcher)
	w.Start(context.Background())

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventSubscriptionCreated, "123", nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventCredentialIssued, "123", nil)))
	w.Stop()

	assert.Equal(t, []events.EventType{events.EventSubscriptionCreated}, handler.seen)
}

func TestNotificationWorkerDropsWhenFull(t *testing.T) {
	handler := &recordingHandler{}
	w := NewNotificationWorker(handler, nil, 1)

	ctx := context.Background()
	require.NoError(t, w.enqueue(ctx, events.New(events.EventSubscriptionCreated, "1", nil)))
	require.NoError(t, w.enqueue(ctx, events.New(events.EventSubscriptionCreated, "2", nil)))

	w.Start(ctx)
	w.Stop()
	assert.Len(t, handler.seen, 1)
}

func TestNotificationWorkerIgnoresEventsAfterStop(t *testing.T) {
	handler := &recordingHandler{}
	w := NewNotificationWorker(handler, nil, 4)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	assert.NotPanics(t, func() {
		_ = w.enqueue(context.Background(), events.New(events.EventSubscriptionCreated, "1", nil))
	})
	assert.Empty(t, handler.seen)
}
