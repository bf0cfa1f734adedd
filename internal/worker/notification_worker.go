package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/nvron-auth/internal/events"
)

const defaultQueueSize = 256

// EventHandler processes a dequeued event.
type EventHandler interface {
	EventTypes() []events.EventType
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves event delivery off the request path. Events are
// queued by dispatcher subscriptions and handled by a single goroutine.
type NotificationWorker struct {
	handler EventHandler
	logger  *zap.Logger
	queue   chan events.Event
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(handler EventHandler, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		queue:   make(chan events.Event, queueSize),
	}
}

// Register subscribes the worker's queue to every event the handler wants.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range w.handler.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

// enqueue never blocks; a full queue or a stopped worker drops the event.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

// Start launches the delivery loop. It exits once Stop drains the queue.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			if err := w.handler.Handle(ctx, event); err != nil {
				w.logger.Warn("deliver event", zap.String("event_id", event.ID), zap.Error(err))
			}
		}
	}()
}

// Stop closes the queue and waits for pending events to be handled.
// Events published afterwards are dropped.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
