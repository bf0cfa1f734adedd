package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/nvron-auth/internal/config"
	"github.com/spec-kit/nvron-auth/internal/events"
	"github.com/spec-kit/nvron-auth/internal/persistence"
)

// Publisher pushes serialized events to an external channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService fans domain events out to Redis pub/sub.
type NotificationService struct {
	publisher Publisher
	logger    *zap.Logger
	cfg       config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(publisher Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// EventTypes lists the events the service forwards.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventCredentialIssued,
		events.EventCredentialRejected,
		events.EventSubscriptionCreated,
	}
}

// Handle logs the event and publishes it. A disabled Redis backend is not
// an error.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	n.logger.Debug("event", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	if n.publisher == nil || n.cfg.Channel == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := n.publisher.Publish(ctx, n.cfg.Channel, payload); err != nil {
		if errors.Is(err, persistence.ErrRedisDisabled) {
			return nil
		}
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}
