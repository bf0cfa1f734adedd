package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/domain"
	"github.com/spec-kit/nvron-auth/internal/events"
	"github.com/spec-kit/nvron-auth/internal/repository"
)

const maxPlanLength = 64

// ErrInvalidPlan is returned for an empty or oversized plan name.
var ErrInvalidPlan = errors.New("plan required")

// SubscriptionService performs the protected subscribe action.
type SubscriptionService struct {
	repo       repository.SubscriptionRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSubscriptionService creates the service.
func NewSubscriptionService(repo repository.SubscriptionRepository, dispatcher events.Dispatcher, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{repo: repo, dispatcher: dispatcher, logger: logger}
}

// Subscribe records plan for the verified subject.
func (s *SubscriptionService) Subscribe(ctx context.Context, claims *auth.Claims, plan string) (*domain.Subscription, error) {
	plan = strings.TrimSpace(plan)
	if plan == "" || utf8.RuneCountInString(plan) > maxPlanLength {
		return nil, ErrInvalidPlan
	}

	sub := &domain.Subscription{
		SubjectID:     claims.SubjectID,
		SubjectName:   claims.SubjectName,
		Plan:          plan,
		ClientAddress: claims.BoundAddress,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		zap.String("subscription_id", sub.ID),
		zap.String("subject_id", sub.SubjectID),
		zap.String("plan", sub.Plan))

	if s.dispatcher != nil {
		event := events.New(events.EventSubscriptionCreated, sub.SubjectID, events.SubscriptionCreatedPayload{
			SubscriptionID: sub.ID,
			Plan:           sub.Plan,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return sub, nil
}

// ListForSubject returns the most recent subscriptions of a subject.
func (s *SubscriptionService) ListForSubject(ctx context.Context, subjectID string, limit int) ([]domain.Subscription, error) {
	return s.repo.ListBySubject(ctx, subjectID, limit)
}
