package dto

import (
	"time"

	"github.com/spec-kit/nvron-auth/internal/domain"
)

// SubscribeRequest payload for the subscribe action.
type SubscribeRequest struct {
	Plan string `json:"plan"`
}

// SubscriptionResponse is the public view of a subscription.
type SubscriptionResponse struct {
	ID        string    `json:"id"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSubscriptionResponse maps a domain subscription.
func NewSubscriptionResponse(sub domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{ID: sub.ID, Plan: sub.Plan, CreatedAt: sub.CreatedAt}
}
