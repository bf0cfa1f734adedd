package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nvron-auth/internal/api/dto"
	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/service"
	apperrors "github.com/spec-kit/nvron-auth/pkg/util"
)

// SubscriptionHandler exposes the protected subscribe action.
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler constructs handler.
func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Subscribe handles POST /api/subscribe.
func (h *SubscriptionHandler) Subscribe(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return auth.ToDomainError(auth.ErrNoCredential)
	}

	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	sub, err := h.subscriptions.Subscribe(c.UserContext(), claims, req.Plan)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlan) {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Subscribed successfully for %s", sub.Plan),
		"data": fiber.Map{
			"subscription": dto.NewSubscriptionResponse(*sub),
		},
	})
}

// List handles GET /api/subscriptions.
func (h *SubscriptionHandler) List(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return auth.ToDomainError(auth.ErrNoCredential)
	}

	subs, err := h.subscriptions.ListForSubject(c.UserContext(), claims.SubjectID, c.QueryInt("limit", 50))
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	out := make([]dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, dto.NewSubscriptionResponse(sub))
	}
	return c.JSON(fiber.Map{"data": out})
}
