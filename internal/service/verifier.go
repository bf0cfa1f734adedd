package service

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"

	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/events"
	"github.com/spec-kit/nvron-auth/internal/observability"
)

// VerifierDependencies encapsulates collaborators for the credential verifier.
type VerifierDependencies struct {
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// CredentialVerifier checks a presented credential's signature, expiry and
// network-origin binding.
type CredentialVerifier struct {
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewCredentialVerifier builds the verifier.
func NewCredentialVerifier(deps VerifierDependencies) *CredentialVerifier {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialVerifier{
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Verify returns the claims of raw when it is well signed, unexpired and
// was issued to presentedAddress. Checks run in that order and stop at the
// first failure.
func (v *CredentialVerifier) Verify(ctx context.Context, raw, presentedAddress string) (*auth.Claims, error) {
	if raw == "" {
		return nil, v.reject(ctx, "", auth.ErrNoCredential)
	}

	claims, err := v.tokens.Parse(raw)
	if err != nil {
		v.logger.Debug("credential parse failed", zap.Error(err))
		return nil, v.reject(ctx, "", auth.ErrInvalidOrExpired)
	}

	if subtle.ConstantTimeCompare([]byte(claims.BoundAddress), []byte(presentedAddress)) != 1 {
		return nil, v.reject(ctx, claims.SubjectID, auth.ErrOriginMismatch)
	}

	v.metrics.RecordAuthOutcome("verify", auth.Kind(nil))
	return claims, nil
}

func (v *CredentialVerifier) reject(ctx context.Context, subjectID string, err error) error {
	kind := auth.Kind(err)
	v.metrics.RecordAuthOutcome("verify", kind)
	v.logger.Info("credential rejected", zap.String("reason", kind), zap.String("subject_id", subjectID))

	if v.dispatcher != nil {
		event := events.New(events.EventCredentialRejected, subjectID, events.CredentialRejectedPayload{Reason: kind})
		if pubErr := v.dispatcher.Publish(ctx, event); pubErr != nil {
			v.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(pubErr))
		}
	}
	return err
}
