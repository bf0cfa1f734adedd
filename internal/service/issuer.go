package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/domain"
	"github.com/spec-kit/nvron-auth/internal/events"
	"github.com/spec-kit/nvron-auth/internal/observability"
	"github.com/spec-kit/nvron-auth/internal/repository"
)

// UserStore looks up principals by login name.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// IssuerDependencies encapsulates collaborators for the credential issuer.
type IssuerDependencies struct {
	Users      UserStore
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// BcryptCost is the cost stored password hashes use.
	BcryptCost int
}

// CredentialIssuer authenticates a username/password pair and mints a
// credential bound to the caller's network origin.
type CredentialIssuer struct {
	users      UserStore
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	decoyHash  string
}

// IssuedCredential is the signed token plus its decoded metadata.
type IssuedCredential struct {
	Token      string
	Credential domain.Credential
}

// NewCredentialIssuer builds the issuer and its decoy hash.
func NewCredentialIssuer(deps IssuerDependencies) (*CredentialIssuer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	decoy, err := auth.NewDecoyHash(deps.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("build decoy hash: %w", err)
	}
	return &CredentialIssuer{
		users:      deps.Users,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		decoyHash:  decoy,
	}, nil
}

// Issue validates the login and signs a credential. Unknown users and wrong
// passwords both return auth.ErrInvalidCredentials.
func (s *CredentialIssuer) Issue(ctx context.Context, username, password, presentedAddress string) (*IssuedCredential, error) {
	if username == "" || password == "" {
		s.metrics.RecordAuthOutcome("issue", auth.Kind(auth.ErrMissingFields))
		return nil, auth.ErrMissingFields
	}

	user, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		auth.BurnPasswordCheck(s.decoyHash, password)
		return nil, s.rejectLogin()
	case err != nil:
		s.metrics.RecordAuthOutcome("issue", "store_error")
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.rejectLogin()
	}

	token, claims, err := s.tokens.Sign(user.ID, user.Username, presentedAddress)
	if err != nil {
		return nil, fmt.Errorf("sign credential: %w", err)
	}

	issued := &IssuedCredential{
		Token: token,
		Credential: domain.Credential{
			ID:           claims.ID,
			SubjectID:    claims.SubjectID,
			SubjectName:  claims.SubjectName,
			BoundAddress: claims.BoundAddress,
			IssuedAt:     claims.IssuedAtTime(),
			ExpiresAt:    claims.ExpiresAtTime(),
		},
	}

	s.metrics.RecordAuthOutcome("issue", auth.Kind(nil))
	s.logger.Info("credential issued",
		zap.String("subject_id", user.ID),
		zap.String("credential_id", claims.ID),
		zap.String("bound_address", presentedAddress))
	s.publish(ctx, events.New(events.EventCredentialIssued, user.ID, events.CredentialIssuedPayload{
		CredentialID: claims.ID,
		SubjectName:  claims.SubjectName,
		BoundAddress: claims.BoundAddress,
		ExpiresAt:    issued.Credential.ExpiresAt,
	}))
	return issued, nil
}

func (s *CredentialIssuer) rejectLogin() error {
	s.metrics.RecordAuthOutcome("issue", auth.Kind(auth.ErrInvalidCredentials))
	s.logger.Info("login rejected")
	return auth.ErrInvalidCredentials
}

func (s *CredentialIssuer) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
