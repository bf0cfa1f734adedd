package auth

import (
	"errors"
	"net/http"

	apperrors "github.com/spec-kit/nvron-auth/pkg/util"
)

// Credential failure kinds. Every kind is terminal for the request that
// produced it; callers must not retry.
var (
	ErrMissingFields      = errors.New("username and password required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoCredential       = errors.New("no credential provided")
	ErrInvalidOrExpired   = errors.New("invalid or expired credential")
	ErrOriginMismatch     = errors.New("credential origin mismatch")
	ErrKeyUnavailable     = errors.New("signing key unavailable")
)

// Kind returns a stable, log-safe label for an auth failure.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrNoCredential):
		return "no_credential"
	case errors.Is(err, ErrInvalidOrExpired):
		return "invalid_or_expired"
	case errors.Is(err, ErrOriginMismatch):
		return "origin_mismatch"
	case errors.Is(err, ErrKeyUnavailable):
		return "key_unavailable"
	default:
		return "internal"
	}
}

// ToDomainError maps auth failures onto the HTTP error envelope. Messages
// are fixed strings so that no address or account detail leaks out.
func ToDomainError(err error) error {
	switch {
	case errors.Is(err, ErrMissingFields):
		return apperrors.NewDomainError("MISSING_FIELDS", "username and password required", http.StatusBadRequest, nil)
	case errors.Is(err, ErrInvalidCredentials):
		return apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid credentials", http.StatusUnauthorized, nil)
	case errors.Is(err, ErrNoCredential):
		return apperrors.NewDomainError("NO_CREDENTIAL", "no token provided", http.StatusUnauthorized, nil)
	case errors.Is(err, ErrInvalidOrExpired):
		return apperrors.NewDomainError("INVALID_TOKEN", "invalid token", http.StatusUnauthorized, nil)
	case errors.Is(err, ErrOriginMismatch):
		return apperrors.NewDomainError("ORIGIN_MISMATCH", "token not valid for this client", http.StatusForbidden, nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
