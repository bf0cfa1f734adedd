package auth

import (
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CredentialTTL is the fixed lifetime of every issued credential. iat is
// truncated to whole seconds at signing, so exp is exactly iat + CredentialTTL
// and a credential may expire up to a second before now + CredentialTTL.
const CredentialTTL = time.Hour

// TokenManager signs and validates credentials with a process-wide HS256
// key. It is immutable after construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for iat/exp and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// WithIssuer sets the iss claim and requires it on parse.
func WithIssuer(issuer string) TokenOption {
	return func(tm *TokenManager) {
		tm.issuer = strings.TrimSpace(issuer)
	}
}

// NewTokenManager builds a manager around secret. An empty secret yields
// ErrKeyUnavailable.
func NewTokenManager(secret string, opts ...TokenOption) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrKeyUnavailable
	}
	tm := &TokenManager{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Claims describes the credential payload.
type Claims struct {
	SubjectID    string `json:"sub_id"`
	SubjectName  string `json:"sub_name"`
	BoundAddress string `json:"ip"`
	jwt.RegisteredClaims
}

// IssuedAtTime returns iat or the zero time.
func (c *Claims) IssuedAtTime() time.Time {
	if c == nil || c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns exp or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Sign mints a credential bound to boundAddress.
func (tm *TokenManager) Sign(subjectID, subjectName, boundAddress string) (string, *Claims, error) {
	issuedAt := tm.now().Truncate(time.Second)
	claims := &Claims{
		SubjectID:    subjectID,
		SubjectName:  subjectName,
		BoundAddress: boundAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tm.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(CredentialTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, err
	}
	return tokenString, claims, nil
}

// Parse validates signature and expiry and returns the claims. Every
// failure wraps ErrInvalidOrExpired.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	}
	if tm.issuer != "" {
		options = append(options, jwt.WithIssuer(tm.issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrExpired, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidOrExpired
	}
	return claims, nil
}
