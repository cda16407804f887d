package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/observability"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// CredentialLookup resolves a subject's stored secret.
type CredentialLookup interface {
	Lookup(ctx context.Context, subject string) (secret string, found bool, err error)
}

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(subject string, now time.Time) (domain.Token, error)
}

// AuthService coordinates the login flow.
type AuthService struct {
	credentials CredentialLookup
	verifier    auth.Verifier
	issuer      TokenIssuer
	now         func() time.Time
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Credentials CredentialLookup
	Verifier    auth.Verifier
	Issuer      TokenIssuer
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		credentials: deps.Credentials,
		verifier:    deps.Verifier,
		issuer:      deps.Issuer,
		now:         deps.Clock,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Login verifies the credential pair and returns a signed token.
//
// Unknown usernames and wrong passwords produce the same error value. Store
// and dispatch faults come back from the lookup as domain errors; signing
// faults are wrapped here.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Token, error) {
	stored, found, err := s.credentials.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrDispatch) {
			s.metrics.RecordLogin(observability.LoginDispatchError)
		} else {
			s.metrics.RecordLogin(observability.LoginStoreError)
		}
		return domain.Token{}, apperrors.MapError(err)
	}

	if !found || !s.verifier.Verify(password, stored) {
		s.metrics.RecordLogin(observability.LoginInvalidCredentials)
		s.logger.Debug("login rejected")
		return domain.Token{}, apperrors.NewInvalidCredentials()
	}

	token, err := s.issuer.Issue(username, s.now())
	if err != nil {
		s.metrics.RecordLogin(observability.LoginSigningError)
		return domain.Token{}, apperrors.NewSigningError(err)
	}

	s.metrics.RecordLogin(observability.LoginSuccess)
	s.logger.Debug("login succeeded", zap.String("subject", username), zap.String("token_id", token.ID))
	return token, nil
}
