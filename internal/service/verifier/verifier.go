package verifier

import (
	"context"
	"time"

	"github.com/mkravchenko/sessiongate/internal/apperrors"
	"github.com/mkravchenko/sessiongate/internal/identity"
	"github.com/mkravchenko/sessiongate/internal/logger"
	"github.com/mkravchenko/sessiongate/internal/models"
)

// Lifetime used when the identity API omits expires_in
const defaultTokenLifetime = 3600 * time.Second

type identityClient interface {
	// Exchange raw credentials for a token pair
	Login(ctx context.Context, email string, password string) (identity.TokenResponse, error)

	// Resolve the principal behind an access token
	Me(ctx context.Context, accessToken string) (identity.Profile, error)
}

// Service verifies user credentials against the identity API and builds the
// initial token record of a session
type Service struct {
	client identityClient
	logger logger.Logger
	now    func() time.Time
}

func NewService(client identityClient, l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Service{
		client: client,
		logger: l,
		now:    time.Now,
	}
}

// Authenticate submits the credentials, resolves the principal profile and
// returns the initial token record.
// Failures of either exchange collapse into apperrors.ErrInvalidCredentials
// or apperrors.ErrProfileFetch: the caller never sees identity API details,
// so "user not found" stays indistinguishable from "wrong password".
func (s *Service) Authenticate(ctx context.Context, email string, password string) (models.TokenRecord, error) {
	var record models.TokenRecord

	tokens, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("Login rejected by identity API", "error", err)
		return record, apperrors.ErrInvalidCredentials
	}

	profile, err := s.client.Me(ctx, tokens.AccessToken)
	if err != nil {
		s.logger.Warn("Profile fetch failed after login", "error", err)
		return record, apperrors.ErrProfileFetch
	}

	name := profile.Name
	if name == "" {
		name = profile.Email
	}

	return models.TokenRecord{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    s.now().Add(tokenLifetime(tokens.ExpiresIn)),
		Principal: models.Principal{
			ID:    profile.ID,
			Name:  name,
			Email: profile.Email,
		},
		Error: models.ErrorNone,
	}, nil
}

func tokenLifetime(expiresIn int64) time.Duration {
	if expiresIn <= 0 {
		return defaultTokenLifetime
	}
	return time.Duration(expiresIn) * time.Second
}
