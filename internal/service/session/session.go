package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mkravchenko/sessiongate/internal/logger"
	"github.com/mkravchenko/sessiongate/internal/models"
)

type Verifier interface {
	// Authenticate credentials and build the initial token record
	// Has to return apperrors.ErrInvalidCredentials or apperrors.ErrProfileFetch on failure
	Authenticate(ctx context.Context, email string, password string) (models.TokenRecord, error)
}

type Refresher interface {
	// Validate the record and refresh it if needed, one attempt per call
	EnsureValid(ctx context.Context, record models.TokenRecord) models.TokenRecord
}

type Store interface {
	Save(ctx context.Context, sessionID string, record models.TokenRecord) error

	// Has to return apperrors.ErrSessionNotFound if the session is unknown
	Get(ctx context.Context, sessionID string) (models.TokenRecord, error)

	Delete(ctx context.Context, sessionID string) error
}

// Service owns the session lifecycle: login creates a record, every access
// revalidates it, logout discards it.
//
// The store centralizes records, so refresh attempts are serialized per
// principal with a singleflight group: concurrent accesses observing an
// expired token share one refresh exchange instead of racing the identity
// API, which could invalidate one of the rotated refresh tokens.
type Service struct {
	verifier  Verifier
	refresher Refresher
	store     Store
	logger    logger.Logger

	refreshGroup singleflight.Group
}

func NewService(verifier Verifier, refresher Refresher, store Store, l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Service{
		verifier:  verifier,
		refresher: refresher,
		store:     store,
		logger:    l,
	}
}

// Login authenticates the credentials and starts a new session.
// Returns the opaque session ID and the initial session view.
func (s *Service) Login(ctx context.Context, email string, password string) (string, models.SessionView, error) {
	record, err := s.verifier.Authenticate(ctx, email, password)
	if err != nil {
		return "", models.SessionView{}, err
	}

	sessionID := uuid.NewString()
	if err := s.store.Save(ctx, sessionID, record); err != nil {
		return "", models.SessionView{}, fmt.Errorf("error while saving session. Err: %w", err)
	}

	s.logger.Info("Session started", "principal_id", record.Principal.ID)
	return sessionID, Materialize(record), nil
}

// Session returns the current view of the session, refreshing the access
// token first if it expired. The view always carries the principal, even
// when the tokens are gone and the error field asks for re-authentication.
func (s *Service) Session(ctx context.Context, sessionID string) (models.SessionView, error) {
	record, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return models.SessionView{}, err
	}

	fresh, err, _ := s.refreshGroup.Do(record.Principal.ID, func() (any, error) {
		return s.refresher.EnsureValid(ctx, record), nil
	})
	if err != nil {
		// Not reachable: EnsureValid reports failures inside the record
		return models.SessionView{}, err
	}

	next := fresh.(models.TokenRecord)
	if err := s.store.Save(ctx, sessionID, next); err != nil {
		return models.SessionView{}, fmt.Errorf("error while saving session. Err: %w", err)
	}

	return Materialize(next), nil
}

// Logout discards the session record
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
