package memory

import (
	"context"
	"sync"

	"github.com/mkravchenko/sessiongate/internal/apperrors"
	"github.com/mkravchenko/sessiongate/internal/models"
)

// Store keeps token records in process memory keyed by session ID.
// Records never outlive the process and are removed on logout, there is no
// cross-session cache.
type Store struct {
	mu      sync.RWMutex
	records map[string]models.TokenRecord
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]models.TokenRecord),
	}
}

// Save stores the record under the session ID, replacing any previous one
func (s *Store) Save(ctx context.Context, sessionID string, record models.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[sessionID] = record
	return nil
}

// Get returns the record of the session
// Has to return apperrors.ErrSessionNotFound if the session is unknown
func (s *Store) Get(ctx context.Context, sessionID string) (models.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[sessionID]
	if !ok {
		return models.TokenRecord{}, apperrors.ErrSessionNotFound
	}

	return record, nil
}

// Delete forgets the session. Deleting an unknown session is not an error
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, sessionID)
	return nil
}
