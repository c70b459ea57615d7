package credentials

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

var _ domain.CredentialStore = (*InMemoryStore)(nil)

type InMemoryStore struct {
	mu     sync.RWMutex
	token  string
	userID string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) GetToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", domain.ErrCredentialMissing
	}
	return s.token, nil
}

func (s *InMemoryStore) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = ""
	return nil
}

func (s *InMemoryStore) SaveUserID(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return domain.ErrCredentialMissing
	}
	s.userID = userID
	return nil
}

func (s *InMemoryStore) GetUserID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == "" {
		return "", domain.ErrCredentialMissing
	}
	return s.userID, nil
}

func (s *InMemoryStore) DeleteToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.userID = ""
	return nil
}
