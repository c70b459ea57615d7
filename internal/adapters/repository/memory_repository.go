package repository

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

var _ domain.UnlockedBadgeRepository = (*InMemoryUnlockedBadgeRepository)(nil)

type InMemoryUnlockedBadgeRepository struct {
	store map[string]domain.UnlockedBadgeSet

	mu sync.RWMutex
}

func NewInMemoryUnlockedBadgeRepository() *InMemoryUnlockedBadgeRepository {
	return &InMemoryUnlockedBadgeRepository{
		store: make(map[string]domain.UnlockedBadgeSet),
	}
}

func (r *InMemoryUnlockedBadgeRepository) Load(ctx context.Context, userID string) (domain.UnlockedBadgeSet, error) {
	if userID == "" {
		return nil, domain.ErrUserIDEmpty
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.NewUnlockedBadgeSet().Union(r.store[userID]), nil
}

func (r *InMemoryUnlockedBadgeRepository) Save(ctx context.Context, userID string, ids domain.UnlockedBadgeSet) error {
	if userID == "" {
		return domain.ErrUserIDEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[userID] = ids.Union(r.store[userID])
	return nil
}
