package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

// BadgeService evaluates and persists badge unlocks. Read-modify-write of a
// user's set is serialized per user id.
type BadgeService struct {
	repo    domain.UnlockedBadgeRepository
	catalog *domain.BadgeCatalog
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBadgeService(repo domain.UnlockedBadgeRepository, catalog *domain.BadgeCatalog, logger *zap.Logger) *BadgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BadgeService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *BadgeService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Award returns the badges newly earned by the snapshot and records them.
// Storage failures are logged, never returned: the badges may be offered
// again on the next cycle.
func (s *BadgeService) Award(ctx context.Context, userID string, snap *domain.Snapshot) ([]domain.Badge, error) {
	if userID == "" {
		return nil, domain.ErrUserIDEmpty
	}
	if snap == nil || snap.Failed() || snap.Stale {
		return nil, nil
	}

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	unlocked, err := s.repo.Load(ctx, userID)
	if err != nil {
		s.logger.Warn("[BADGES] failed to load unlocked set, evaluating against empty set",
			zap.String("user_id", userID), zap.Error(err))
		unlocked = domain.NewUnlockedBadgeSet()
	}

	earned := EvaluateBadges(snap.Stats, snap.Habits, unlocked, s.catalog)
	if len(earned) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(earned))
	for _, b := range earned {
		ids = append(ids, b.ID)
	}

	if err := s.repo.Save(ctx, userID, unlocked.Union(domain.NewUnlockedBadgeSet(ids...))); err != nil {
		s.logger.Warn("[BADGES] failed to persist unlocked badges",
			zap.String("user_id", userID), zap.Strings("badges", ids), zap.Error(err))
	} else {
		s.logger.Info("[BADGES] unlocked", zap.String("user_id", userID), zap.Strings("badges", ids))
	}

	return earned, nil
}

// Unlocked lists the catalog entries a user already holds, in catalog order.
func (s *BadgeService) Unlocked(ctx context.Context, userID string) ([]domain.Badge, error) {
	if userID == "" {
		return nil, domain.ErrUserIDEmpty
	}
	set, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges := []domain.Badge{}
	for _, b := range s.catalog.All() {
		if set.Has(b.ID) {
			badges = append(badges, b)
		}
	}
	return badges, nil
}

func (s *BadgeService) Catalog() *domain.BadgeCatalog {
	return s.catalog
}
