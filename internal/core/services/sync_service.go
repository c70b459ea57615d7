package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

// SyncService runs a full cycle for the logged in user: aggregate, then
// award badges.
type SyncService struct {
	aggregator *StatsAggregator
	badges     *BadgeService
	sessions   *SessionService
	logger     *zap.Logger
	now        func() time.Time
}

func NewSyncService(aggregator *StatsAggregator, badges *BadgeService, sessions *SessionService, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		aggregator: aggregator,
		badges:     badges,
		sessions:   sessions,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh only fails when no user is logged in. Source failures travel in
// the snapshot.
func (s *SyncService) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	userID, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.RefreshUser(ctx, userID), nil
}

func (s *SyncService) RefreshUser(ctx context.Context, userID string) *domain.Snapshot {
	snap := s.aggregator.Load(ctx, userID, s.now())
	if snap.Failed() || snap.Stale {
		return snap
	}

	earned, err := s.badges.Award(ctx, userID, snap)
	if err != nil {
		s.logger.Warn("[SYNC] badge evaluation skipped", zap.String("user_id", userID), zap.Error(err))
		return snap
	}
	if len(earned) == 0 {
		return snap
	}
	return snap.WithBadges(earned)
}

func (s *SyncService) Latest(ctx context.Context) (*domain.Snapshot, error) {
	userID, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.LatestUser(userID), nil
}

// LatestUser returns the newest published snapshot, or nil before the first
// successful cycle.
func (s *SyncService) LatestUser(userID string) *domain.Snapshot {
	return s.aggregator.Latest(userID)
}

func (s *SyncService) UnlockedBadges(ctx context.Context) ([]domain.Badge, error) {
	userID, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.UnlockedBadgesUser(ctx, userID)
}

func (s *SyncService) UnlockedBadgesUser(ctx context.Context, userID string) ([]domain.Badge, error) {
	return s.badges.Unlocked(ctx, userID)
}

func (s *SyncService) Catalog() *domain.BadgeCatalog {
	return s.badges.Catalog()
}

func (s *SyncService) Sessions() *SessionService {
	return s.sessions
}
