package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

var _ domain.UnlockedBadgeRepository = (*CachedUnlockedBadgeRepository)(nil)

const unlockedCacheTTL = 30 * time.Minute

// CachedUnlockedBadgeRepository puts a Redis read cache in front of another
// repository. Writes go to the wrapped repository first, then invalidate.
type CachedUnlockedBadgeRepository struct {
	next   domain.UnlockedBadgeRepository
	cache  *redis.Client
	logger *zap.Logger
}

func NewCachedUnlockedBadgeRepository(next domain.UnlockedBadgeRepository, cache *redis.Client, logger *zap.Logger) *CachedUnlockedBadgeRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedUnlockedBadgeRepository{
		next:   next,
		cache:  cache,
		logger: logger,
	}
}

func (r *CachedUnlockedBadgeRepository) cacheKey(userID string) string {
	return fmt.Sprintf("unlocked_badges_cache:%s", userID)
}

func (r *CachedUnlockedBadgeRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		r.logger.Warn("[CACHE] failed to invalidate", zap.String("user_id", userID), zap.Error(err))
	}
}

func (r *CachedUnlockedBadgeRepository) Load(ctx context.Context, userID string) (domain.UnlockedBadgeSet, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var ids []string
		if err := json.Unmarshal([]byte(val), &ids); err == nil {
			return domain.NewUnlockedBadgeSet(ids...), nil
		}

		r.logger.Warn("[CACHE] corrupted data, cleaning up key", zap.String("user_id", userID))
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		r.logger.Warn("[CACHE] redis read error", zap.Error(err))
	}

	set, err := r.next.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(set.IDs()); err == nil {
		if setErr := r.cache.Set(ctx, key, data, unlockedCacheTTL).Err(); setErr != nil {
			r.logger.Warn("[CACHE] redis set error", zap.Error(setErr))
		}
	}

	return set, nil
}

func (r *CachedUnlockedBadgeRepository) Save(ctx context.Context, userID string, ids domain.UnlockedBadgeSet) error {
	if err := r.next.Save(ctx, userID, ids); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}
