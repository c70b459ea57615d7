package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

var _ domain.UnlockedBadgeRepository = (*RedisUnlockedBadgeRepository)(nil)

// RedisUnlockedBadgeRepository stores each user's ids in a Redis set, so
// writes are naturally additive.
type RedisUnlockedBadgeRepository struct {
	rdb *redis.Client
}

func NewRedisUnlockedBadgeRepository(rdb *redis.Client) *RedisUnlockedBadgeRepository {
	return &RedisUnlockedBadgeRepository{rdb: rdb}
}

func (r *RedisUnlockedBadgeRepository) key(userID string) string {
	return fmt.Sprintf("unlocked_badges:%s", userID)
}

func (r *RedisUnlockedBadgeRepository) Load(ctx context.Context, userID string) (domain.UnlockedBadgeSet, error) {
	if userID == "" {
		return nil, domain.ErrUserIDEmpty
	}
	ids, err := r.rdb.SMembers(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("repository: redis load unlocked badges: %w", err)
	}
	return domain.NewUnlockedBadgeSet(ids...), nil
}

func (r *RedisUnlockedBadgeRepository) Save(ctx context.Context, userID string, ids domain.UnlockedBadgeSet) error {
	if userID == "" {
		return domain.ErrUserIDEmpty
	}
	if len(ids) == 0 {
		return nil
	}

	members := make([]interface{}, 0, len(ids))
	for _, id := range ids.IDs() {
		members = append(members, id)
	}
	if err := r.rdb.SAdd(ctx, r.key(userID), members...).Err(); err != nil {
		return fmt.Errorf("repository: redis save unlocked badges: %w", err)
	}
	return nil
}
