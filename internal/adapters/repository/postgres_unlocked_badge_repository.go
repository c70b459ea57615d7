package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

var _ domain.UnlockedBadgeRepository = (*PostgresUnlockedBadgeRepository)(nil)

const unlockedBadgesSchema = `
	CREATE TABLE IF NOT EXISTS unlocked_badges (
		user_id     TEXT        NOT NULL,
		badge_id    TEXT        NOT NULL,
		unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, badge_id)
	)`

// PostgresUnlockedBadgeRepository is append-only: rows are inserted, never
// updated or deleted.
type PostgresUnlockedBadgeRepository struct {
	db *sqlx.DB
}

func NewPostgresUnlockedBadgeRepository(db *sqlx.DB) *PostgresUnlockedBadgeRepository {
	return &PostgresUnlockedBadgeRepository{db: db}
}

func (r *PostgresUnlockedBadgeRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, unlockedBadgesSchema); err != nil {
		return fmt.Errorf("repository: create unlocked_badges table: %w", err)
	}
	return nil
}

func (r *PostgresUnlockedBadgeRepository) Load(ctx context.Context, userID string) (domain.UnlockedBadgeSet, error) {
	if userID == "" {
		return nil, domain.ErrUserIDEmpty
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ids := []string{}
	query := `SELECT badge_id FROM unlocked_badges WHERE user_id = $1 ORDER BY badge_id`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("repository: load unlocked badges failed: %w", err)
	}
	return domain.NewUnlockedBadgeSet(ids...), nil
}

func (r *PostgresUnlockedBadgeRepository) Save(ctx context.Context, userID string, ids domain.UnlockedBadgeSet) error {
	if userID == "" {
		return domain.ErrUserIDEmpty
	}
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO unlocked_badges (user_id, badge_id, unlocked_at)
		SELECT $1::text, badge_id, $3::timestamptz FROM unnest($2::text[]) AS badge_id
		ON CONFLICT (user_id, badge_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, pq.Array(ids.IDs()), time.Now().UTC()); err != nil {
		return fmt.Errorf("repository: save unlocked badges failed: %w", err)
	}
	return nil
}
