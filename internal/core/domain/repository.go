package domain

import (
	"context"
	"errors"
)

var (
	ErrUserIDEmpty       = errors.New("user id cannot be empty")
	ErrCredentialMissing = errors.New("credential not found")
)

type UnlockedBadgeRepository interface {
	// Load returns the unlocked ids of a user, or an empty set if none were stored.
	Load(ctx context.Context, userID string) (UnlockedBadgeSet, error)

	// Save replaces the stored set of a user. Implementations never drop ids
	// that are already persisted.
	Save(ctx context.Context, userID string, ids UnlockedBadgeSet) error
}

// CredentialStore keeps the upstream bearer token under a fixed service identifier,
// together with the id of the user it was issued to. Saving a token forgets the
// previous user id; deleting the token removes both.
type CredentialStore interface {
	GetToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
	GetUserID(ctx context.Context) (string, error)
	SaveUserID(ctx context.Context, userID string) error
}

// StatsSource is the upstream contract the aggregator depends on.
type StatsSource interface {
	Dashboard(ctx context.Context) ([]HabitStat, error)
	UserStats(ctx context.Context, userID string) (*DetailedStats, error)
	ActivityLog(ctx context.Context, year int, month int) (map[string]ActivityDay, error)
}

// Session is the result of a successful upstream login.
type Session struct {
	Token  string `json:"-"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}
