package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

type MockStatsSource struct {
	mock.Mock
}

func (m *MockStatsSource) Dashboard(ctx context.Context) ([]domain.HabitStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HabitStat), args.Error(1)
}

func (m *MockStatsSource) UserStats(ctx context.Context, userID string) (*domain.DetailedStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DetailedStats), args.Error(1)
}

func (m *MockStatsSource) ActivityLog(ctx context.Context, year int, month int) (map[string]domain.ActivityDay, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ActivityDay), args.Error(1)
}

type MockBadgeRepo struct {
	mock.Mock
}

func (m *MockBadgeRepo) Load(ctx context.Context, userID string) (domain.UnlockedBadgeSet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.UnlockedBadgeSet), args.Error(1)
}

func (m *MockBadgeRepo) Save(ctx context.Context, userID string, ids domain.UnlockedBadgeSet) error {
	return m.Called(ctx, userID, ids).Error(0)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// memoryBadgeRepo keeps the union of every saved set, like the real stores.
type memoryBadgeRepo struct {
	mu    sync.Mutex
	sets  map[string]domain.UnlockedBadgeSet
	saves int
}

func newMemoryBadgeRepo() *memoryBadgeRepo {
	return &memoryBadgeRepo{sets: make(map[string]domain.UnlockedBadgeSet)}
}

func (r *memoryBadgeRepo) Load(ctx context.Context, userID string) (domain.UnlockedBadgeSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.NewUnlockedBadgeSet().Union(r.sets[userID]), nil
}

func (r *memoryBadgeRepo) Save(ctx context.Context, userID string, ids domain.UnlockedBadgeSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.sets[userID] = domain.NewUnlockedBadgeSet().Union(r.sets[userID]).Union(ids)
	return nil
}

type memoryCreds struct {
	mu     sync.Mutex
	token  string
	userID string
}

func (c *memoryCreds) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return "", domain.ErrCredentialMissing
	}
	return c.token, nil
}

func (c *memoryCreds) SaveToken(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.userID = ""
	return nil
}

func (c *memoryCreds) GetUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == "" {
		return "", domain.ErrCredentialMissing
	}
	return c.userID, nil
}

func (c *memoryCreds) SaveUserID(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return domain.ErrCredentialMissing
	}
	c.userID = userID
	return nil
}

func (c *memoryCreds) DeleteToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.userID = ""
	return nil
}

func testCatalog() *domain.BadgeCatalog {
	c, err := domain.NewBadgeCatalog([]domain.Badge{
		{ID: domain.BadgeFirstHabitCompleted, Name: "First step"},
		{ID: domain.BadgeThreeDayStreak, Name: "Three in a row"},
		{ID: domain.BadgeSevenDayStreak, Name: "One week"},
	})
	if err != nil {
		panic(err)
	}
	return c
}
