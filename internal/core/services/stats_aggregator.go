package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

type FetchStrategy string

const (
	FetchSequential FetchStrategy = "sequential"
	FetchConcurrent FetchStrategy = "concurrent"
)

// sourceOrder is the fixed fetch order, and the order failures are reported in.
var sourceOrder = []domain.Source{domain.SourceDashboard, domain.SourceUserStats, domain.SourceActivity}

type StatsAggregator struct {
	source   domain.StatsSource
	strategy FetchStrategy
	logger   *zap.Logger

	mu      sync.Mutex
	seq     uint64
	started map[string]uint64
	latest  map[string]*domain.Snapshot
}

func NewStatsAggregator(source domain.StatsSource, strategy FetchStrategy, logger *zap.Logger) *StatsAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strategy != FetchConcurrent {
		strategy = FetchSequential
	}
	return &StatsAggregator{
		source:   source,
		strategy: strategy,
		logger:   logger,
		started:  make(map[string]uint64),
		latest:   make(map[string]*domain.Snapshot),
	}
}

type fetchResult struct {
	dashboard    []domain.HabitStat
	dashboardErr error
	detailed     *domain.DetailedStats
	detailedErr  error
	activity     map[string]domain.ActivityDay
	activityErr  error
}

// Load runs one aggregation cycle. It never fails: errors end up in the
// returned snapshot. A snapshot whose cycle was overtaken by a newer one for
// the same user comes back with Stale set and is not published to Latest.
func (a *StatsAggregator) Load(ctx context.Context, userID string, now time.Time) *domain.Snapshot {
	gen := a.begin(userID)

	var res fetchResult
	if a.strategy == FetchConcurrent {
		res = a.fetchConcurrent(ctx, userID, now)
	} else {
		res = a.fetchSequential(ctx, userID, now)
	}

	snap := buildSnapshot(res, now)
	snap.Generation = gen
	snap.UserID = userID

	a.publish(snap)

	a.logger.Info("[AGGREGATOR] cycle finished",
		zap.String("user_id", userID),
		zap.Uint64("generation", gen),
		zap.String("strategy", string(a.strategy)),
		zap.Int("failed_sources", len(snap.Failures)),
		zap.Bool("stale", snap.Stale),
	)
	return snap
}

// Latest returns the newest published snapshot of a user, or nil.
func (a *StatsAggregator) Latest(userID string) *domain.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest[userID]
}

func (a *StatsAggregator) begin(userID string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	a.started[userID] = a.seq
	return a.seq
}

func (a *StatsAggregator) publish(snap *domain.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started[snap.UserID] != snap.Generation {
		snap.Stale = true
		return
	}
	a.latest[snap.UserID] = snap
}

func (a *StatsAggregator) fetchSequential(ctx context.Context, userID string, now time.Time) fetchResult {
	var res fetchResult
	res.dashboard, res.dashboardErr = a.source.Dashboard(ctx)
	res.detailed, res.detailedErr = a.source.UserStats(ctx, userID)
	res.activity, res.activityErr = a.source.ActivityLog(ctx, now.Year(), int(now.Month()))
	return res
}

// fetchConcurrent issues the three calls at once. Goroutines never return an
// error so one failing source does not cancel the others.
func (a *StatsAggregator) fetchConcurrent(ctx context.Context, userID string, now time.Time) fetchResult {
	var res fetchResult
	var g errgroup.Group

	g.Go(func() error {
		res.dashboard, res.dashboardErr = a.source.Dashboard(ctx)
		return nil
	})
	g.Go(func() error {
		res.detailed, res.detailedErr = a.source.UserStats(ctx, userID)
		return nil
	})
	g.Go(func() error {
		res.activity, res.activityErr = a.source.ActivityLog(ctx, now.Year(), int(now.Month()))
		return nil
	})

	_ = g.Wait()
	return res
}

func buildSnapshot(res fetchResult, now time.Time) *domain.Snapshot {
	snap := &domain.Snapshot{FetchedAt: now}

	failures := map[domain.Source]error{}
	if res.dashboardErr != nil {
		failures[domain.SourceDashboard] = res.dashboardErr
		res.dashboard = nil
	}
	if res.detailedErr != nil {
		failures[domain.SourceUserStats] = res.detailedErr
		res.detailed = nil
	}
	if res.activityErr != nil {
		failures[domain.SourceActivity] = res.activityErr
		res.activity = nil
	}

	if len(failures) == len(sourceOrder) {
		snap.Failures = failures
		snap.Err = fmt.Errorf("all sources failed: %s: %w", domain.SourceDashboard, res.dashboardErr)
		snap.Warning = snap.Err.Error()
		return snap
	}

	snap.Habits = MergeHabits(res.dashboard, res.detailed)
	snap.Stats = ComputeAggregate(snap.Habits, res.detailed, res.activity, now)
	snap.Activity = res.activity

	if len(failures) > 0 {
		snap.Failures = failures
		snap.Warning = describeFailures(failures)
	}
	return snap
}

func describeFailures(failures map[domain.Source]error) string {
	parts := make([]string, 0, len(failures))
	for _, src := range sourceOrder {
		if err, ok := failures[src]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", src, err))
		}
	}
	return strings.Join(parts, "; ")
}

// MergeHabits reconciles both habit lists by id. The dashboard list is the
// base; the user-stats current streak wins for ids present in both. Without
// a dashboard list the user-stats list is used as is.
func MergeHabits(dashboard []domain.HabitStat, detailed *domain.DetailedStats) []domain.HabitStat {
	var detailedHabits []domain.HabitStat
	if detailed != nil {
		detailedHabits = detailed.Habits
	}

	if dashboard == nil {
		return dedupe(detailedHabits)
	}

	streaks := make(map[int64]int, len(detailedHabits))
	for _, h := range detailedHabits {
		if _, seen := streaks[h.ID]; !seen {
			streaks[h.ID] = h.CurrentStreak
		}
	}

	merged := dedupe(dashboard)
	for i := range merged {
		if streak, ok := streaks[merged[i].ID]; ok {
			merged[i].CurrentStreak = streak
		}
	}
	return merged
}

// dedupe copies habits keeping the first record of each id.
func dedupe(habits []domain.HabitStat) []domain.HabitStat {
	if habits == nil {
		return nil
	}
	seen := make(map[int64]struct{}, len(habits))
	out := make([]domain.HabitStat, 0, len(habits))
	for _, h := range habits {
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		out = append(out, h)
	}
	return out
}

// ComputeAggregate derives the scalar stats. User-stats values are
// authoritative whenever that source reported them.
func ComputeAggregate(habits []domain.HabitStat, detailed *domain.DetailedStats, activity map[string]domain.ActivityDay, now time.Time) *domain.AggregateStats {
	if habits == nil && detailed == nil {
		return nil
	}

	stats := &domain.AggregateStats{TotalHabits: len(habits)}

	maxCurrent, maxBest, anyBest := 0, 0, false
	for _, h := range habits {
		if h.Kind.IsGood() {
			stats.GoodHabitsCount++
		} else {
			stats.AvoidanceHabitsCount++
		}
		if h.CurrentStreak > maxCurrent {
			maxCurrent = h.CurrentStreak
		}
		if h.BestStreak != nil {
			anyBest = true
			if *h.BestStreak > maxBest {
				maxBest = *h.BestStreak
			}
		}
	}

	stats.CurrentStreak = maxCurrent
	stats.LongestStreak = maxCurrent
	if anyBest {
		stats.LongestStreak = maxBest
	}

	if detailed != nil {
		stats.BestGoodHabitStreak = detailed.BestGoodHabitStreak
		stats.BestAddictionStreak = detailed.BestAddictionStreak
		stats.TotalAchievements = detailed.TotalAchievements
		stats.JoinDate = detailed.JoinDate

		overrideInt(&stats.CurrentStreak, detailed.CurrentStreak)
		overrideInt(&stats.LongestStreak, detailed.LongestStreak)
		overrideInt(&stats.TotalHabits, detailed.TotalHabits)
		overrideInt(&stats.GoodHabitsCount, detailed.GoodHabitsCount)
		overrideInt(&stats.AvoidanceHabitsCount, detailed.AvoidanceHabitsCount)
	}

	stats.ActiveDaysStreak = ActiveDaysStreak(activity, now)
	return stats
}

func overrideInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// ActiveDaysStreak counts consecutive days with at least one completion and
// no relapse, ending today, or yesterday when today has nothing logged yet.
// Days after today are ignored.
func ActiveDaysStreak(activity map[string]domain.ActivityDay, now time.Time) int {
	if len(activity) == 0 {
		return 0
	}

	today, _ := time.Parse(domain.DateLayout, now.Format(domain.DateLayout))

	var active []time.Time
	for key, day := range activity {
		if day.Completions <= 0 || day.HasRelapse {
			continue
		}
		t, err := time.Parse(domain.DateLayout, key)
		if err != nil || t.After(today) {
			continue
		}
		active = append(active, t)
	}
	if len(active) == 0 {
		return 0
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].After(active[j])
	})

	if today.Sub(active[0]) > 24*time.Hour {
		return 0
	}

	streak := 1
	for i := 0; i < len(active)-1; i++ {
		if active[i].Sub(active[i+1]) == 24*time.Hour {
			streak++
		} else {
			break
		}
	}
	return streak
}
