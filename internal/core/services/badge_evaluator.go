package services

import "github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"

type badgeRule func(stats *domain.AggregateStats, habits []domain.HabitStat) bool

func streakAtLeast(n int) badgeRule {
	return func(stats *domain.AggregateStats, _ []domain.HabitStat) bool {
		return stats != nil && stats.CurrentStreak >= n
	}
}

// Rules only fire for badges the catalog actually defines.
var badgeRules = map[string]badgeRule{
	domain.BadgeFirstHabitCompleted: anyCompletion,
	domain.BadgeThreeDayStreak:      streakAtLeast(3),
	domain.BadgeSevenDayStreak:      streakAtLeast(7),
	domain.BadgeThirtyDayStreak:     streakAtLeast(30),
	domain.BadgeFiveHabits: func(stats *domain.AggregateStats, _ []domain.HabitStat) bool {
		return stats != nil && stats.TotalHabits >= 5
	},
}

// anyCompletion needs dashboard data; without TotalCompletions the badge is
// simply not earned yet.
func anyCompletion(_ *domain.AggregateStats, habits []domain.HabitStat) bool {
	for _, h := range habits {
		if h.TotalCompletions != nil && *h.TotalCompletions > 0 {
			return true
		}
	}
	return false
}

// EvaluateBadges returns, in catalog order, the badges that qualify and are
// not in unlocked. It reads its inputs only.
func EvaluateBadges(stats *domain.AggregateStats, habits []domain.HabitStat, unlocked domain.UnlockedBadgeSet, catalog *domain.BadgeCatalog) []domain.Badge {
	if catalog == nil {
		return nil
	}

	var earned []domain.Badge
	for _, badge := range catalog.All() {
		if unlocked.Has(badge.ID) {
			continue
		}
		rule, ok := badgeRules[badge.ID]
		if !ok {
			continue
		}
		if rule(stats, habits) {
			earned = append(earned, badge)
		}
	}
	return earned
}
