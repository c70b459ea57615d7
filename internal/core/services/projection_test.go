package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

func TestProject(t *testing.T) {
	t.Run("Full snapshot", func(t *testing.T) {
		snap := &domain.Snapshot{
			Generation: 4,
			Stats:      &domain.AggregateStats{TotalHabits: 3, CurrentStreak: 5, JoinDate: ptr("2024-01-05")},
			Habits: []domain.HabitStat{
				{ID: 1, Name: "Read", Kind: domain.HabitKindBoolean, CurrentStreak: 2, CompletedToday: ptr(true)},
				{ID: 3, Name: "Gym", Kind: domain.HabitKindNumeric, CurrentStreak: 5},
				{ID: 4, Name: "Art", Kind: domain.HabitKindNumeric, CurrentStreak: 2},
				{ID: 2, Name: "Smoke", Kind: domain.HabitKindAvoidance, CurrentStreak: 9},
			},
			Activity: map[string]domain.ActivityDay{
				"2025-03-02": {Completions: 7},
				"2025-03-01": {Completions: 1, HasRelapse: true},
			},
			NewBadges: []domain.Badge{{ID: domain.BadgeThreeDayStreak}},
		}

		view := services.Project(snap)

		assert.Equal(t, services.StatusOK, view.Status)
		assert.Equal(t, uint64(4), view.Generation)
		require.Len(t, view.GoodHabits, 3)
		assert.Equal(t, "Gym", view.GoodHabits[0].Name)
		assert.Equal(t, "Art", view.GoodHabits[1].Name, "ties sorted by name")
		assert.True(t, view.GoodHabits[2].CompletedToday)
		require.Len(t, view.AvoidanceHabits, 1)

		require.Len(t, view.Calendar, 2)
		assert.Equal(t, "2025-03-01", view.Calendar[0].Date)
		assert.Equal(t, 1, view.Calendar[0].Level)
		assert.Equal(t, 4, view.Calendar[1].Level)

		assert.NotEmpty(t, view.Summary)
		assert.Equal(t, "2024-01-05", *view.JoinDate)
		assert.Len(t, view.NewBadges, 1)
	})

	t.Run("Partial and failed states", func(t *testing.T) {
		partial := &domain.Snapshot{
			Stats:    &domain.AggregateStats{},
			Failures: map[domain.Source]error{domain.SourceActivity: errors.New("down")},
			Warning:  "activity-log: down",
		}
		view := services.Project(partial)
		assert.Equal(t, services.StatusPartial, view.Status)
		assert.Equal(t, "activity-log: down", view.Warning)

		failed := &domain.Snapshot{Err: errors.New("all down"), Warning: "all down"}
		view = services.Project(failed)
		assert.Equal(t, services.StatusError, view.Status)
		assert.Empty(t, view.Summary)
		assert.NotNil(t, view.GoodHabits)

		assert.Equal(t, services.StatusError, services.Project(nil).Status)
	})
}
