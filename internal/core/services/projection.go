package services

import (
	"sort"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

type OverviewStatus string

const (
	StatusOK      OverviewStatus = "ok"
	StatusPartial OverviewStatus = "partial"
	StatusError   OverviewStatus = "error"
)

type SummaryCard struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

type HabitRow struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Kind           domain.HabitKind `json:"kind"`
	CurrentStreak  int              `json:"current_streak"`
	BestStreak     *int             `json:"best_streak,omitempty"`
	CompletedToday bool             `json:"completed_today"`
}

type CalendarCell struct {
	Date        string `json:"date"`
	Completions int    `json:"completions"`
	HasRelapse  bool   `json:"has_relapse"`
	Level       int    `json:"level"`
}

// OverviewView is the presentation record of one snapshot.
type OverviewView struct {
	Generation      uint64         `json:"generation"`
	Status          OverviewStatus `json:"status"`
	Warning         string         `json:"warning,omitempty"`
	Summary         []SummaryCard  `json:"summary"`
	GoodHabits      []HabitRow     `json:"good_habits"`
	AvoidanceHabits []HabitRow     `json:"avoidance_habits"`
	Calendar        []CalendarCell `json:"calendar"`
	NewBadges       []domain.Badge `json:"new_badges"`
	JoinDate        *string        `json:"join_date,omitempty"`
}

func Project(snap *domain.Snapshot) OverviewView {
	view := OverviewView{
		Summary:         []SummaryCard{},
		GoodHabits:      []HabitRow{},
		AvoidanceHabits: []HabitRow{},
		Calendar:        []CalendarCell{},
		NewBadges:       []domain.Badge{},
	}
	if snap == nil {
		view.Status = StatusError
		return view
	}

	view.Generation = snap.Generation
	view.Warning = snap.Warning
	switch {
	case snap.Failed():
		view.Status = StatusError
	case snap.Partial():
		view.Status = StatusPartial
	default:
		view.Status = StatusOK
	}

	if s := snap.Stats; s != nil {
		view.JoinDate = s.JoinDate
		view.Summary = []SummaryCard{
			{Key: "total_habits", Label: "Habits", Value: s.TotalHabits},
			{Key: "current_streak", Label: "Current streak", Value: s.CurrentStreak},
			{Key: "longest_streak", Label: "Longest streak", Value: s.LongestStreak},
			{Key: "best_good_habit_streak", Label: "Best good habit streak", Value: s.BestGoodHabitStreak},
			{Key: "best_addiction_streak", Label: "Best streak without relapse", Value: s.BestAddictionStreak},
			{Key: "active_days_streak", Label: "Active days in a row", Value: s.ActiveDaysStreak},
			{Key: "total_achievements", Label: "Achievements", Value: s.TotalAchievements},
		}
	}

	for _, h := range snap.Habits {
		row := HabitRow{
			ID:             h.ID,
			Name:           h.Name,
			Kind:           h.Kind,
			CurrentStreak:  h.CurrentStreak,
			BestStreak:     h.BestStreak,
			CompletedToday: h.CompletedToday != nil && *h.CompletedToday,
		}
		if h.Kind.IsGood() {
			view.GoodHabits = append(view.GoodHabits, row)
		} else {
			view.AvoidanceHabits = append(view.AvoidanceHabits, row)
		}
	}
	sortRows(view.GoodHabits)
	sortRows(view.AvoidanceHabits)

	for date, day := range snap.Activity {
		view.Calendar = append(view.Calendar, CalendarCell{
			Date:        date,
			Completions: day.Completions,
			HasRelapse:  day.HasRelapse,
			Level:       intensity(day.Completions),
		})
	}
	sort.Slice(view.Calendar, func(i, j int) bool {
		return view.Calendar[i].Date < view.Calendar[j].Date
	})

	if len(snap.NewBadges) > 0 {
		view.NewBadges = append(view.NewBadges, snap.NewBadges...)
	}
	return view
}

func sortRows(rows []HabitRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CurrentStreak != rows[j].CurrentStreak {
			return rows[i].CurrentStreak > rows[j].CurrentStreak
		}
		return rows[i].Name < rows[j].Name
	})
}

// intensity buckets a day's completions into calendar shades 0..4.
func intensity(completions int) int {
	switch {
	case completions <= 0:
		return 0
	case completions == 1:
		return 1
	case completions <= 3:
		return 2
	case completions <= 5:
		return 3
	default:
		return 4
	}
}
