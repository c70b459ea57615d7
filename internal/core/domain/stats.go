package domain

import "time"

const DateLayout = "2006-01-02"

type Source string

const (
	SourceDashboard Source = "dashboard"
	SourceUserStats Source = "user-stats"
	SourceActivity  Source = "activity-log"
)

// AggregateStats is rebuilt from scratch on every aggregation cycle.
type AggregateStats struct {
	TotalHabits          int     `json:"total_habits"`
	GoodHabitsCount      int     `json:"good_habits_count"`
	AvoidanceHabitsCount int     `json:"avoidance_habits_count"`
	CurrentStreak        int     `json:"current_streak"`
	LongestStreak        int     `json:"longest_streak"`
	BestGoodHabitStreak  int     `json:"best_good_habit_streak"`
	BestAddictionStreak  int     `json:"best_addiction_streak"`
	TotalAchievements    int     `json:"total_achievements"`
	ActiveDaysStreak     int     `json:"active_days_streak"`
	JoinDate             *string `json:"join_date,omitempty"`
}

type ActivityDay struct {
	Completions int  `json:"completions"`
	HasRelapse  bool `json:"has_relapse"`
}

// DetailedStats is what the user-stats endpoint reports. Habits only carry
// id, name, kind and current streak.
type DetailedStats struct {
	BestGoodHabitStreak  int
	BestAddictionStreak  int
	TotalAchievements    int
	JoinDate             *string
	CurrentStreak        *int
	LongestStreak        *int
	TotalHabits          *int
	GoodHabitsCount      *int
	AvoidanceHabitsCount *int
	Habits               []HabitStat
}

// Snapshot is the immutable result of one aggregation cycle. Nil Stats and
// Habits mean no source could provide them.
type Snapshot struct {
	Generation uint64                 `json:"generation"`
	UserID     string                 `json:"user_id"`
	FetchedAt  time.Time              `json:"fetched_at"`
	Stats      *AggregateStats        `json:"stats,omitempty"`
	Habits     []HabitStat            `json:"habits,omitempty"`
	Activity   map[string]ActivityDay `json:"activity,omitempty"`
	Failures   map[Source]error       `json:"-"`
	Warning    string                 `json:"warning,omitempty"`
	Err        error                  `json:"-"`
	Stale      bool                   `json:"stale,omitempty"`
	NewBadges  []Badge                `json:"new_badges,omitempty"`
}

func (s *Snapshot) Failed() bool {
	return s.Err != nil
}

func (s *Snapshot) Partial() bool {
	return s.Err == nil && len(s.Failures) > 0
}

// WithBadges returns a copy of the snapshot carrying the newly unlocked badges.
func (s Snapshot) WithBadges(badges []Badge) *Snapshot {
	s.NewBadges = badges
	return &s
}
