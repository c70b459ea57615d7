package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

// Wire schemas. The backend mixes camelCase (dashboard) and snake_case
// (user stats), so every endpoint owns its own field mapping.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	ID     wireID `json:"id"`
	Email  string `json:"email"`
	Nombre string `json:"nombre"`
}

// wireID accepts both numeric and string identifiers.
type wireID string

func (w *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*w = wireID(n.String())
	return nil
}

type dashboardResponse struct {
	Habits []dashboardHabit `json:"habitsConEstadisticas"`
}

type dashboardHabit struct {
	ID               *int64 `json:"id"`
	Nombre           string `json:"nombre"`
	Tipo             string `json:"tipo"`
	RachaActual      int    `json:"rachaActual"`
	MejorRacha       *int   `json:"mejorRacha"`
	TotalCompletados *int   `json:"totalCompletados"`
	CompletadoHoy    *bool  `json:"completadoHoy"`
}

func (h dashboardHabit) toDomain() (domain.HabitStat, error) {
	if h.ID == nil {
		return domain.HabitStat{}, fmt.Errorf("dashboard habit without id")
	}
	kind, err := domain.ParseHabitKind(h.Tipo)
	if err != nil {
		return domain.HabitStat{}, fmt.Errorf("dashboard habit %d: %w", *h.ID, err)
	}
	if h.RachaActual < 0 || negative(h.MejorRacha) || negative(h.TotalCompletados) {
		return domain.HabitStat{}, fmt.Errorf("dashboard habit %d: negative counter", *h.ID)
	}
	return domain.HabitStat{
		ID:               *h.ID,
		Name:             h.Nombre,
		Kind:             kind,
		CurrentStreak:    h.RachaActual,
		BestStreak:       h.MejorRacha,
		TotalCompletions: h.TotalCompletados,
		CompletedToday:   h.CompletadoHoy,
	}, nil
}

type userStatsResponse struct {
	BestGoodHabitStreak int              `json:"best_good_habit_streak"`
	BestAddictionStreak int              `json:"best_addiction_streak"`
	TotalAchievements   int              `json:"total_achievements"`
	JoinDate            *string          `json:"join_date"`
	CurrentStreak       *int             `json:"current_streak"`
	LongestStreak       *int             `json:"longest_streak"`
	TotalHabits         *int             `json:"total_habits"`
	GoodHabitsCount     *int             `json:"good_habits_count"`
	BadHabitsCount      *int             `json:"bad_habits_count"`
	Habits              []userStatsHabit `json:"habits"`
}

type userStatsHabit struct {
	ID          *int64 `json:"id"`
	Nombre      string `json:"nombre"`
	Tipo        string `json:"tipo"`
	RachaActual int    `json:"racha_actual"`
}

func (r userStatsResponse) toDomain() (*domain.DetailedStats, error) {
	out := &domain.DetailedStats{
		BestGoodHabitStreak:  r.BestGoodHabitStreak,
		BestAddictionStreak:  r.BestAddictionStreak,
		TotalAchievements:    r.TotalAchievements,
		JoinDate:             r.JoinDate,
		CurrentStreak:        r.CurrentStreak,
		LongestStreak:        r.LongestStreak,
		TotalHabits:          r.TotalHabits,
		GoodHabitsCount:      r.GoodHabitsCount,
		AvoidanceHabitsCount: r.BadHabitsCount,
	}
	if r.Habits != nil {
		out.Habits = make([]domain.HabitStat, 0, len(r.Habits))
	}
	for _, h := range r.Habits {
		if h.ID == nil {
			return nil, fmt.Errorf("user stats habit without id")
		}
		kind, err := domain.ParseHabitKind(h.Tipo)
		if err != nil {
			return nil, fmt.Errorf("user stats habit %d: %w", *h.ID, err)
		}
		if h.RachaActual < 0 {
			return nil, fmt.Errorf("user stats habit %d: negative streak", *h.ID)
		}
		out.Habits = append(out.Habits, domain.HabitStat{
			ID:            *h.ID,
			Name:          h.Nombre,
			Kind:          kind,
			CurrentStreak: h.RachaActual,
		})
	}
	return out, nil
}

type activityDayWire struct {
	Completions int  `json:"completions"`
	HasRelapse  bool `json:"hasRelapse"`
}

func activityToDomain(raw map[string]activityDayWire) (map[string]domain.ActivityDay, error) {
	out := make(map[string]domain.ActivityDay, len(raw))
	for date, day := range raw {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return nil, fmt.Errorf("activity log: invalid date key %q", date)
		}
		if day.Completions < 0 {
			return nil, fmt.Errorf("activity log: negative completions on %s", date)
		}
		out[date] = domain.ActivityDay{Completions: day.Completions, HasRelapse: day.HasRelapse}
	}
	return out, nil
}

func negative(v *int) bool {
	return v != nil && *v < 0
}

func userPath(userID string) string {
	return "/users/" + url.PathEscape(userID) + "/stats"
}
