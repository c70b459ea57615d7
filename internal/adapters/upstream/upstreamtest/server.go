// Package upstreamtest runs an in-process stand-in for the Kanso backend.
package upstreamtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Email    = "ada@example.com"
	Password = "correct-horse"
	UserID   = "42"
)

const (
	PathLogin     = "/api/auth/token"
	PathDashboard = "/api/dashboard"
	PathUserStats = "/api/users/" + UserID + "/stats"
	PathActivity  = "/api/activity-log"
)

// DashboardJSON has one good habit and one avoidance habit. Together with
// UserStatsJSON (streak 6 for the good habit) it unlocks
// first_habit_completed and three_day_streak.
const DashboardJSON = `{"habitsConEstadisticas": [
	{"id": 1, "nombre": "Read", "tipo": "si_no", "rachaActual": 5, "mejorRacha": 9, "totalCompletados": 30, "completadoHoy": true},
	{"id": 2, "nombre": "Smoke", "tipo": "mal_habito", "rachaActual": 2}
]}`

const UserStatsJSON = `{
	"best_good_habit_streak": 9,
	"best_addiction_streak": 4,
	"total_achievements": 1,
	"join_date": "2026-01-02",
	"total_habits": 2,
	"habits": [{"id": 1, "nombre": "Read", "tipo": "si_no", "racha_actual": 6}]
}`

const ActivityJSON = `{"2026-10-01": {"completions": 2, "hasRelapse": false}, "2026-10-02": {"completions": 0, "hasRelapse": true}}`

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	failing map[string]int
	hits    map[string]int
}

func NewServer() *Server {
	s := &Server{failing: map[string]int{}, hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Fail makes path answer with status until cleared with status 0.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failing, path)
		return
	}
	s.failing[path] = status
}

func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Token is a bearer token for UserID valid for an hour. The signature is
// never checked by the gateway.
func Token() string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": UserID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte("upstream-secret"))
	return signed
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, failing := s.failing[r.URL.Path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message": "upstream unavailable"}`))
		return
	}

	if r.URL.Path == PathLogin {
		s.login(w, r)
		return
	}

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "missing token"}`))
		return
	}

	switch r.URL.Path {
	case PathDashboard:
		_, _ = w.Write([]byte(DashboardJSON))
	case PathUserStats:
		_, _ = w.Write([]byte(UserStatsJSON))
	case PathActivity:
		_, _ = w.Write([]byte(ActivityJSON))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "not found"}`))
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email != Email || req.Password != Password {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "invalid credentials"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": Token(),
		"user":  map[string]any{"id": 42, "email": Email, "nombre": "Ada"},
	})
}
