package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownHabitKind = errors.New("unknown habit kind")
)

type HabitKind string

const (
	HabitKindBoolean   HabitKind = "boolean"
	HabitKindNumeric   HabitKind = "numeric"
	HabitKindAvoidance HabitKind = "avoidance"
)

// upstreamKinds maps every spelling the backend has used for a habit type.
var upstreamKinds = map[string]HabitKind{
	"si_no":      HabitKindBoolean,
	"sino":       HabitKindBoolean,
	"boolean":    HabitKindBoolean,
	"medible":    HabitKindNumeric,
	"numerico":   HabitKindNumeric,
	"numeric":    HabitKindNumeric,
	"mal_habito": HabitKindAvoidance,
	"malo":       HabitKindAvoidance,
	"avoidance":  HabitKindAvoidance,
}

func ParseHabitKind(raw string) (HabitKind, error) {
	kind, ok := upstreamKinds[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownHabitKind, raw)
	}
	return kind, nil
}

// IsGood reports whether the habit is one to build rather than one to quit.
func (k HabitKind) IsGood() bool {
	return k == HabitKindBoolean || k == HabitKindNumeric
}

type HabitStat struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Kind             HabitKind `json:"kind"`
	CurrentStreak    int       `json:"current_streak"`
	BestStreak       *int      `json:"best_streak,omitempty"`
	TotalCompletions *int      `json:"total_completions,omitempty"`
	CompletedToday   *bool     `json:"completed_today,omitempty"`
}
