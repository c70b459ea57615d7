package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrBadgeIDEmpty     = errors.New("badge id cannot be empty")
	ErrBadgeIDDuplicate = errors.New("duplicate badge id")
)

const (
	BadgeFirstHabitCompleted = "first_habit_completed"
	BadgeThreeDayStreak      = "three_day_streak"
	BadgeSevenDayStreak      = "seven_day_streak"
	BadgeThirtyDayStreak     = "thirty_day_streak"
	BadgeFiveHabits          = "five_habits"
)

type Badge struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
}

// BadgeCatalog is an ordered, read-only lookup table.
type BadgeCatalog struct {
	order []Badge
	byID  map[string]Badge
}

func NewBadgeCatalog(badges []Badge) (*BadgeCatalog, error) {
	c := &BadgeCatalog{
		order: make([]Badge, 0, len(badges)),
		byID:  make(map[string]Badge, len(badges)),
	}
	for _, b := range badges {
		if b.ID == "" {
			return nil, ErrBadgeIDEmpty
		}
		if _, exists := c.byID[b.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrBadgeIDDuplicate, b.ID)
		}
		c.byID[b.ID] = b
		c.order = append(c.order, b)
	}
	return c, nil
}

func (c *BadgeCatalog) Get(id string) (Badge, bool) {
	b, ok := c.byID[id]
	return b, ok
}

func (c *BadgeCatalog) All() []Badge {
	out := make([]Badge, len(c.order))
	copy(out, c.order)
	return out
}

func (c *BadgeCatalog) Len() int {
	return len(c.order)
}

// UnlockedBadgeSet only grows: there is no removal operation.
type UnlockedBadgeSet map[string]struct{}

func NewUnlockedBadgeSet(ids ...string) UnlockedBadgeSet {
	s := make(UnlockedBadgeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s UnlockedBadgeSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding the ids of both sets.
func (s UnlockedBadgeSet) Union(other UnlockedBadgeSet) UnlockedBadgeSet {
	out := make(UnlockedBadgeSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the ids sorted, for stable storage and output.
func (s UnlockedBadgeSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
