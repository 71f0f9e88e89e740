package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// HabitGroup is the two-level view of one conceptual habit: all instances
// that share a GroupID, keyed by the weekday each instance covers.
// Ungrouped habits are modeled as a group of size one keyed by the habit's
// own ID. Groups are derived from the store on demand and never persisted.
type HabitGroup struct {
	ID      uuid.UUID
	Name    string
	Members map[time.Weekday]*Habit
}

// IsGrouped returns true if the group spans more than one weekday.
func (g *HabitGroup) IsGrouped() bool {
	return len(g.Members) > 1
}

// Days returns the distinct weekdays the group covers, ascending.
func (g *HabitGroup) Days() []time.Weekday {
	days := make([]time.Weekday, 0, len(g.Members))
	for d := range g.Members {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// DayNames returns the group's weekdays as display names, ascending.
func (g *HabitGroup) DayNames() []string {
	days := g.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return names
}

// GroupHabits partitions habits into HabitGroups, preserving the order in
// which each group first appears in the input.
func GroupHabits(habits []*Habit) []*HabitGroup {
	var groups []*HabitGroup
	byKey := make(map[uuid.UUID]*HabitGroup)

	for _, h := range habits {
		key := h.GroupKey()
		g, ok := byKey[key]
		if !ok {
			g = &HabitGroup{
				ID:      key,
				Name:    h.Name,
				Members: make(map[time.Weekday]*Habit),
			}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.Members[h.DayOfWeek] = h
	}

	return groups
}
