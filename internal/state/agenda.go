package state

import (
	"sort"

	"visor/internal/dates"
)

const upcomingLimit = 10

// AgendaBuckets partitions active, incomplete tasks by urgency. A task
// appears in at most one bucket.
type AgendaBuckets struct {
	Doing    []Task
	Overdue  []Task
	Today    []Task
	ThisWeek []Task
	Upcoming []Task
}

// All returns the buckets concatenated in priority order.
func (b AgendaBuckets) All() []Task {
	out := make([]Task, 0, len(b.Doing)+len(b.Overdue)+len(b.Today)+len(b.ThisWeek)+len(b.Upcoming))
	out = append(out, b.Doing...)
	out = append(out, b.Overdue...)
	out = append(out, b.Today...)
	out = append(out, b.ThisWeek...)
	return append(out, b.Upcoming...)
}

// Len is the total number of tasks across buckets.
func (b AgendaBuckets) Len() int {
	return len(b.Doing) + len(b.Overdue) + len(b.Today) + len(b.ThisWeek) + len(b.Upcoming)
}

// Agenda classifies tasks against the store clock. It is computed fresh on
// every call.
func (s *Store) Agenda() AgendaBuckets {
	now := s.now()
	todayEnd := dates.EndOfDay(now)
	weekEnd := dates.EndOfDay(now.AddDate(0, 0, 7))

	var b AgendaBuckets
	for _, t := range s.activeTasks() {
		if t.Completed {
			continue
		}
		if t.Status == StatusDoing {
			b.Doing = append(b.Doing, *t)
			continue
		}
		if t.DueAt == nil {
			continue
		}
		due := *t.DueAt
		switch {
		case due.Before(now):
			b.Overdue = append(b.Overdue, *t)
		case !due.After(todayEnd):
			b.Today = append(b.Today, *t)
		case !due.After(weekEnd):
			b.ThisWeek = append(b.ThisWeek, *t)
		default:
			b.Upcoming = append(b.Upcoming, *t)
		}
	}
	byDue(b.Overdue)
	byDue(b.Today)
	byDue(b.ThisWeek)
	byDue(b.Upcoming)
	if len(b.Upcoming) > upcomingLimit {
		b.Upcoming = b.Upcoming[:upcomingLimit]
	}
	return b
}

func byDue(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueAt.Before(*tasks[j].DueAt)
	})
}
