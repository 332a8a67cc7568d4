package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withDue(t *testing.T, s *Store, content string, due time.Time) Task {
	t.Helper()
	task := addTask(t, s, content, AddOptions{})
	require.True(t, s.UpdateTask(task.ID, TaskPatch{SetDue: true, DueAt: &due}))
	got, _ := s.Task(task.ID)
	return got
}

func eod(day int) time.Time {
	return time.Date(2024, time.January, day, 23, 59, 59, 0, time.Local)
}

func contents(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Content)
	}
	return out
}

func TestAgendaBuckets(t *testing.T) {
	s, _ := newTestStore(t)

	doing := withDue(t, s, "doing overdue", eod(10))
	s.CycleTaskStatus(doing.ID)
	withDue(t, s, "overdue yesterday", eod(14))
	withDue(t, s, "overdue this morning", monday.Add(-90*time.Minute))
	withDue(t, s, "today", eod(15))
	withDue(t, s, "next monday", eod(22))
	withDue(t, s, "wednesday", eod(17))
	withDue(t, s, "upcoming", eod(23))
	addTask(t, s, "no due", AddOptions{})
	done := withDue(t, s, "done", eod(15))
	s.ToggleComplete(done.ID)
	archived := withDue(t, s, "archived", eod(15))
	s.ArchiveTask(archived.ID)

	b := s.Agenda()
	require.Equal(t, []string{"doing overdue"}, contents(b.Doing))
	require.Equal(t, []string{"overdue yesterday", "overdue this morning"}, contents(b.Overdue))
	require.Equal(t, []string{"today"}, contents(b.Today))
	require.Equal(t, []string{"wednesday", "next monday"}, contents(b.ThisWeek))
	require.Equal(t, []string{"upcoming"}, contents(b.Upcoming))
	require.Equal(t, 6, b.Len())
	require.Len(t, b.All(), 6)
}

func TestAgendaIsPartition(t *testing.T) {
	s, _ := newTestStore(t)
	for i := -10; i < 30; i++ {
		task := withDue(t, s, fmt.Sprintf("task %d", i), monday.Add(time.Duration(i)*11*time.Hour))
		if i%7 == 0 {
			s.CycleTaskStatus(task.ID)
		}
	}

	b := s.Agenda()
	seen := map[string]string{}
	for name, bucket := range map[string][]Task{
		"doing": b.Doing, "overdue": b.Overdue, "today": b.Today, "thisWeek": b.ThisWeek, "upcoming": b.Upcoming,
	} {
		for _, task := range bucket {
			prev, dup := seen[task.ID]
			require.False(t, dup, "%s in %s and %s", task.Content, prev, name)
			seen[task.ID] = name
			if name != "doing" {
				require.NotEqual(t, StatusDoing, task.Status)
			}
		}
	}
}

func TestAgendaUpcomingCapped(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 15; i > 0; i-- {
		withDue(t, s, fmt.Sprintf("far %02d", i), eod(22).AddDate(0, 0, i))
	}

	b := s.Agenda()
	require.Len(t, b.Upcoming, upcomingLimit)
	require.Equal(t, "far 01", b.Upcoming[0].Content)
	require.Equal(t, "far 10", b.Upcoming[9].Content)
}
