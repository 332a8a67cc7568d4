package state

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.Local)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{now: monday}
	n := 0
	s := New(WithClock(clock.Now), WithIDs(func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}))
	return s, clock
}

func addTask(t *testing.T, s *Store, content string, opts AddOptions) Task {
	t.Helper()
	task, ok := s.AddTask(content, opts)
	require.True(t, ok, "add %q", content)
	return task
}

// dataState is the persisted data of s without navigation and settings.
func dataState(t *testing.T, s *Store) snapshot {
	t.Helper()
	blob, err := s.Snapshot()
	require.NoError(t, err)
	var snap snapshot
	require.NoError(t, json.Unmarshal(blob, &snap))
	snap.ViewStack = nil
	snap.Settings = nil
	return snap
}

func requireCompletedConsistent(t *testing.T, s *Store) {
	t.Helper()
	for id, task := range s.tasks {
		require.Equal(t, task.Status.IsCompleted(), task.Completed, "task %s", id)
	}
}

func TestNewStoreHasInbox(t *testing.T) {
	s, _ := newTestStore(t)

	projects := s.Projects()
	require.Len(t, projects, 1)
	require.Equal(t, InboxID, projects[0].ID)
	require.True(t, projects[0].IsInbox)
	require.Equal(t, "inbox", projects[0].Slug)
	require.Equal(t, []View{HomeView{}}, s.Stack())
	require.Equal(t, InboxID, s.CurrentProjectID())
}

func TestAddTaskDefaultsToCurrentProject(t *testing.T) {
	s, _ := newTestStore(t)

	task := addTask(t, s, "Ship report !friday", AddOptions{})
	require.Equal(t, "Ship report", task.Content)
	require.Equal(t, InboxID, task.ProjectID)
	require.Equal(t, StatusTodo, task.Status)
	require.Equal(t, time.Date(2024, time.January, 19, 23, 59, 59, 0, time.Local), *task.DueAt)

	p, _ := s.Project(InboxID)
	require.Equal(t, []string{task.ID}, p.TaskOrder)
}

func TestAddTaskRejectsEmptyContent(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok := s.AddTask("   !today  ", AddOptions{})
	require.False(t, ok)
	require.Empty(t, s.tasks)
	require.False(t, s.CanUndo())
	toast, ok := s.Toast()
	require.True(t, ok)
	require.Equal(t, "Task is empty", toast.Message)
}

func TestAddTaskCreatesProjectFromSlug(t *testing.T) {
	s, _ := newTestStore(t)

	task := addTask(t, s, "draft memo", AddOptions{Project: "Work"})
	p, ok := s.ProjectBySlug("work")
	require.True(t, ok)
	require.Equal(t, "Work", p.Name)
	require.Equal(t, DefaultProjectColor, p.Color)
	require.Equal(t, p.ID, task.ProjectID)

	again := addTask(t, s, "review memo", AddOptions{Project: "work"})
	require.Equal(t, p.ID, again.ProjectID)
	require.Len(t, s.Projects(), 2)
}

func TestAddTaskParentFromIndent(t *testing.T) {
	s, _ := newTestStore(t)

	a := addTask(t, s, "A", AddOptions{})
	b := addTask(t, s, "B", AddOptions{Indent: 1})
	c := addTask(t, s, "C", AddOptions{Indent: 2})
	d := addTask(t, s, "D", AddOptions{})
	e := addTask(t, s, "E", AddOptions{Indent: 1})

	require.Equal(t, "", a.ParentID)
	require.Equal(t, a.ID, b.ParentID)
	require.Equal(t, b.ID, c.ParentID)
	require.Equal(t, "", d.ParentID)
	require.Equal(t, d.ID, e.ParentID, "last matching sibling wins")
}

func TestAddTaskInThreadUsesAnchor(t *testing.T) {
	s, _ := newTestStore(t)

	parent := addTask(t, s, "parent", AddOptions{Indent: 1})
	s.Push(ThreadView{ProjectID: InboxID, ParentTaskID: parent.ID})

	child := addTask(t, s, "child", AddOptions{})
	require.Equal(t, parent.ID, child.ParentID)
	require.Equal(t, 2, child.Indent)
	require.True(t, s.HasChildren(parent.ID))
}

func TestCycleTaskStatus(t *testing.T) {
	s, clock := newTestStore(t)
	task := addTask(t, s, "cycle me", AddOptions{})

	want := []Status{StatusDoing, StatusDone, StatusCancelled, StatusWaiting, StatusTodo}
	for _, st := range want {
		clock.Advance(time.Minute)
		require.True(t, s.CycleTaskStatus(task.ID))
		got, _ := s.Task(task.ID)
		require.Equal(t, st, got.Status)
		requireCompletedConsistent(t, s)
		if st == StatusDone {
			require.Equal(t, clock.now, *got.CompletedAt)
		}
	}
	require.False(t, s.CycleTaskStatus("missing"))
}

func TestToggleComplete(t *testing.T) {
	s, _ := newTestStore(t)
	task := addTask(t, s, "toggle", AddOptions{})

	require.True(t, s.ToggleComplete(task.ID))
	got, _ := s.Task(task.ID)
	require.Equal(t, StatusDone, got.Status)
	require.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)

	require.True(t, s.ToggleComplete(task.ID))
	got, _ = s.Task(task.ID)
	require.Equal(t, StatusTodo, got.Status)
	require.False(t, got.Completed)
	require.Nil(t, got.CompletedAt)
}

func TestUpdateTaskStatusKeepsCompletedInSync(t *testing.T) {
	s, _ := newTestStore(t)
	task := addTask(t, s, "edit", AddOptions{})

	cancelled := StatusCancelled
	content := "  edited  "
	require.True(t, s.UpdateTask(task.ID, TaskPatch{Status: &cancelled, Content: &content}))
	got, _ := s.Task(task.ID)
	require.Equal(t, "edited", got.Content)
	require.True(t, got.Completed)
	requireCompletedConsistent(t, s)

	bogus := Status("LATER")
	require.True(t, s.UpdateTask(task.ID, TaskPatch{Status: &bogus}))
	got, _ = s.Task(task.ID)
	require.Equal(t, StatusCancelled, got.Status)
}

func TestArchiveHidesTask(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(t, s, "a", AddOptions{})
	b := addTask(t, s, "b", AddOptions{})

	require.True(t, s.ArchiveTask(a.ID))
	require.False(t, s.ArchiveTask(a.ID))
	tasks := s.ProjectTasks(InboxID, TopLevel())
	require.Len(t, tasks, 1)
	require.Equal(t, b.ID, tasks[0].ID)

	p, _ := s.Project(InboxID)
	require.Equal(t, []string{a.ID, b.ID}, p.TaskOrder)
	require.Equal(t, 1, s.ProjectStats()[0].Total)
}

func TestArchivedParentCountsAsNoParent(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(t, s, "a", AddOptions{})
	b := addTask(t, s, "b", AddOptions{Indent: 1})

	require.Empty(t, s.ProjectTasks(InboxID, TopLevel())[1:])
	s.ArchiveTask(a.ID)
	top := s.ProjectTasks(InboxID, TopLevel())
	require.Len(t, top, 1)
	require.Equal(t, b.ID, top[0].ID)
}

func TestDeleteTaskRemovesFromOrder(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(t, s, "a", AddOptions{})
	b := addTask(t, s, "b", AddOptions{})
	c := addTask(t, s, "c", AddOptions{})

	require.True(t, s.DeleteTask(b.ID))
	_, ok := s.Task(b.ID)
	require.False(t, ok)
	p, _ := s.Project(InboxID)
	require.Equal(t, []string{a.ID, c.ID}, p.TaskOrder)
}

func TestMoveTaskOrder(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(t, s, "a", AddOptions{})
	b := addTask(t, s, "b", AddOptions{})

	require.False(t, s.MoveTaskOrder(a.ID, Up))
	require.False(t, s.MoveTaskOrder(b.ID, Down))
	require.True(t, s.MoveTaskOrder(b.ID, Up))
	p, _ := s.Project(InboxID)
	require.Equal(t, []string{b.ID, a.ID}, p.TaskOrder)
}

func TestProjectStats(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		addTask(t, s, fmt.Sprintf("work %d", i), AddOptions{Project: "work"})
	}
	work, _ := s.ProjectBySlug("work")
	tasks := s.ProjectTasks(work.ID, AnyParent())
	s.ToggleComplete(tasks[0].ID)
	s.CycleTaskStatus(tasks[1].ID)

	stats := s.ProjectStats()
	require.Len(t, stats, 2)
	require.Equal(t, InboxID, stats[0].Project.ID)
	require.Equal(t, 0, stats[0].Total)
	require.Equal(t, 0, stats[0].Percent)

	require.Equal(t, ProjectStats{Project: stats[1].Project, Total: 3, Pending: 2, Completed: 1, Percent: 33}, stats[1])
}

func TestDeleteProject(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(t, s, "keep", AddOptions{})
	addTask(t, s, "one", AddOptions{Project: "work"})
	addTask(t, s, "two", AddOptions{Project: "work"})
	s.Execute("use work")
	require.Len(t, s.Stack(), 2)

	require.True(t, s.DeleteProject("WORK"))
	_, ok := s.ProjectBySlug("work")
	require.False(t, ok)
	require.Len(t, s.tasks, 1)
	require.Equal(t, []View{HomeView{}}, s.Stack())
}

func TestDeleteInboxRejected(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(t, s, "keep", AddOptions{})
	before := dataState(t, s)

	require.False(t, s.DeleteProject("inbox"))
	require.Equal(t, before, dataState(t, s))
	require.False(t, s.DeleteProject("nope"))
	require.Equal(t, before, dataState(t, s))
}

func TestEditText(t *testing.T) {
	s, _ := newTestStore(t)
	plain := addTask(t, s, "plain", AddOptions{})
	due := addTask(t, s, "due !fri", AddOptions{})

	require.Equal(t, "plain", s.EditText(plain.ID))
	require.Equal(t, "due !fri", s.EditText(due.ID))
}

func TestToastClearsOnlyMatchingTimestamp(t *testing.T) {
	s, clock := newTestStore(t)
	s.ShowToast("first")
	first, _ := s.Toast()
	clock.Advance(time.Second)
	s.ShowToast("second")

	s.ClearToast(first.At)
	toast, ok := s.Toast()
	require.True(t, ok)
	require.Equal(t, "second", toast.Message)

	s.ClearToast(toast.At)
	_, ok = s.Toast()
	require.False(t, ok)
}

func TestUpdateSettingsMerges(t *testing.T) {
	s, _ := newTestStore(t)
	off := false
	s.UpdateSettings(SettingsPatch{ShowWelcome: &off})

	got := s.Settings()
	require.False(t, got.General.ShowWelcome)
	require.Equal(t, "alt+space", got.Keybindings.ToggleVisor)
}

func TestFocusTimer(t *testing.T) {
	s, clock := newTestStore(t)
	timer := s.StartFocus(0, "")
	require.Equal(t, DefaultFocusMinutes, timer.Minutes)

	clock.Advance(10 * time.Minute)
	require.True(t, s.TickFocus())
	f, ok := s.Focus()
	require.True(t, ok)
	require.Equal(t, 15*time.Minute, f.Remaining)

	clock.Advance(20 * time.Minute)
	require.False(t, s.TickFocus())
	_, ok = s.Focus()
	require.False(t, ok)
	toast, _ := s.Toast()
	require.Equal(t, "Focus session complete", toast.Message)

	long := s.StartFocus(200000000, "")
	require.Equal(t, MaxFocusMinutes, long.Minutes)
	require.Equal(t, 24*time.Hour, long.Remaining)
	clock.Advance(time.Minute)
	require.True(t, s.TickFocus())
}

func TestJournalEntries(t *testing.T) {
	s, clock := newTestStore(t)
	_, ok := s.AddLogEntry("  ")
	require.False(t, ok)

	first, ok := s.AddLogEntry("started")
	require.True(t, ok)
	require.Equal(t, InboxID, first.ProjectID)

	s.Execute("use work")
	clock.Advance(time.Minute)
	second, _ := s.AddLogEntry("shipped")
	work, _ := s.ProjectBySlug("work")
	require.Equal(t, work.ID, second.ProjectID)

	require.Equal(t, []LogEntry{second}, s.JournalEntries(work.ID))
	require.Equal(t, []LogEntry{second, first}, s.JournalEntries(""))
}
