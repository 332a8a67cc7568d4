package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushPopKeepsHomeFloor(t *testing.T) {
	s, _ := newTestStore(t)

	s.Push(AgendaView{})
	s.MoveSelection(3)
	require.Equal(t, Forward, s.Direction())
	require.Equal(t, AgendaView{}, s.Current())

	require.True(t, s.Pop())
	require.Equal(t, Backward, s.Direction())
	require.Equal(t, 0, s.Selected())
	require.False(t, s.Pop())
	require.Equal(t, []View{HomeView{}}, s.Stack())
}

func TestCurrentProjectIDScansStack(t *testing.T) {
	s, _ := newTestStore(t)
	work, _ := s.EnsureProject("work")

	s.Push(ProjectView{ProjectID: work.ID})
	s.Push(AgendaView{})
	s.Push(HelpView{})
	require.Equal(t, work.ID, s.CurrentProjectID())

	s.ResetHome()
	s.Push(ProjectView{ProjectID: "gone"})
	require.Equal(t, InboxID, s.CurrentProjectID())
}

func TestJumpToNestedTask(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(t, s, "A", AddOptions{Project: "work"})
	b := addTask(t, s, "B", AddOptions{Project: "work", Indent: 1})
	addTask(t, s, "X", AddOptions{Project: "work", Indent: 2})
	c := addTask(t, s, "C", AddOptions{Project: "work", Indent: 2})
	s.Push(AgendaView{})

	require.True(t, s.JumpTo(c.ID))
	require.Equal(t, []View{
		HomeView{},
		ProjectView{ProjectID: a.ProjectID},
		ThreadView{ProjectID: a.ProjectID, ParentTaskID: a.ID},
		ThreadView{ProjectID: a.ProjectID, ParentTaskID: b.ID},
	}, s.Stack())
	require.Equal(t, 1, s.Selected())

	item, ok := s.SelectedItem()
	require.True(t, ok)
	require.Equal(t, c.ID, item.ID())
}

func TestJumpToTopLevelTask(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(t, s, "first", AddOptions{})
	second := addTask(t, s, "second", AddOptions{})

	require.True(t, s.JumpTo(second.ID))
	require.Equal(t, []View{HomeView{}, ProjectView{ProjectID: InboxID}}, s.Stack())
	require.Equal(t, 1, s.Selected())
	require.False(t, s.JumpTo("missing"))
}

func TestJumpToSurvivesParentCycle(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(t, s, "a", AddOptions{})
	b := addTask(t, s, "b", AddOptions{Indent: 1})
	s.tasks[a.ID].ParentID = b.ID

	require.True(t, s.JumpTo(b.ID))
	require.Len(t, s.Stack(), 3)
}

func TestItemsPerView(t *testing.T) {
	s, _ := newTestStore(t)
	today := addTask(t, s, "today !today", AddOptions{})
	later := addTask(t, s, "later", AddOptions{})
	child := addTask(t, s, "child", AddOptions{Indent: 1})

	home := s.Items()
	require.Len(t, home, 2)
	require.Equal(t, ItemTask, home[0].Kind)
	require.Equal(t, today.ID, home[0].ID())
	require.Equal(t, ItemProject, home[1].Kind)

	s.Push(ProjectView{ProjectID: InboxID})
	require.Len(t, s.Items(), 2)

	s.Push(ThreadView{ProjectID: InboxID, ParentTaskID: later.ID})
	items := s.Items()
	require.Len(t, items, 1)
	require.Equal(t, child.ID, items[0].ID())

	s.Push(JournalView{ProjectID: InboxID})
	require.Empty(t, s.Items())
	_, ok := s.SelectedItem()
	require.False(t, ok)
}

func TestMoveSelectionClamps(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(t, s, "a", AddOptions{})
	addTask(t, s, "b", AddOptions{})
	s.Push(ProjectView{ProjectID: InboxID})

	s.MoveSelection(-1)
	require.Equal(t, 0, s.Selected())
	s.MoveSelection(5)
	require.Equal(t, 1, s.Selected())
}

func TestBreadcrumb(t *testing.T) {
	s, _ := newTestStore(t)
	parent := addTask(t, s, "parent", AddOptions{})
	s.Push(ProjectView{ProjectID: InboxID})
	s.Push(ThreadView{ProjectID: InboxID, ParentTaskID: parent.ID})

	require.Equal(t, []string{"Home", "Inbox", "parent"}, s.Breadcrumb())
}
