package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecuteNavigation(t *testing.T) {
	tests := []struct {
		cmd  string
		want View
	}{
		{"agenda", AgendaView{}},
		{"help", HelpView{}},
		{"templates", TemplatesView{}},
		{"AGENDA", AgendaView{}},
		{"journal", JournalView{ProjectID: InboxID}},
		{"log", JournalView{ProjectID: InboxID}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			s, _ := newTestStore(t)
			s.Execute(tt.cmd)
			require.Equal(t, tt.want, s.Current())
		})
	}
}

func TestExecuteHomeResetsStack(t *testing.T) {
	s, _ := newTestStore(t)
	s.Execute("agenda")
	s.Execute("help")
	s.Execute("home")
	require.Equal(t, []View{HomeView{}}, s.Stack())
}

func TestExecuteUseCreatesProject(t *testing.T) {
	s, _ := newTestStore(t)
	s.Execute("use Garden")

	p, ok := s.ProjectBySlug("garden")
	require.True(t, ok)
	require.Equal(t, "Garden", p.Name)
	require.Equal(t, ProjectView{ProjectID: p.ID}, s.Current())
	require.Equal(t, p.ID, s.CurrentProjectID())

	s.Execute("use garden")
	require.Len(t, s.Projects(), 2)
}

func TestExecuteUnknownVerb(t *testing.T) {
	s, _ := newTestStore(t)
	s.Execute("frobnicate now")

	require.Equal(t, HelpView{}, s.Current())
	toast, ok := s.Toast()
	require.True(t, ok)
	require.Equal(t, "Unknown command: frobnicate", toast.Message)
}

func TestExecuteFocus(t *testing.T) {
	tests := []struct {
		cmd  string
		want int
	}{
		{"focus", 25},
		{"focus 50", 50},
		{"focus soon", 25},
		{"pomodoro 10", 10},
		{"focus 200000000", MaxFocusMinutes},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			s, _ := newTestStore(t)
			s.Execute(tt.cmd)
			f, ok := s.Focus()
			require.True(t, ok)
			require.Equal(t, tt.want, f.Minutes)
		})
	}

	s, _ := newTestStore(t)
	s.Execute("focus")
	s.Execute("focus stop")
	_, ok := s.Focus()
	require.False(t, ok)
}

func TestExecuteDeleteProject(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(t, s, "task", AddOptions{Project: "work"})

	s.Execute("rm inbox")
	require.Len(t, s.Projects(), 2)
	toast, _ := s.Toast()
	require.Equal(t, "The inbox cannot be deleted", toast.Message)

	s.Execute("delete work")
	require.Len(t, s.Projects(), 1)
	require.Empty(t, s.tasks)
}

func TestExecuteTemplateCommands(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(t, s, "step", AddOptions{})

	s.Execute("template save Morning Routine")
	_, ok := s.TemplateByName("morning routine")
	require.True(t, ok)

	s.Execute("template apply MORNING ROUTINE")
	require.Len(t, s.ProjectTasks(InboxID, AnyParent()), 2)

	s.Execute("template delete morning routine")
	require.Empty(t, s.Templates())

	s.Execute("template apply gone")
	toast, _ := s.Toast()
	require.Equal(t, `No template "gone"`, toast.Message)
}

func TestExecuteSettingsAndUndo(t *testing.T) {
	s, _ := newTestStore(t)
	s.Execute("settings")
	require.True(t, s.SettingsOpen())

	addTask(t, s, "oops", AddOptions{})
	s.Execute("undo")
	require.Empty(t, s.tasks)
	s.Execute("redo")
	require.Len(t, s.tasks, 1)
}

func TestFilterCommands(t *testing.T) {
	names := func(defs []CommandDef) []string {
		var out []string
		for _, d := range defs {
			out = append(out, d.Name)
		}
		return out
	}
	require.Equal(t, []string{"templates", "template"}, names(FilterCommands("temp")))
	require.Equal(t, []string{"focus"}, names(FilterCommands("pom")))
	require.Equal(t, []string{"delete"}, names(FilterCommands("rm work")))
	require.Len(t, FilterCommands(""), len(Commands))
	require.Empty(t, FilterCommands("zzz"))
}

func TestSubmitDispatch(t *testing.T) {
	s, _ := newTestStore(t)

	s.Submit(Submission{Text: "work: draft memo"})
	work, ok := s.ProjectBySlug("work")
	require.True(t, ok)
	tasks := s.ProjectTasks(work.ID, AnyParent())
	require.Len(t, tasks, 1)
	require.Equal(t, "draft memo", tasks[0].Content)

	s.Submit(Submission{Text: "> use work"})
	require.Equal(t, ProjectView{ProjectID: work.ID}, s.Current())

	s.Submit(Submission{Text: "review draft !tomorrow"})
	require.Len(t, s.ProjectTasks(work.ID, AnyParent()), 2)

	s.Submit(Submission{Text: ": wrote the outline"})
	require.Len(t, s.JournalEntries(work.ID), 1)

	s.Submit(Submission{Text: "?draft"})
	require.Equal(t, SearchView{Query: "draft"}, s.Current())
	require.Len(t, s.Items(), 2)

	s.Submit(Submission{Text: "review", Purpose: PurposeSearch})
	require.Equal(t, SearchView{Query: "review"}, s.Current())
	require.Len(t, s.Stack(), 3)

	s.Submit(Submission{Text: "agenda", Purpose: PurposeCommand})
	require.Equal(t, AgendaView{}, s.Current())

	s.Submit(Submission{Text: "note to self", Purpose: PurposeJournal})
	require.Len(t, s.JournalEntries(""), 2)
}

func TestSubmitEdit(t *testing.T) {
	s, clock := newTestStore(t)
	task := addTask(t, s, "draft !tomorrow", AddOptions{})

	s.Submit(Submission{Text: s.EditText(task.ID), Purpose: PurposeEdit, TaskID: task.ID})
	got, _ := s.Task(task.ID)
	require.Equal(t, task, got)

	clock.Advance(72 * time.Hour)
	prefill := s.EditText(task.ID)
	require.Equal(t, "draft !1/16/2024", prefill)
	s.Submit(Submission{Text: prefill, Purpose: PurposeEdit, TaskID: task.ID})
	got, _ = s.Task(task.ID)
	require.Equal(t, *task.DueAt, *got.DueAt)
	require.Equal(t, []Task{got}, s.Agenda().Overdue)

	s.Submit(Submission{Text: "final draft", Purpose: PurposeEdit, TaskID: task.ID})
	got, _ = s.Task(task.ID)
	require.Equal(t, "final draft", got.Content)
	require.Nil(t, got.DueAt)

	s.Submit(Submission{Text: "see doc", Purpose: PurposeNotes, TaskID: task.ID})
	got, _ = s.Task(task.ID)
	require.Equal(t, "see doc", got.Notes)

	require.True(t, s.Undo())
	got, _ = s.Task(task.ID)
	require.Empty(t, got.Notes)
}

func TestSearch(t *testing.T) {
	s, clock := newTestStore(t)
	addTask(t, s, "write report", AddOptions{})
	clock.Advance(1)
	addTask(t, s, "water plants", AddOptions{})
	archived := addTask(t, s, "report archive", AddOptions{})
	s.ArchiveTask(archived.ID)

	require.Nil(t, s.Search("  "))
	require.Equal(t, []string{"write report"}, contents(s.Search("report")))
	require.Len(t, s.Search("wri"), 1)
	require.Empty(t, s.Search("xyz"))
}
