package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"visor/internal/config"
	"visor/internal/dates"
	"visor/internal/state"
)

const defaultWidth = 80

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderBreadcrumb())
	b.WriteString("\n\n")

	switch {
	case m.store.SettingsOpen():
		b.WriteString(m.renderSettings())
	case m.store.Settings().General.ShowWelcome:
		b.WriteString(m.renderWelcome())
	default:
		r := &viewRenderer{m: m, now: m.store.Now(), selected: m.store.Selected()}
		m.store.Current().Accept(r)
		b.WriteString(strings.TrimRight(r.b.String(), "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m Model) renderBreadcrumb() string {
	crumbs := m.store.Breadcrumb()
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		if i == len(crumbs)-1 {
			parts[i] = crumbActiveStyle.Render(c)
		} else {
			parts[i] = crumbStyle.Render(c)
		}
	}
	return strings.Join(parts, crumbStyle.Render(" > "))
}

func (m Model) renderFooter() string {
	var lines []string

	switch m.mode {
	case modeInput:
		lines = append(lines, m.renderInput())
	case modeConfirm:
		if m.pending != nil {
			lines = append(lines, warningStyle.Render(deletePrompt(*m.pending)))
		}
	}

	var status []string
	if f, ok := m.store.Focus(); ok {
		status = append(status, focusStyle.Render(m.focusLabel(f)))
	}
	if t, ok := m.store.Toast(); ok {
		status = append(status, toastStyle.Render(t.Message))
	}
	if len(status) > 0 {
		lines = append(lines, strings.Join(status, " "))
	}
	if m.warning != "" {
		lines = append(lines, warningStyle.Render("! "+m.warning))
	}
	lines = append(lines, mutedStyle.Render(renderHelp(m.cfg.Keys)))
	return strings.Join(lines, "\n")
}

func (m Model) focusLabel(f state.FocusTimer) string {
	rem := f.Remaining.Round(time.Second)
	label := fmt.Sprintf("Focus %02d:%02d", int(rem.Minutes()), int(rem.Seconds())%60)
	if t, ok := m.store.Task(f.TaskID); ok {
		label += " " + t.Content
	}
	return label
}

var inputLabels = map[state.Purpose]string{
	state.PurposeTask:    "Add",
	state.PurposeCommand: "Command",
	state.PurposeSearch:  "Search",
	state.PurposeJournal: "Log",
	state.PurposeEdit:    "Edit",
	state.PurposeNotes:   "Notes",
}

func (m Model) renderInput() string {
	var b strings.Builder
	label := inputLabels[m.purpose]
	if m.purpose == state.PurposeTask && m.indent > 0 {
		label += fmt.Sprintf(" (indent %d)", m.indent)
	}
	b.WriteString(selectedStyle.Render(label))
	b.WriteString(" ")
	b.WriteString(m.input.View())

	suggestions := m.suggestions()
	for i, c := range suggestions {
		if i == 5 {
			break
		}
		b.WriteString("\n")
		line := fmt.Sprintf("  %-36s %s", c.Usage, c.Description)
		if i == 0 {
			line = selectedStyle.Render(line)
		} else {
			line = mutedStyle.Render(line)
		}
		b.WriteString(line)
	}
	return overlayStyle.Render(b.String())
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s open • %s thread • %s add • %s status • %s done • %s edit • %s command • %s search • %s undo • %s quit",
		k.Up, k.Down, k.Open, k.Subtask, k.Insert, keyName(k.Cycle), k.Complete, k.Edit, k.Command, k.Search, k.Undo, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (m Model) renderWelcome() string {
	k := m.cfg.Keys
	text := strings.Join([]string{
		headingStyle.Render("Welcome to visor"),
		"",
		fmt.Sprintf("Press %s to add a task. Prefix it with a project and a colon to file it there,", k.Insert),
		"for example \"work: send report !fri\".",
		fmt.Sprintf("Press %s for commands, %s to search and %s to write in the journal.", k.Command, k.Search, k.Journal),
		"The help command lists every key.",
		"",
		mutedStyle.Render("Press any key to start."),
	}, "\n")
	return overlayStyle.Render(text)
}

func (m Model) renderSettings() string {
	s := m.store.Settings()
	text := strings.Join([]string{
		headingStyle.Render("Settings"),
		"",
		fmt.Sprintf("Show welcome      %t  (w to toggle)", s.General.ShowWelcome),
		fmt.Sprintf("Toggle visor key  %s", s.Keybindings.ToggleVisor),
		"",
		mutedStyle.Render(fmt.Sprintf("%s to close", m.cfg.Keys.Back)),
	}, "\n")
	return overlayStyle.Render(text)
}

// viewRenderer draws the body of the current view.
type viewRenderer struct {
	m        Model
	now      time.Time
	selected int
	b        strings.Builder
}

func (r *viewRenderer) heading(title string) {
	if r.b.Len() > 0 {
		r.b.WriteString("\n")
	}
	r.b.WriteString(headingStyle.Render(title))
	r.b.WriteString("\n")
}

func (r *viewRenderer) row(i int, line string) {
	if i == r.selected {
		r.b.WriteString(selectedStyle.Render("> "))
	} else {
		r.b.WriteString("  ")
	}
	r.b.WriteString(line)
	r.b.WriteString("\n")
}

func (r *viewRenderer) empty(text string) {
	r.b.WriteString(mutedStyle.Render("  " + text))
	r.b.WriteString("\n")
}

// taskRows draws tasks starting at item index first and returns the next
// index.
func (r *viewRenderer) taskRows(first int, tasks []state.Task, withProject bool) int {
	for _, t := range tasks {
		r.row(first, r.taskLine(t, withProject))
		first++
	}
	return first
}

func (r *viewRenderer) taskLine(t state.Task, withProject bool) string {
	parts := []string{statusMark(t.Status), statusStyles[t.Status].Render(t.Content)}
	if r.m.store.HasChildren(t.ID) {
		parts = append(parts, mutedStyle.Render("+"))
	}
	if due := r.dueLabel(t); due != "" {
		parts = append(parts, due)
	}
	if t.Recurrence != nil {
		parts = append(parts, mutedStyle.Render("("+t.Recurrence.String()+")"))
	}
	if withProject {
		if p, ok := r.m.store.Project(t.ProjectID); ok {
			parts = append(parts, projectStyle(p).Render("#"+p.Slug))
		}
	}
	if t.Notes != "" {
		parts = append(parts, mutedStyle.Render("[notes]"))
	}
	return strings.Join(parts, " ")
}

// dueLabel shows overdue deadlines as a relative age and upcoming ones as
// the token that would set them.
func (r *viewRenderer) dueLabel(t state.Task) string {
	if t.DueAt == nil {
		return ""
	}
	if t.DueAt.Before(r.now) && !t.Completed {
		return overdueStyle.Render("!" + humanize.RelTime(*t.DueAt, r.now, "overdue", "from now"))
	}
	return mutedStyle.Render("!" + dates.Token(*t.DueAt, r.now))
}

func (r *viewRenderer) Home(state.HomeView) {
	b := r.m.store.Agenda()
	r.heading("Today")
	i := 0
	i = r.taskRows(i, b.Doing, true)
	i = r.taskRows(i, b.Overdue, true)
	i = r.taskRows(i, b.Today, true)
	if i == 0 {
		r.empty("Nothing due today")
	}

	r.heading("Projects")
	for _, st := range r.m.store.ProjectStats() {
		name := projectStyle(st.Project).Render(st.Project.Name)
		line := fmt.Sprintf("%s %s", name, mutedStyle.Render(fmt.Sprintf("%d open, %d%% done", st.Pending, st.Percent)))
		r.row(i, line)
		i++
	}
}

func (r *viewRenderer) Agenda(state.AgendaView) {
	b := r.m.store.Agenda()
	if b.Len() == 0 {
		r.empty("No scheduled or active tasks")
		return
	}
	buckets := []struct {
		title string
		tasks []state.Task
	}{
		{"Doing", b.Doing},
		{"Overdue", b.Overdue},
		{"Today", b.Today},
		{"This week", b.ThisWeek},
		{"Upcoming", b.Upcoming},
	}
	i := 0
	for _, bucket := range buckets {
		if len(bucket.tasks) == 0 {
			continue
		}
		r.heading(bucket.title)
		i = r.taskRows(i, bucket.tasks, true)
	}
}

func (r *viewRenderer) Project(pv state.ProjectView) {
	tasks := r.m.store.ProjectTasks(pv.ProjectID, state.TopLevel())
	if len(tasks) == 0 {
		r.empty(fmt.Sprintf("No tasks. Press %s to add one.", r.m.cfg.Keys.Insert))
		return
	}
	r.taskRows(0, tasks, false)
}

func (r *viewRenderer) Thread(tv state.ThreadView) {
	if parent, ok := r.m.store.Task(tv.ParentTaskID); ok {
		r.b.WriteString(statusMark(parent.Status) + " " + parent.Content + "\n\n")
	}
	tasks := r.m.store.ProjectTasks(tv.ProjectID, state.ChildrenOf(tv.ParentTaskID))
	if len(tasks) == 0 {
		r.empty(fmt.Sprintf("No subtasks. Press %s to add one.", r.m.cfg.Keys.Insert))
		return
	}
	r.taskRows(0, tasks, false)
}

func (r *viewRenderer) Templates(state.TemplatesView) {
	templates := r.m.store.Templates()
	if len(templates) == 0 {
		r.empty("No templates. Use \"template save <name>\" inside a project.")
		return
	}
	for i, t := range templates {
		r.row(i, fmt.Sprintf("%s %s", t.Name, mutedStyle.Render(fmt.Sprintf("%d tasks", len(t.Tasks)))))
	}
}

func (r *viewRenderer) Journal(jv state.JournalView) {
	entries := r.m.store.JournalEntries(jv.ProjectID)
	if len(entries) == 0 {
		r.empty(fmt.Sprintf("No entries. Press %s to write one.", r.m.cfg.Keys.Journal))
		return
	}
	width := r.m.contentWidth() - 4
	for _, e := range entries {
		r.b.WriteString(mutedStyle.Render(humanize.RelTime(e.CreatedAt, r.now, "ago", "from now")))
		r.b.WriteString("\n")
		for _, line := range strings.Split(wordwrap.String(e.Content, width), "\n") {
			r.b.WriteString("  " + line + "\n")
		}
	}
}

func (r *viewRenderer) Help(state.HelpView) {
	r.b.WriteString(renderMarkdown(r.m.contentWidth(), helpMarkdown(r.m.cfg.Keys)))
	r.b.WriteString("\n")
}

func (r *viewRenderer) Search(sv state.SearchView) {
	tasks := r.m.store.Search(sv.Query)
	if len(tasks) == 0 {
		r.empty(fmt.Sprintf("No tasks match %q", sv.Query))
		return
	}
	r.taskRows(0, tasks, true)
}

func (r *viewRenderer) Detail(dv state.DetailView) {
	t, ok := r.m.store.Task(dv.TaskID)
	if !ok {
		r.empty("Task no longer exists")
		return
	}
	field := func(name, value string) {
		if value == "" {
			return
		}
		r.b.WriteString(fmt.Sprintf("%-10s %s\n", mutedStyle.Render(name), value))
	}

	r.b.WriteString(statusMark(t.Status) + " " + lipgloss.NewStyle().Bold(true).Render(t.Content) + "\n\n")
	field("Status", string(t.Status))
	if p, ok := r.m.store.Project(t.ProjectID); ok {
		field("Project", projectStyle(p).Render(p.Name))
	}
	field("Created", humanize.RelTime(t.CreatedAt, r.now, "ago", "from now"))
	if t.DueAt != nil {
		field("Due", t.DueAt.Format("Mon Jan 2")+" "+r.dueLabel(t))
	}
	if t.Scheduled != nil {
		field("Scheduled", t.Scheduled.Format("Mon Jan 2"))
	}
	if t.Recurrence != nil {
		field("Repeats", t.Recurrence.String())
	}
	if t.CompletedAt != nil {
		field("Completed", humanize.RelTime(*t.CompletedAt, r.now, "ago", "from now"))
	}

	r.b.WriteString("\n")
	if t.Notes == "" {
		r.empty(fmt.Sprintf("No notes. Press %s to add some.", r.m.cfg.Keys.Notes))
		return
	}
	r.b.WriteString(renderMarkdown(r.m.contentWidth(), t.Notes))
	r.b.WriteString("\n")
}

func (r *viewRenderer) ProjectSettings(pv state.ProjectSettingsView) {
	p, ok := r.m.store.Project(pv.ProjectID)
	if !ok {
		r.empty("Project no longer exists")
		return
	}
	var stats state.ProjectStats
	for _, st := range r.m.store.ProjectStats() {
		if st.Project.ID == p.ID {
			stats = st
		}
	}
	r.b.WriteString(projectStyle(p).Bold(true).Render(p.Name) + "\n\n")
	r.b.WriteString(fmt.Sprintf("Slug      %s\n", p.Slug))
	r.b.WriteString(fmt.Sprintf("Color     %s\n", projectStyle(p).Render(p.Color)))
	r.b.WriteString(fmt.Sprintf("Created   %s\n", humanize.RelTime(p.CreatedAt, r.now, "ago", "from now")))
	r.b.WriteString(fmt.Sprintf("Tasks     %d open, %d done (%d%%)\n", stats.Pending, stats.Completed, stats.Percent))
}

func helpMarkdown(k config.Keymap) string {
	var b strings.Builder
	b.WriteString("# Keys\n\n")
	keys := [][2]string{
		{k.Up + " / " + k.Down, "move selection"},
		{k.Open, "open project, jump to task or show details"},
		{k.Subtask, "open the subtasks of a task"},
		{k.Back, "go back"},
		{k.Insert, "add a task"},
		{keyName(k.Cycle), "cycle status"},
		{k.Complete, "toggle done"},
		{k.Edit, "edit text and deadline"},
		{k.Notes, "edit notes"},
		{k.Archive, "archive"},
		{k.Delete, "delete"},
		{k.MoveUp + " / " + k.MoveDown, "reorder"},
		{k.Undo + " / " + k.Redo, "undo / redo"},
		{k.Command, "command line"},
		{k.Search, "fuzzy search"},
		{k.Journal, "journal entry"},
		{k.Quit, "quit"},
	}
	for _, row := range keys {
		fmt.Fprintf(&b, "- `%s` %s\n", row[0], row[1])
	}

	b.WriteString("\n# Commands\n\n")
	for _, c := range state.Commands {
		usage := c.Usage
		if len(c.Aliases) > 0 {
			usage += " (" + strings.Join(c.Aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "- `%s` %s\n", usage, c.Description)
	}

	b.WriteString("\n# Task text\n\n")
	b.WriteString("- `work: write report` files the task under the work project\n")
	b.WriteString("- `!today`, `!tom`, `!fri`, `!3/14`, `!3/14/2027` set a deadline\n")
	b.WriteString("- `@mon` schedules the task\n")
	b.WriteString("- `!every week` repeats it\n")
	return b.String()
}
