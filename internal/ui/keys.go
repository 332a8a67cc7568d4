package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"visor/internal/state"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}
	switch {
	case m.mode == modeInput:
		return m.updateInputMode(key, msg)
	case m.mode == modeConfirm:
		return m.updateDeleteConfirm(key), nil
	case m.store.SettingsOpen():
		return m.updateSettings(key), nil
	case m.store.Settings().General.ShowWelcome:
		off := false
		m.store.UpdateSettings(state.SettingsPatch{ShowWelcome: &off})
		return m, nil
	}
	return m.updateListMode(key)
}

func (m Model) updateListMode(key string) (Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Quit:
		return m.quit()
	case k.Up, "up":
		m.store.MoveSelection(-1)
	case k.Down, "down":
		m.store.MoveSelection(1)
	case k.Back, "left":
		m.store.Pop()
	case k.Open:
		m.open()
	case k.Subtask, "right":
		m.openThread()
	case k.Cycle:
		if t, ok := m.focusedTask(); ok {
			m.store.CycleTaskStatus(t.ID)
		}
	case k.Complete:
		if t, ok := m.focusedTask(); ok {
			m.store.ToggleComplete(t.ID)
		}
	case k.Archive:
		if t, ok := m.focusedTask(); ok {
			m.store.ArchiveTask(t.ID)
			m.leaveDetail(t.ID)
			m.store.MoveSelection(0)
		}
	case k.Delete:
		return m.confirmDelete(), nil
	case k.Edit:
		if t, ok := m.focusedTask(); ok {
			return m.openInput(state.PurposeEdit, t.ID, m.store.EditText(t.ID))
		}
	case k.Notes:
		if t, ok := m.focusedTask(); ok {
			return m.openInput(state.PurposeNotes, t.ID, t.Notes)
		}
	case k.Undo:
		m.store.Undo()
		m.store.MoveSelection(0)
	case k.Redo:
		m.store.Redo()
		m.store.MoveSelection(0)
	case k.Insert:
		return m.openInput(state.PurposeTask, "", "")
	case k.Command:
		return m.openInput(state.PurposeCommand, "", "")
	case k.Search:
		return m.openInput(state.PurposeSearch, "", "")
	case k.Journal:
		return m.openInput(state.PurposeJournal, "", "")
	case k.MoveUp:
		m.moveTask(state.Up)
	case k.MoveDown:
		m.moveTask(state.Down)
	}
	return m, nil
}

// focusedTask is the highlighted task, or the task of a detail view.
func (m Model) focusedTask() (state.Task, bool) {
	if item, ok := m.store.SelectedItem(); ok && item.Kind == state.ItemTask {
		return item.Task, true
	}
	if dv, ok := m.store.Current().(state.DetailView); ok {
		return m.store.Task(dv.TaskID)
	}
	return state.Task{}, false
}

// open drills into the highlighted item. Tasks listed outside their project
// jump to their place in the tree; tasks inside it show their details.
func (m Model) open() {
	item, ok := m.store.SelectedItem()
	if !ok {
		return
	}
	switch item.Kind {
	case state.ItemProject:
		m.store.Push(state.ProjectView{ProjectID: item.Project.ID})
	case state.ItemTemplate:
		m.store.ApplyTemplate(item.Template.Name)
	case state.ItemTask:
		if inTree(m.store.Current()) {
			m.store.Push(state.DetailView{TaskID: item.Task.ID})
			return
		}
		m.store.JumpTo(item.Task.ID)
	}
}

func (m Model) openThread() {
	item, ok := m.store.SelectedItem()
	if !ok {
		return
	}
	switch item.Kind {
	case state.ItemProject:
		m.store.Push(state.ProjectView{ProjectID: item.Project.ID})
	case state.ItemTask:
		m.store.Push(state.ThreadView{ProjectID: item.Task.ProjectID, ParentTaskID: item.Task.ID})
	}
}

func inTree(v state.View) bool {
	switch v.(type) {
	case state.ProjectView, state.ThreadView:
		return true
	}
	return false
}

func (m Model) moveTask(dir state.Direction) {
	item, ok := m.store.SelectedItem()
	if !ok || item.Kind != state.ItemTask || !inTree(m.store.Current()) {
		return
	}
	if m.store.MoveTaskOrder(item.Task.ID, dir) {
		m.selectID(item.Task.ID)
	}
}

func (m Model) selectID(id string) {
	for i, item := range m.store.Items() {
		if item.ID() == id {
			m.store.Select(i)
			return
		}
	}
}

// leaveDetail pops a detail view whose task just left the visible set.
func (m Model) leaveDetail(taskID string) {
	if dv, ok := m.store.Current().(state.DetailView); ok && dv.TaskID == taskID {
		m.store.Pop()
	}
}

func (m Model) confirmDelete() Model {
	var item state.Item
	if selected, ok := m.store.SelectedItem(); ok {
		item = selected
	} else if t, ok := m.focusedTask(); ok {
		item = state.Item{Kind: state.ItemTask, Task: t}
	} else {
		return m
	}
	if item.Kind == state.ItemProject && item.Project.IsInbox {
		m.store.ShowToast("The inbox cannot be deleted")
		return m
	}
	m.pending = &item
	m.mode = modeConfirm
	return m
}

func (m Model) updateDeleteConfirm(key string) Model {
	switch key {
	case "y", "Y":
		if m.pending != nil {
			m.deleteItem(*m.pending)
		}
	case "n", "N", m.cfg.Keys.Cancel:
		m.store.ShowToast("Delete cancelled")
	default:
		return m
	}
	m.pending = nil
	m.mode = modeList
	return m
}

func (m Model) deleteItem(item state.Item) {
	switch item.Kind {
	case state.ItemTask:
		if m.store.DeleteTask(item.Task.ID) {
			m.leaveDetail(item.Task.ID)
		}
	case state.ItemProject:
		m.store.DeleteProject(item.Project.Slug)
	case state.ItemTemplate:
		m.store.DeleteTemplate(item.Template.Name)
	}
	m.store.MoveSelection(0)
}

func deletePrompt(item state.Item) string {
	switch item.Kind {
	case state.ItemProject:
		return fmt.Sprintf("Delete project %q and all its tasks? y/n", item.Project.Name)
	case state.ItemTemplate:
		return fmt.Sprintf("Delete template %q? y/n", item.Template.Name)
	default:
		return fmt.Sprintf("Delete %q? y/n", item.Task.Content)
	}
}

func (m Model) updateSettings(key string) Model {
	switch key {
	case m.cfg.Keys.Back, m.cfg.Keys.Cancel, m.cfg.Keys.Quit:
		m.store.ToggleSettings()
	case "w":
		show := !m.store.Settings().General.ShowWelcome
		m.store.UpdateSettings(state.SettingsPatch{ShowWelcome: &show})
	}
	return m
}

var placeholders = map[state.Purpose]string{
	state.PurposeTask:    "New task (project: text, !due, @scheduled, !every week)",
	state.PurposeCommand: "Command (help lists them)",
	state.PurposeSearch:  "Search tasks",
	state.PurposeJournal: "Journal entry",
	state.PurposeEdit:    "Task text",
	state.PurposeNotes:   "Notes (markdown)",
}

func (m Model) openInput(p state.Purpose, taskID, value string) (Model, tea.Cmd) {
	m.mode = modeInput
	m.purpose = p
	m.editID = taskID
	m.indent = 0
	m.input.Placeholder = placeholders[p]
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) closeInput() Model {
	m.mode = modeList
	m.editID = ""
	m.indent = 0
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Cancel:
		return m.closeInput(), nil
	case k.Confirm:
		sub := state.Submission{
			Text:    m.input.Value(),
			Purpose: m.purpose,
			TaskID:  m.editID,
			Indent:  m.indent,
		}
		m = m.closeInput()
		m.store.Submit(sub)
		return m, nil
	case k.Indent:
		if s := m.suggestions(); len(s) > 0 {
			m.completeCommand(s[0])
		} else if m.purpose == state.PurposeTask {
			m.indent = min(m.indent+1, maxIndent)
		}
		return m, nil
	case k.Outdent:
		if m.purpose == state.PurposeTask {
			m.indent = max(m.indent-1, 0)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commandText returns the typed command line when the input holds one.
func (m Model) commandText() (string, bool) {
	value := m.input.Value()
	if m.purpose == state.PurposeCommand {
		return value, true
	}
	if m.purpose != state.PurposeTask {
		return "", false
	}
	for _, prefix := range []string{">", "/"} {
		if rest, ok := strings.CutPrefix(value, prefix); ok {
			return strings.TrimLeft(rest, " "), true
		}
	}
	return "", false
}

// suggestions lists matching commands while the first word is typed.
func (m Model) suggestions() []state.CommandDef {
	text, ok := m.commandText()
	if !ok || strings.Contains(text, " ") {
		return nil
	}
	return state.FilterCommands(text)
}

func (m *Model) completeCommand(c state.CommandDef) {
	value := c.Name + " "
	if m.purpose == state.PurposeTask {
		value = "> " + value
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
}
