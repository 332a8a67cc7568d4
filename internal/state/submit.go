package state

import (
	"strings"

	"visor/internal/dates"
	"visor/internal/input"
)

// Purpose is what the input line was opened for.
type Purpose int

const (
	PurposeTask Purpose = iota
	PurposeCommand
	PurposeSearch
	PurposeJournal
	PurposeEdit
	PurposeNotes
)

// Submission is one line of text entered by the user.
type Submission struct {
	Text    string
	Purpose Purpose
	// TaskID is the task being edited for PurposeEdit and PurposeNotes.
	TaskID string
	// Indent is the nesting level chosen while typing a new task.
	Indent int
}

// Submit dispatches entered text. A leading prefix character wins over the
// purpose the input was opened with.
func (s *Store) Submit(sub Submission) {
	switch sub.Purpose {
	case PurposeEdit:
		s.submitEdit(sub.TaskID, sub.Text)
		return
	case PurposeNotes:
		notes := sub.Text
		s.UpdateTask(sub.TaskID, TaskPatch{Notes: &notes})
		return
	}

	intent := input.Parse(sub.Text)
	switch intent.Kind {
	case input.Command:
		s.Execute(intent.Payload)
		return
	case input.Search:
		s.SearchTasks(intent.Payload)
		return
	case input.Log:
		s.AddLogEntry(intent.Payload)
		return
	}

	text := strings.TrimSpace(sub.Text)
	switch sub.Purpose {
	case PurposeCommand:
		s.Execute(text)
	case PurposeSearch:
		s.SearchTasks(text)
	case PurposeJournal:
		s.AddLogEntry(text)
	default:
		if _, ok := s.AddTask(intent.Payload, AddOptions{Project: intent.Project, Indent: sub.Indent}); ok {
			s.clampSelection()
		}
	}
}

// submitEdit replaces content and deadline. Removing the deadline token
// clears the deadline; schedule and recurrence change only when given.
func (s *Store) submitEdit(id, text string) {
	t, ok := s.tasks[id]
	if !ok {
		s.ShowToast("Task not found")
		return
	}
	info := input.ParseDueDate(text, s.now())
	if info.Content == "" {
		s.ShowToast("Task is empty")
		return
	}
	p := TaskPatch{Content: &info.Content}
	// A token naming the stored day leaves the deadline untouched.
	if t.DueAt == nil || info.DueAt == nil || !dates.SameDay(*t.DueAt, *info.DueAt) {
		p.SetDue, p.DueAt = true, info.DueAt
	}
	if info.Scheduled != nil {
		p.SetScheduled, p.Scheduled = true, info.Scheduled
	}
	if info.Recurrence != nil {
		p.SetRecurrence, p.Recurrence = true, info.Recurrence
	}
	s.UpdateTask(id, p)
}
