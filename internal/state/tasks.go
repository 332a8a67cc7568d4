package state

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"visor/internal/dates"
	"visor/internal/input"
)

// AddOptions controls where AddTask puts a new task.
type AddOptions struct {
	// Project is a project id or slug. Unknown slugs create a project.
	// Empty means the current project context.
	Project string
	// Indent is the requested nesting level while typing.
	Indent int
}

// AddTask parses content for date annotations and appends a new task to the
// target project. It returns false when there is nothing to add.
func (s *Store) AddTask(content string, opts AddOptions) (Task, bool) {
	info := input.ParseDueDate(content, s.now())
	if info.Content == "" {
		s.ShowToast("Task is empty")
		return Task{}, false
	}

	projectID := s.CurrentProjectID()
	var created *Project
	if opts.Project != "" {
		if p, ok := s.projects[opts.Project]; ok {
			projectID = p.ID
		} else if p, isNew := s.ensureProject(opts.Project); p != nil {
			projectID = p.ID
			if isNew {
				c := p.clone()
				created = &c
				s.ShowToast(fmt.Sprintf("Created project %q", p.Name))
			}
		}
	}
	project, ok := s.projects[projectID]
	if !ok {
		return Task{}, false
	}

	indent := max(opts.Indent, 0)
	parentID := ""
	if tv, ok := s.Current().(ThreadView); ok {
		if anchor, ok := s.activeTask(tv.ParentTaskID); ok && anchor.ProjectID == projectID {
			parentID = anchor.ID
			if indent == 0 {
				indent = anchor.Indent + 1
			}
		}
	}
	if parentID == "" && indent > 0 {
		for i := len(project.TaskOrder) - 1; i >= 0; i-- {
			t, ok := s.activeTask(project.TaskOrder[i])
			if ok && t.Indent == indent-1 {
				parentID = t.ID
				break
			}
		}
	}

	task := &Task{
		ID:         s.newID(),
		Content:    info.Content,
		Status:     StatusTodo,
		ProjectID:  projectID,
		ParentID:   parentID,
		Indent:     indent,
		CreatedAt:  s.now(),
		DueAt:      info.DueAt,
		Scheduled:  info.Scheduled,
		Recurrence: info.Recurrence,
	}
	position := len(project.TaskOrder)
	s.tasks[task.ID] = task
	project.TaskOrder = append(project.TaskOrder, task.ID)

	s.record(&taskCreated{task: *task, position: position, project: created})
	return *task, true
}

// Task returns the task with id, archived or not.
func (s *Store) Task(id string) (Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

func (s *Store) activeTask(id string) (*Task, bool) {
	t, ok := s.tasks[id]
	if !ok || t.Archived {
		return nil, false
	}
	return t, true
}

// effectiveParent resolves t's parent for display. Dangling, archived or
// cross-project parents count as no parent.
func (s *Store) effectiveParent(t *Task) string {
	if t.ParentID == "" || t.ParentID == t.ID {
		return ""
	}
	p, ok := s.activeTask(t.ParentID)
	if !ok || p.ProjectID != t.ProjectID {
		return ""
	}
	return p.ID
}

type statusFields struct {
	status      Status
	completedAt *time.Time
}

func fieldsOf(t *Task) statusFields {
	return statusFields{status: t.Status, completedAt: t.CompletedAt}
}

func (f statusFields) apply(t *Task) {
	t.Status = f.status
	t.Completed = f.status.IsCompleted()
	t.CompletedAt = f.completedAt
}

// setStatus is the only place a task's status changes outside of undo.
func (s *Store) setStatus(t *Task, status Status) {
	t.Status = status
	t.Completed = status.IsCompleted()
	if status == StatusDone {
		now := s.now()
		t.CompletedAt = &now
	}
}

// CycleTaskStatus advances the task through StatusOrder.
func (s *Store) CycleTaskStatus(id string) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	before := fieldsOf(t)
	s.setStatus(t, t.Status.Next())
	s.record(&statusChanged{id: id, before: before, after: fieldsOf(t)})
	return true
}

// ToggleComplete flips a task between DONE and TODO.
func (s *Store) ToggleComplete(id string) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	before := fieldsOf(t)
	if t.Completed {
		s.setStatus(t, StatusTodo)
		t.CompletedAt = nil
	} else {
		s.setStatus(t, StatusDone)
	}
	s.record(&completionToggled{id: id, previous: before.status.IsCompleted(), before: before, after: fieldsOf(t)})
	return true
}

// ArchiveTask hides a task from every active view. It stays in the
// project's order so undo can bring it back in place.
func (s *Store) ArchiveTask(id string) bool {
	t, ok := s.tasks[id]
	if !ok || t.Archived {
		return false
	}
	before := *t
	t.Archived = true
	s.record(&taskArchived{before: before})
	return true
}

// DeleteTask removes a task from the store and from its project's order.
func (s *Store) DeleteTask(id string) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	before := *t
	position := s.removeTask(id)
	s.record(&taskDeleted{before: before, position: position})
	return true
}

// removeTask deletes id and returns its former index in the project order,
// or -1 when it was not ordered.
func (s *Store) removeTask(id string) int {
	t, ok := s.tasks[id]
	if !ok {
		return -1
	}
	delete(s.tasks, id)
	p, ok := s.projects[t.ProjectID]
	if !ok {
		return -1
	}
	for i, tid := range p.TaskOrder {
		if tid == id {
			p.TaskOrder = append(p.TaskOrder[:i:i], p.TaskOrder[i+1:]...)
			return i
		}
	}
	return -1
}

// insertTask restores a task snapshot at position in its project's order.
func (s *Store) insertTask(t Task, position int) bool {
	p, ok := s.projects[t.ProjectID]
	if !ok {
		return false
	}
	task := t
	s.tasks[t.ID] = &task
	for _, tid := range p.TaskOrder {
		if tid == t.ID {
			return true
		}
	}
	if position < 0 || position > len(p.TaskOrder) {
		position = len(p.TaskOrder)
	}
	order := make([]string, 0, len(p.TaskOrder)+1)
	order = append(order, p.TaskOrder[:position]...)
	order = append(order, t.ID)
	order = append(order, p.TaskOrder[position:]...)
	p.TaskOrder = order
	return true
}

// TaskPatch is a partial update. Pointer fields are applied when non-nil;
// the Set* flags apply the matching optional field, nil clearing it.
type TaskPatch struct {
	Content *string
	Status  *Status
	Notes   *string

	SetDue        bool
	DueAt         *time.Time
	SetScheduled  bool
	Scheduled     *time.Time
	SetRecurrence bool
	Recurrence    *dates.Recurrence
}

// UpdateTask applies p. Status changes follow the same rule as
// CycleTaskStatus. The edit is undoable.
func (s *Store) UpdateTask(id string, p TaskPatch) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	before := *t
	if p.Content != nil {
		if c := strings.TrimSpace(*p.Content); c != "" {
			t.Content = c
		}
	}
	if p.Notes != nil {
		t.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.SetDue {
		t.DueAt = p.DueAt
	}
	if p.SetScheduled {
		t.Scheduled = p.Scheduled
	}
	if p.SetRecurrence {
		t.Recurrence = p.Recurrence
	}
	if p.Status != nil && p.Status.IsValid() {
		s.setStatus(t, *p.Status)
	}
	s.record(&taskEdited{before: before, after: *t})
	return true
}

// MoveTaskOrder swaps a task with its neighbour in the project order. It is
// a no-op at either end.
func (s *Store) MoveTaskOrder(id string, dir Direction) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	if !s.swap(t.ProjectID, id, dir) {
		return false
	}
	s.record(&taskMoved{projectID: t.ProjectID, id: id, dir: dir})
	return true
}

func (s *Store) swap(projectID, id string, dir Direction) bool {
	p, ok := s.projects[projectID]
	if !ok {
		return false
	}
	idx := -1
	for i, tid := range p.TaskOrder {
		if tid == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	other := idx + int(dir)
	if other < 0 || other >= len(p.TaskOrder) {
		return false
	}
	p.TaskOrder[idx], p.TaskOrder[other] = p.TaskOrder[other], p.TaskOrder[idx]
	return true
}

// ProjectTasks returns the project's non-archived tasks in order, filtered
// by parent.
func (s *Store) ProjectTasks(projectID string, f ParentFilter) []Task {
	p, ok := s.projects[projectID]
	if !ok {
		return nil
	}
	var out []Task
	for _, id := range p.TaskOrder {
		t, ok := s.activeTask(id)
		if !ok {
			continue
		}
		switch f.mode {
		case topLevel:
			if s.effectiveParent(t) != "" {
				continue
			}
		case childrenOf:
			if s.effectiveParent(t) != f.id {
				continue
			}
		}
		out = append(out, *t)
	}
	return out
}

// HasChildren reports whether any active task lists id as its parent.
func (s *Store) HasChildren(id string) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	return len(s.ProjectTasks(t.ProjectID, ChildrenOf(id))) > 0
}

// EditText renders a task back into the text the input overlay would need
// to recreate its content and deadline.
func (s *Store) EditText(id string) string {
	t, ok := s.tasks[id]
	if !ok {
		return ""
	}
	if t.DueAt == nil {
		return t.Content
	}
	return t.Content + " !" + dates.Token(*t.DueAt, s.now())
}

// activeTasks returns every non-archived task, oldest first.
func (s *Store) activeTasks() []*Task {
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Archived {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
