package state

import (
	"fmt"
	"log"
)

// undoAction is one reversible mutation. Each variant carries everything
// needed to apply it in both directions. The returned message is shown as
// a toast; false means the record no longer applies to the current data.
type undoAction interface {
	undo(s *Store) (string, bool)
	redo(s *Store) (string, bool)
}

// record pushes a new mutation onto the undo stack and discards the redo
// history.
func (s *Store) record(a undoAction) {
	s.undo = append(s.undo, a)
	if len(s.undo) > MaxUndo {
		s.undo = append([]undoAction(nil), s.undo[len(s.undo)-MaxUndo:]...)
	}
	s.redo = nil
	s.changed()
}

func (s *Store) CanUndo() bool { return len(s.undo) > 0 }

func (s *Store) CanRedo() bool { return len(s.redo) > 0 }

// Undo reverts the most recent mutation.
func (s *Store) Undo() bool {
	if len(s.undo) == 0 {
		s.ShowToast("Nothing to undo")
		return false
	}
	a := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	msg, ok := a.undo(s)
	if !ok {
		log.Printf("[state] discarded stale undo record %T", a)
		s.ShowToast("Nothing to undo: item no longer exists")
		return false
	}
	s.redo = append(s.redo, a)
	s.clampSelection()
	s.changed()
	s.ShowToast(msg)
	return true
}

// Redo re-applies the most recently undone mutation.
func (s *Store) Redo() bool {
	if len(s.redo) == 0 {
		s.ShowToast("Nothing to redo")
		return false
	}
	a := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	msg, ok := a.redo(s)
	if !ok {
		log.Printf("[state] discarded stale redo record %T", a)
		s.ShowToast("Nothing to redo: item no longer exists")
		return false
	}
	s.undo = append(s.undo, a)
	s.clampSelection()
	s.changed()
	s.ShowToast(msg)
	return true
}

type taskCreated struct {
	task     Task
	position int
	// project is set when the add created its target project.
	project *Project
}

func (a *taskCreated) undo(s *Store) (string, bool) {
	if _, ok := s.tasks[a.task.ID]; !ok {
		return "", false
	}
	s.removeTask(a.task.ID)
	if a.project != nil {
		if p, ok := s.projects[a.project.ID]; ok && len(p.TaskOrder) == 0 {
			delete(s.projects, p.ID)
		}
	}
	return "Removed: " + a.task.Content, true
}

func (a *taskCreated) redo(s *Store) (string, bool) {
	if a.project != nil {
		if _, ok := s.projects[a.project.ID]; !ok {
			if s.projectBySlug(a.project.Slug) != nil {
				return "", false
			}
			p := a.project.clone()
			s.projects[p.ID] = &p
		}
	}
	if !s.insertTask(a.task, a.position) {
		return "", false
	}
	return "Redone: " + a.task.Content, true
}

type statusChanged struct {
	id            string
	before, after statusFields
}

func (a *statusChanged) undo(s *Store) (string, bool) {
	t, ok := s.tasks[a.id]
	if !ok {
		return "", false
	}
	a.before.apply(t)
	return fmt.Sprintf("Status reverted: %s is %s", t.Content, t.Status), true
}

func (a *statusChanged) redo(s *Store) (string, bool) {
	t, ok := s.tasks[a.id]
	if !ok {
		return "", false
	}
	a.after.apply(t)
	return fmt.Sprintf("Redone: %s is %s", t.Content, t.Status), true
}

type completionToggled struct {
	id            string
	previous      bool
	before, after statusFields
}

func (a *completionToggled) undo(s *Store) (string, bool) {
	t, ok := s.tasks[a.id]
	if !ok {
		return "", false
	}
	a.before.apply(t)
	if a.previous {
		return "Undone: marked complete again: " + t.Content, true
	}
	return "Undone: marked incomplete again: " + t.Content, true
}

func (a *completionToggled) redo(s *Store) (string, bool) {
	t, ok := s.tasks[a.id]
	if !ok {
		return "", false
	}
	a.after.apply(t)
	return "Redone: " + t.Content, true
}

type taskArchived struct {
	before Task
}

func (a *taskArchived) undo(s *Store) (string, bool) {
	t, ok := s.tasks[a.before.ID]
	if !ok {
		return "", false
	}
	*t = a.before
	return "Restored: " + t.Content, true
}

func (a *taskArchived) redo(s *Store) (string, bool) {
	t, ok := s.tasks[a.before.ID]
	if !ok {
		return "", false
	}
	*t = a.before
	t.Archived = true
	return "Redone: archived " + t.Content, true
}

type taskDeleted struct {
	before   Task
	position int
}

func (a *taskDeleted) undo(s *Store) (string, bool) {
	if _, exists := s.tasks[a.before.ID]; exists {
		return "", false
	}
	if a.position < 0 {
		if _, ok := s.projects[a.before.ProjectID]; !ok {
			return "", false
		}
		t := a.before
		s.tasks[t.ID] = &t
	} else if !s.insertTask(a.before, a.position) {
		return "", false
	}
	return "Restored: " + a.before.Content, true
}

func (a *taskDeleted) redo(s *Store) (string, bool) {
	if _, ok := s.tasks[a.before.ID]; !ok {
		return "", false
	}
	s.removeTask(a.before.ID)
	return "Redone: deleted " + a.before.Content, true
}

type taskEdited struct {
	before, after Task
}

func (a *taskEdited) undo(s *Store) (string, bool) {
	t, ok := s.tasks[a.before.ID]
	if !ok {
		return "", false
	}
	*t = a.before
	return "Undone: edit of " + t.Content, true
}

func (a *taskEdited) redo(s *Store) (string, bool) {
	t, ok := s.tasks[a.after.ID]
	if !ok {
		return "", false
	}
	*t = a.after
	return "Redone: edit of " + t.Content, true
}

type taskMoved struct {
	projectID string
	id        string
	dir       Direction
}

func (a *taskMoved) undo(s *Store) (string, bool) {
	if !s.swap(a.projectID, a.id, -a.dir) {
		return "", false
	}
	return "Undone: move", true
}

func (a *taskMoved) redo(s *Store) (string, bool) {
	if !s.swap(a.projectID, a.id, a.dir) {
		return "", false
	}
	return "Redone: move", true
}

type projectCreated struct {
	project Project
}

func (a *projectCreated) undo(s *Store) (string, bool) {
	p, ok := s.projects[a.project.ID]
	if !ok || len(p.TaskOrder) > 0 {
		return "", false
	}
	delete(s.projects, p.ID)
	return "Removed: project " + p.Name, true
}

func (a *projectCreated) redo(s *Store) (string, bool) {
	if _, ok := s.projects[a.project.ID]; ok || s.projectBySlug(a.project.Slug) != nil {
		return "", false
	}
	p := a.project.clone()
	s.projects[p.ID] = &p
	return "Redone: project " + p.Name, true
}

type projectDeleted struct {
	project Project
	tasks   []Task
}

func (a *projectDeleted) undo(s *Store) (string, bool) {
	if _, ok := s.projects[a.project.ID]; ok || s.projectBySlug(a.project.Slug) != nil {
		return "", false
	}
	p := a.project.clone()
	s.projects[p.ID] = &p
	for _, t := range a.tasks {
		t := t
		s.tasks[t.ID] = &t
	}
	return "Restored: project " + p.Name, true
}

func (a *projectDeleted) redo(s *Store) (string, bool) {
	if _, ok := s.projects[a.project.ID]; !ok {
		return "", false
	}
	s.dropProject(a.project.ID)
	s.ResetHome()
	return "Redone: deleted project " + a.project.Name, true
}

type templateSaved struct {
	template Template
	// replaced is the template of the same name that the save overwrote.
	replaced *Template
	index    int
}

func (a *templateSaved) undo(s *Store) (string, bool) {
	i := s.templateIndex(a.template.ID)
	if i < 0 {
		return "", false
	}
	if a.replaced != nil {
		s.templates[i] = *a.replaced
	} else {
		s.templates = append(s.templates[:i:i], s.templates[i+1:]...)
	}
	return "Removed: template " + a.template.Name, true
}

func (a *templateSaved) redo(s *Store) (string, bool) {
	if a.replaced != nil {
		i := s.templateIndex(a.replaced.ID)
		if i < 0 {
			return "", false
		}
		s.templates[i] = a.template
	} else {
		if s.templateIndex(a.template.ID) >= 0 {
			return "", false
		}
		s.templates = insertTemplate(s.templates, a.index, a.template)
	}
	return "Redone: template " + a.template.Name, true
}

type templateDeleted struct {
	template Template
	index    int
}

func (a *templateDeleted) undo(s *Store) (string, bool) {
	if s.templateIndex(a.template.ID) >= 0 {
		return "", false
	}
	s.templates = insertTemplate(s.templates, a.index, a.template)
	return "Restored: template " + a.template.Name, true
}

func (a *templateDeleted) redo(s *Store) (string, bool) {
	i := s.templateIndex(a.template.ID)
	if i < 0 {
		return "", false
	}
	s.templates = append(s.templates[:i:i], s.templates[i+1:]...)
	return "Redone: deleted template " + a.template.Name, true
}
