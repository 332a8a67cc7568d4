package state

import (
	"fmt"
	"strings"
)

// Templates returns saved templates in creation order.
func (s *Store) Templates() []Template {
	return append([]Template(nil), s.templates...)
}

// TemplateByName matches names case-insensitively.
func (s *Store) TemplateByName(name string) (Template, bool) {
	if i := s.templateByName(name); i >= 0 {
		return s.templates[i], true
	}
	return Template{}, false
}

func (s *Store) templateByName(name string) int {
	name = strings.TrimSpace(name)
	for i, t := range s.templates {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return -1
}

func (s *Store) templateIndex(id string) int {
	for i, t := range s.templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func insertTemplate(list []Template, i int, t Template) []Template {
	if i < 0 || i > len(list) {
		i = len(list)
	}
	out := make([]Template, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, t)
	return append(out, list[i:]...)
}

// SaveTemplate captures the current project's active tasks under name. A
// template with the same name is replaced in place.
func (s *Store) SaveTemplate(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		s.ShowToast("Template name required")
		return false
	}
	tasks := s.ProjectTasks(s.CurrentProjectID(), AnyParent())
	if len(tasks) == 0 {
		s.ShowToast("No tasks to save")
		return false
	}
	tpl := Template{ID: s.newID(), Name: name, CreatedAt: s.now()}
	for _, t := range tasks {
		tpl.Tasks = append(tpl.Tasks, TemplateTask{Content: t.Content, Indent: t.Indent})
	}

	rec := &templateSaved{template: tpl, index: len(s.templates)}
	if i := s.templateByName(name); i >= 0 {
		old := s.templates[i]
		rec.replaced = &old
		rec.index = i
		s.templates[i] = tpl
	} else {
		s.templates = append(s.templates, tpl)
	}
	s.record(rec)
	s.ShowToast(fmt.Sprintf("Saved template %q (%d tasks)", name, len(tpl.Tasks)))
	return true
}

// ApplyTemplate adds every entry of the named template to the current
// project. Each added task is its own undo step.
func (s *Store) ApplyTemplate(name string) bool {
	i := s.templateByName(name)
	if i < 0 {
		s.ShowToast(fmt.Sprintf("No template %q", strings.TrimSpace(name)))
		return false
	}
	tpl := s.templates[i]
	projectID := s.CurrentProjectID()
	added := 0
	for _, entry := range tpl.Tasks {
		if _, ok := s.AddTask(entry.Content, AddOptions{Project: projectID, Indent: entry.Indent}); ok {
			added++
		}
	}
	s.ShowToast(fmt.Sprintf("Applied template %q (%d tasks)", tpl.Name, added))
	return added > 0
}

// DeleteTemplate removes the named template.
func (s *Store) DeleteTemplate(name string) bool {
	i := s.templateByName(name)
	if i < 0 {
		s.ShowToast(fmt.Sprintf("No template %q", strings.TrimSpace(name)))
		return false
	}
	tpl := s.templates[i]
	s.templates = append(s.templates[:i:i], s.templates[i+1:]...)
	s.record(&templateDeleted{template: tpl, index: i})
	s.clampSelection()
	s.ShowToast(fmt.Sprintf("Deleted template %q", tpl.Name))
	return true
}
