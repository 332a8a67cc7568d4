package state

import "fmt"

// Push makes v the current view.
func (s *Store) Push(v View) {
	s.stack = append(s.stack, v)
	s.selected = 0
	s.direction = Forward
	s.changed()
}

// Pop returns to the previous view. The home floor is never popped.
func (s *Store) Pop() bool {
	if len(s.stack) <= 1 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.selected = 0
	s.direction = Backward
	s.changed()
	return true
}

// Current returns the top of the stack.
func (s *Store) Current() View {
	return s.stack[len(s.stack)-1]
}

// Stack returns a copy of the navigation stack, bottom first.
func (s *Store) Stack() []View {
	return append([]View(nil), s.stack...)
}

// Direction reports whether the last navigation went deeper or back.
func (s *Store) Direction() NavDirection {
	return s.direction
}

// ResetHome collapses the stack to the home floor.
func (s *Store) ResetHome() {
	s.stack = []View{HomeView{}}
	s.selected = 0
	s.direction = Backward
	s.changed()
}

// CurrentProjectID is the project of the nearest project-scoped view, or
// the inbox when there is none.
func (s *Store) CurrentProjectID() string {
	for i := len(s.stack) - 1; i >= 0; i-- {
		id := viewProject(s.stack[i])
		if id == "" {
			continue
		}
		if _, ok := s.projects[id]; ok {
			return id
		}
	}
	return s.inboxID()
}

// JumpTo rebuilds the stack so that the task is visible inside its thread
// and selects it.
func (s *Store) JumpTo(taskID string) bool {
	t, ok := s.tasks[taskID]
	if !ok {
		s.ShowToast("Task not found")
		return false
	}
	if _, ok := s.projects[t.ProjectID]; !ok {
		s.ShowToast("Task not found")
		return false
	}

	var ancestors []string
	seen := map[string]bool{t.ID: true}
	for cur := t; ; {
		pid := s.effectiveParent(cur)
		if pid == "" || seen[pid] {
			break
		}
		seen[pid] = true
		ancestors = append([]string{pid}, ancestors...)
		cur = s.tasks[pid]
	}

	stack := []View{HomeView{}, ProjectView{ProjectID: t.ProjectID}}
	for _, id := range ancestors {
		stack = append(stack, ThreadView{ProjectID: t.ProjectID, ParentTaskID: id})
	}
	s.stack = stack
	s.direction = Forward
	s.selected = 0
	for i, item := range s.Items() {
		if item.Kind == ItemTask && item.Task.ID == taskID {
			s.selected = i
			break
		}
	}
	s.changed()
	return true
}

// Selected is the index of the highlighted item.
func (s *Store) Selected() int {
	return s.selected
}

// Select highlights item i, clamped to the current items.
func (s *Store) Select(i int) {
	s.selected = clamp(i, len(s.Items()))
}

// MoveSelection shifts the highlight by delta, clamped to the current items.
func (s *Store) MoveSelection(delta int) {
	s.Select(s.selected + delta)
}

// SelectedItem returns the highlighted item, if the view has any.
func (s *Store) SelectedItem() (Item, bool) {
	items := s.Items()
	if s.selected < 0 || s.selected >= len(items) {
		return Item{}, false
	}
	return items[s.selected], true
}

func (s *Store) clampSelection() {
	s.selected = clamp(s.selected, len(s.Items()))
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Items resolves the selectable rows of the current view.
func (s *Store) Items() []Item {
	vis := itemsVisitor{s: s}
	s.Current().Accept(&vis)
	return vis.items
}

type itemsVisitor struct {
	s     *Store
	items []Item
}

func (v *itemsVisitor) tasks(tasks []Task) {
	for _, t := range tasks {
		v.items = append(v.items, Item{Kind: ItemTask, Task: t})
	}
}

func (v *itemsVisitor) Home(HomeView) {
	b := v.s.Agenda()
	v.tasks(b.Doing)
	v.tasks(b.Overdue)
	v.tasks(b.Today)
	for _, p := range v.s.Projects() {
		v.items = append(v.items, Item{Kind: ItemProject, Project: p})
	}
}

func (v *itemsVisitor) Agenda(AgendaView) { v.tasks(v.s.Agenda().All()) }

func (v *itemsVisitor) Project(pv ProjectView) {
	v.tasks(v.s.ProjectTasks(pv.ProjectID, TopLevel()))
}

func (v *itemsVisitor) Thread(tv ThreadView) {
	v.tasks(v.s.ProjectTasks(tv.ProjectID, ChildrenOf(tv.ParentTaskID)))
}

func (v *itemsVisitor) Templates(TemplatesView) {
	for _, t := range v.s.templates {
		v.items = append(v.items, Item{Kind: ItemTemplate, Template: t})
	}
}

func (v *itemsVisitor) Search(sv SearchView) { v.tasks(v.s.Search(sv.Query)) }

func (v *itemsVisitor) Journal(JournalView)                 {}
func (v *itemsVisitor) Help(HelpView)                       {}
func (v *itemsVisitor) Detail(DetailView)                   {}
func (v *itemsVisitor) ProjectSettings(ProjectSettingsView) {}

// Breadcrumb names each stack entry for display.
func (s *Store) Breadcrumb() []string {
	out := make([]string, 0, len(s.stack))
	for _, v := range s.stack {
		vis := titleVisitor{s: s}
		v.Accept(&vis)
		out = append(out, vis.title)
	}
	return out
}

type titleVisitor struct {
	s     *Store
	title string
}

func (v *titleVisitor) projectName(id string) string {
	if p, ok := v.s.projects[id]; ok {
		return p.Name
	}
	return "?"
}

func (v *titleVisitor) taskContent(id string) string {
	if t, ok := v.s.tasks[id]; ok {
		return t.Content
	}
	return "?"
}

func (v *titleVisitor) Home(HomeView)           { v.title = "Home" }
func (v *titleVisitor) Agenda(AgendaView)       { v.title = "Agenda" }
func (v *titleVisitor) Templates(TemplatesView) { v.title = "Templates" }
func (v *titleVisitor) Help(HelpView)           { v.title = "Help" }
func (v *titleVisitor) Project(pv ProjectView)  { v.title = v.projectName(pv.ProjectID) }
func (v *titleVisitor) Thread(tv ThreadView)    { v.title = v.taskContent(tv.ParentTaskID) }
func (v *titleVisitor) Journal(jv JournalView) {
	v.title = fmt.Sprintf("Journal: %s", v.projectName(jv.ProjectID))
}
func (v *titleVisitor) Search(sv SearchView) { v.title = fmt.Sprintf("Search: %s", sv.Query) }
func (v *titleVisitor) Detail(dv DetailView) { v.title = v.taskContent(dv.TaskID) }
func (v *titleVisitor) ProjectSettings(pv ProjectSettingsView) {
	v.title = fmt.Sprintf("Settings: %s", v.projectName(pv.ProjectID))
}
