package state

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
)

// snapshot is the persisted blob. Tasks and projects are keyed by id.
type snapshot struct {
	Tasks      map[string]Task    `json:"tasks"`
	Projects   map[string]Project `json:"projects"`
	LogEntries []LogEntry         `json:"logEntries"`
	Settings   *Settings          `json:"settings,omitempty"`
	Templates  []Template         `json:"templates"`
	ViewStack  []viewRecord       `json:"viewStack,omitempty"`

	// Written by the first version, which kept only a project stack.
	ContextStack []string `json:"contextStack,omitempty"`
}

// Snapshot encodes the data, settings and navigation stack.
func (s *Store) Snapshot() ([]byte, error) {
	snap := snapshot{
		Tasks:      make(map[string]Task, len(s.tasks)),
		Projects:   make(map[string]Project, len(s.projects)),
		LogEntries: append([]LogEntry{}, s.logEntries...),
		Templates:  append([]Template{}, s.templates...),
	}
	settings := s.settings
	snap.Settings = &settings
	for id, t := range s.tasks {
		snap.Tasks[id] = *t
	}
	for id, p := range s.projects {
		snap.Projects[id] = p.clone()
	}
	for _, v := range s.stack {
		snap.ViewStack = append(snap.ViewStack, encodeView(v))
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Load replaces the whole store with blob. An empty blob yields a fresh
// store holding only the inbox. On a decode error the store is unchanged.
func (s *Store) Load(blob []byte) error {
	if len(blob) == 0 || string(blob) == "null" {
		s.reset()
		s.changed()
		return nil
	}
	defaults := DefaultSettings()
	snap := snapshot{Settings: &defaults}
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	s.reset()
	s.projects = map[string]*Project{}
	s.applyData(snap)
	if snap.Settings != nil {
		s.settings = mergeSettings(*snap.Settings)
	}
	s.stack = s.restoreStack(snap)
	s.changed()
	return nil
}

// ReloadData replaces only the data collections with those of blob. The
// navigation stack, settings and history are kept; the selection is
// clamped to the new items.
func (s *Store) ReloadData(blob []byte) error {
	if len(blob) == 0 || string(blob) == "null" {
		return nil
	}
	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	s.tasks = map[string]*Task{}
	s.projects = map[string]*Project{}
	s.logEntries = nil
	s.templates = nil
	s.applyData(snap)
	s.clampSelection()
	return nil
}

func mergeSettings(in Settings) Settings {
	out := in
	if out.Keybindings.ToggleVisor == "" {
		out.Keybindings.ToggleVisor = DefaultSettings().Keybindings.ToggleVisor
	}
	return out
}

// applyData installs the collections of snap into an emptied store and
// repairs every invariant the blob may violate.
func (s *Store) applyData(snap snapshot) {
	s.loadProjects(snap.Projects)
	s.ensureInbox()
	inbox := s.inboxID()

	for id, t := range snap.Tasks {
		t := t
		if t.ID == "" {
			t.ID = id
		}
		if !t.Status.IsValid() {
			if t.Completed {
				t.Status = StatusDone
			} else {
				t.Status = StatusTodo
			}
		}
		t.Completed = t.Status.IsCompleted()
		if t.Indent < 0 {
			t.Indent = 0
		}
		if to, ok := s.merged[t.ProjectID]; ok {
			t.ProjectID = to
		}
		if _, ok := s.projects[t.ProjectID]; !ok {
			if t.ProjectID != "" {
				log.Printf("[state] task %s references missing project %s, moved to inbox", t.ID, t.ProjectID)
			}
			t.ProjectID = inbox
		}
		s.tasks[t.ID] = &t
	}
	s.merged = nil
	s.sanitizeOrders()

	s.logEntries = append([]LogEntry(nil), snap.LogEntries...)
	for i := range s.logEntries {
		if _, ok := s.projects[s.logEntries[i].ProjectID]; !ok {
			s.logEntries[i].ProjectID = inbox
		}
	}
	s.templates = append([]Template(nil), snap.Templates...)
}

// loadProjects keeps one project per slug: the earliest created, ties
// broken by id. Tasks of dropped duplicates are folded into the survivor.
func (s *Store) loadProjects(in map[string]Project) {
	list := make([]Project, 0, len(in))
	for id, p := range in {
		if p.ID == "" {
			p.ID = id
		}
		p.Slug = normalizeSlug(p.Slug)
		if p.Slug == "" {
			p.Slug = normalizeSlug(p.Name)
		}
		if p.Slug == "" {
			p.Slug = p.ID
		}
		if p.Name == "" {
			p.Name = capitalize(p.Slug)
		}
		list = append(list, p.clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})

	bySlug := map[string]*Project{}
	s.merged = map[string]string{}
	hasInbox := false
	for _, p := range list {
		p := p
		if keep, dup := bySlug[p.Slug]; dup {
			log.Printf("[state] dropped duplicate project %s (slug %q)", p.ID, p.Slug)
			keep.TaskOrder = append(keep.TaskOrder, p.TaskOrder...)
			if p.IsInbox && !hasInbox {
				keep.IsInbox, hasInbox = true, true
			}
			s.merged[p.ID] = keep.ID
			continue
		}
		if p.IsInbox {
			if hasInbox {
				p.IsInbox = false
			}
			hasInbox = true
		}
		bySlug[p.Slug] = &p
		s.projects[p.ID] = &p
	}
}

// sanitizeOrders makes every taskOrder hold each of its project's tasks
// exactly once. Unordered tasks are appended oldest first.
func (s *Store) sanitizeOrders() {
	placed := map[string]bool{}
	for _, p := range s.projects {
		order := make([]string, 0, len(p.TaskOrder))
		for _, id := range p.TaskOrder {
			t, ok := s.tasks[id]
			if !ok || t.ProjectID != p.ID || placed[id] {
				continue
			}
			placed[id] = true
			order = append(order, id)
		}
		p.TaskOrder = order
	}
	var rest []*Task
	for id, t := range s.tasks {
		if !placed[id] {
			rest = append(rest, t)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if !rest[i].CreatedAt.Equal(rest[j].CreatedAt) {
			return rest[i].CreatedAt.Before(rest[j].CreatedAt)
		}
		return rest[i].ID < rest[j].ID
	})
	for _, t := range rest {
		p := s.projects[t.ProjectID]
		p.TaskOrder = append(p.TaskOrder, t.ID)
	}
}

func (s *Store) restoreStack(snap snapshot) []View {
	stack := []View{HomeView{}}
	switch {
	case len(snap.ViewStack) > 0:
		for _, rec := range snap.ViewStack {
			v, ok := decodeView(rec)
			if !ok || !s.viewValid(v) {
				continue
			}
			if _, home := v.(HomeView); home && len(stack) == 1 {
				continue
			}
			stack = append(stack, v)
		}
	case len(snap.ContextStack) > 0:
		last := snap.ContextStack[len(snap.ContextStack)-1]
		if _, ok := s.projects[last]; ok {
			stack = append(stack, ProjectView{ProjectID: last})
		}
	}
	return stack
}
