package state

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Projects returns every project, inbox first, then by name.
func (s *Store) Projects() []Project {
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsInbox != out[j].IsInbox {
			return out[i].IsInbox
		}
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Project returns the project with id.
func (s *Store) Project(id string) (Project, bool) {
	p, ok := s.projects[id]
	if !ok {
		return Project{}, false
	}
	return p.clone(), true
}

// ProjectBySlug looks a project up by its slug, case-insensitively.
func (s *Store) ProjectBySlug(slug string) (Project, bool) {
	p := s.projectBySlug(slug)
	if p == nil {
		return Project{}, false
	}
	return p.clone(), true
}

func (s *Store) projectBySlug(slug string) *Project {
	slug = normalizeSlug(slug)
	if slug == "" {
		return nil
	}
	for _, p := range s.projects {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

func (s *Store) inboxID() string {
	if p, ok := s.projects[InboxID]; ok && p.IsInbox {
		return p.ID
	}
	for _, p := range s.projects {
		if p.IsInbox {
			return p.ID
		}
	}
	return InboxID
}

// EnsureProject returns the project with slug, creating it when missing.
// Creation is undoable.
func (s *Store) EnsureProject(slug string) (Project, bool) {
	p, created := s.ensureProject(slug)
	if p == nil {
		return Project{}, false
	}
	if created {
		s.record(&projectCreated{project: p.clone()})
	}
	return p.clone(), true
}

// ensureProject does not record undo; callers fold creation into their own
// record.
func (s *Store) ensureProject(slug string) (*Project, bool) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, false
	}
	if p := s.projectBySlug(slug); p != nil {
		return p, false
	}
	p := &Project{
		ID:        s.newID(),
		Name:      capitalize(slug),
		Slug:      slug,
		Color:     DefaultProjectColor,
		TaskOrder: []string{},
		CreatedAt: s.now(),
	}
	s.projects[p.ID] = p
	return p, true
}

// DeleteProject removes the project and all of its tasks, archived ones
// included, and resets navigation home. The inbox cannot be deleted.
func (s *Store) DeleteProject(slug string) bool {
	p := s.projectBySlug(slug)
	if p == nil {
		s.ShowToast(fmt.Sprintf("No project %q", normalizeSlug(slug)))
		return false
	}
	if p.IsInbox {
		s.ShowToast("The inbox cannot be deleted")
		return false
	}
	rec := &projectDeleted{project: p.clone()}
	for _, t := range s.tasks {
		if t.ProjectID == p.ID {
			rec.tasks = append(rec.tasks, *t)
		}
	}
	sort.Slice(rec.tasks, func(i, j int) bool { return rec.tasks[i].ID < rec.tasks[j].ID })
	s.dropProject(p.ID)
	s.ResetHome()
	s.record(rec)
	s.ShowToast(fmt.Sprintf("Deleted project %q", p.Name))
	return true
}

func (s *Store) dropProject(id string) {
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, tid)
		}
	}
	delete(s.projects, id)
}

// ProjectStats summarizes one project's active tasks.
type ProjectStats struct {
	Project   Project
	Total     int
	Pending   int
	Completed int
	// Percent is the rounded completion share, 0 when Total is 0.
	Percent int
}

// ProjectStats returns stats for every project in Projects order.
func (s *Store) ProjectStats() []ProjectStats {
	projects := s.Projects()
	out := make([]ProjectStats, 0, len(projects))
	for _, p := range projects {
		st := ProjectStats{Project: p}
		for _, t := range s.tasks {
			if t.ProjectID != p.ID || t.Archived {
				continue
			}
			st.Total++
			if t.Completed {
				st.Completed++
			} else {
				st.Pending++
			}
		}
		if st.Total > 0 {
			st.Percent = int(math.Round(float64(st.Completed) * 100 / float64(st.Total)))
		}
		out = append(out, st)
	}
	return out
}
