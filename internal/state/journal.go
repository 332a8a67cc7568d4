package state

import (
	"sort"
	"strings"
)

// AddLogEntry appends a journal line to the current project context.
// Journal entries are immutable and not undoable.
func (s *Store) AddLogEntry(content string) (LogEntry, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		s.ShowToast("Journal entry is empty")
		return LogEntry{}, false
	}
	e := LogEntry{
		ID:        s.newID(),
		Content:   content,
		CreatedAt: s.now(),
		ProjectID: s.CurrentProjectID(),
	}
	s.logEntries = append(s.logEntries, e)
	s.changed()
	s.ShowToast("Logged")
	return e, true
}

// JournalEntries returns the project's entries, newest first. An empty
// projectID returns every entry.
func (s *Store) JournalEntries(projectID string) []LogEntry {
	var out []LogEntry
	for _, e := range s.logEntries {
		if projectID == "" || e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
